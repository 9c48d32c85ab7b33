package billing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hms/internal/platform/httpx"
	"github.com/hospital/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/billing", h.ListBilling)
	api.POST("/billing", h.CreateBilling)
	api.GET("/billing/summary", h.Summary)
	api.GET("/billing/:id", h.GetBilling)
	api.PUT("/billing/:id", h.UpdateBilling)
	api.DELETE("/billing/:id", h.DeleteBilling)
	api.GET("/patients/:id/billing", h.ListPatientBilling)
}

func (h *Handler) CreateBilling(c echo.Context) error {
	var in BillingInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	b, err := h.svc.CreateBilling(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, b)
}

func (h *Handler) GetBilling(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.svc.GetBilling(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, b)
}

func (h *Handler) ListBilling(c echo.Context) error {
	pg := pagination.FromContext(c)
	bills, total, err := h.svc.ListBilling(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bills, total, pg))
}

func (h *Handler) ListPatientBilling(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	bills, total, err := h.svc.ListPatientBilling(c.Request().Context(), id, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bills, total, pg))
}

func (h *Handler) UpdateBilling(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in BillingInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	b, err := h.svc.UpdateBilling(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, b)
}

func (h *Handler) DeleteBilling(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBilling(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "billing record deleted")
}

func (h *Handler) Summary(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, summary)
}
