package clinical

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
	api.GET("/medical-records", h.ListRecords)
	api.POST("/medical-records", h.CreateRecord)
	api.GET("/medical-records/:id", h.GetRecord)
	api.PUT("/medical-records/:id", h.UpdateRecord)
	api.DELETE("/medical-records/:id", h.DeleteRecord)
	api.GET("/patients/:id/medical-records", h.ListPatientRecords)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var in MedicalRecordInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	m, err := h.svc.CreateRecord(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, m)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, m)
}

func (h *Handler) ListRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	records, total, err := h.svc.ListRecords(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg))
}

func (h *Handler) ListPatientRecords(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	records, total, err := h.svc.ListPatientRecords(c.Request().Context(), id, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg))
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in MedicalRecordInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	m, err := h.svc.UpdateRecord(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, m)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "medical record deleted")
}
