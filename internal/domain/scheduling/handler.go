package scheduling

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
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/upcoming", h.Upcoming)
	api.GET("/appointments/count", h.Count)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
	api.GET("/patients/:id/appointments", h.ListPatientAppointments)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in AppointmentInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.ListAppointments(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg))
}

func (h *Handler) ListPatientAppointments(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.ListPatientAppointments(c.Request().Context(), id, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in AppointmentInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	report, err := h.svc.DeleteAppointment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, report)
}

func (h *Handler) Upcoming(c echo.Context) error {
	upcoming, err := h.svc.Upcoming(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, upcoming)
}

type countResponse struct {
	Count int `json:"count"`
}

func (h *Handler) Count(c echo.Context) error {
	n, err := h.svc.CountAppointments(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, countResponse{Count: n})
}
