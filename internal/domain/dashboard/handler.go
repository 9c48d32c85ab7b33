package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hms/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard/summary", h.Summary)
}

func (h *Handler) Summary(c echo.Context) error {
	return httpx.Success(c, http.StatusOK, h.svc.Summary(c.Request().Context()))
}
