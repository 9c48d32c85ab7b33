package identity

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
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
	api.GET("/patients/:id/doctors", h.ListPatientDoctors)
	api.POST("/patients/:id/doctors", h.AssignDoctor)
	api.DELETE("/patients/:id/doctors/:staffId", h.UnassignDoctor)

	api.GET("/staff", h.ListStaff)
	api.POST("/staff", h.CreateStaff)
	api.GET("/staff/doctors/id", h.ListDoctorIDs)
	api.GET("/staff/receptionists/id", h.ListReceptionistIDs)
	api.GET("/staff/:id", h.GetStaff)
	api.PUT("/staff/:id", h.UpdateStaff)
	api.DELETE("/staff/:id", h.DeleteStaff)
	api.GET("/staff/:id/team", h.GetTeam)
}

// -- Patient Handlers --

func (h *Handler) CreatePatient(c echo.Context) error {
	var in PatientInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in PatientInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	report, err := h.svc.DeletePatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, report)
}

// -- Patient Doctor Handlers --

type assignDoctorRequest struct {
	StaffID int64 `json:"staffId"`
}

func (h *Handler) ListPatientDoctors(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	doctors, err := h.svc.ListPatientDoctors(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, doctors)
}

func (h *Handler) AssignDoctor(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req assignDoctorRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.AssignDoctor(c.Request().Context(), id, req.StaffID); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusCreated, "doctor assigned")
}

func (h *Handler) UnassignDoctor(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	staffID, err := httpx.ParamID(c, "staffId")
	if err != nil {
		return err
	}
	if err := h.svc.UnassignDoctor(c.Request().Context(), id, staffID); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "doctor unassigned")
}

// -- Staff Handlers --

func (h *Handler) CreateStaff(c echo.Context) error {
	var in StaffInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	st, err := h.svc.CreateStaff(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, st)
}

func (h *Handler) GetStaff(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	st, err := h.svc.GetStaff(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, st)
}

func (h *Handler) ListStaff(c echo.Context) error {
	pg := pagination.FromContext(c)
	staff, total, err := h.svc.ListStaff(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(staff, total, pg))
}

func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in StaffInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	st, err := h.svc.UpdateStaff(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, st)
}

func (h *Handler) DeleteStaff(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	report, err := h.svc.DeleteStaff(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, report)
}

func (h *Handler) GetTeam(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	team, err := h.svc.Team(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, team)
}

func (h *Handler) ListDoctorIDs(c echo.Context) error {
	refs, err := h.svc.ListStaffRefs(c.Request().Context(), StaffDoctor)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, refs)
}

func (h *Handler) ListReceptionistIDs(c echo.Context) error {
	refs, err := h.svc.ListStaffRefs(c.Request().Context(), StaffReceptionist)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, refs)
}
