package admin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
	"github.com/hospital/hms/internal/platform/httpx"
	"github.com/hospital/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the admin and auth endpoints. loginMW wraps only the
// login route, typically with a rate limiter.
func (h *Handler) RegisterRoutes(api *echo.Group, loginMW ...echo.MiddlewareFunc) {
	api.POST("/auth/login", h.Login, loginMW...)
	api.GET("/auth/me", h.Me)

	api.GET("/departments", h.ListDepartments)
	api.POST("/departments", h.CreateDepartment)
	api.GET("/departments/:id", h.GetDepartment)
	api.PUT("/departments/:id", h.UpdateDepartment)
	api.DELETE("/departments/:id", h.DeleteDepartment)

	api.GET("/roles", h.ListRoles)
	api.GET("/users", h.UserStats)
	api.GET("/users/stats", h.UserStats)

	adminOnly := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminOnly.POST("/roles", h.CreateRole)
	adminOnly.POST("/users", h.CreateUser)
	adminOnly.DELETE("/users/:id", h.DeleteUser)
}

// -- Auth Handlers --

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.svc.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, result)
}

type meResponse struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	RoleID    *int64    `json:"roleId,omitempty"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (h *Handler) Me(c echo.Context) error {
	claims := auth.ClaimsFromContext(c.Request().Context())
	if claims == nil {
		return apperr.ErrUnauthorized
	}
	resp := meResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
		RoleID:   claims.RoleID,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return httpx.Success(c, http.StatusOK, resp)
}

// -- Department Handlers --

func (h *Handler) CreateDepartment(c echo.Context) error {
	var in DepartmentInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	d, err := h.svc.CreateDepartment(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, d)
}

func (h *Handler) GetDepartment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDepartment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, d)
}

func (h *Handler) ListDepartments(c echo.Context) error {
	pg := pagination.FromContext(c)
	depts, total, err := h.svc.ListDepartments(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(depts, total, pg))
}

func (h *Handler) UpdateDepartment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in DepartmentInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	d, err := h.svc.UpdateDepartment(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, d)
}

func (h *Handler) DeleteDepartment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDepartment(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "department deleted")
}

// -- Role Handlers --

func (h *Handler) ListRoles(c echo.Context) error {
	roles, err := h.svc.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, roles)
}

func (h *Handler) CreateRole(c echo.Context) error {
	var in RoleInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	r, err := h.svc.CreateRole(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, r)
}

// -- User Handlers --

func (h *Handler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.svc.CreateUser(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusCreated, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "user deleted")
}

func (h *Handler) UserStats(c echo.Context) error {
	stats, err := h.svc.UserStats(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.Success(c, http.StatusOK, stats)
}
