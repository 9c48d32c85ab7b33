package admin

import (
	"strings"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
)

// MinPasswordLength is enforced when a user is created.
const MinPasswordLength = 8

// Department maps to the department table.
type Department struct {
	ID        int64     `db:"department_id" json:"departmentId"`
	Name      string    `db:"name" json:"name"`
	Location  *string   `db:"location" json:"location,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type DepartmentInput struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

func (in *DepartmentInput) Apply(d *Department) {
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		d.Location = in.Location
	}
}

func (d *Department) Validate() error {
	if d.Name == "" {
		return apperr.Validation("name is required")
	}
	return nil
}

// Role maps to the role table. Names are stored lower-case.
type Role struct {
	ID          int64   `db:"role_id" json:"roleId"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

type RoleInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// User maps to the app_user table. Users authenticate; they are not Staff.
type User struct {
	ID           int64     `db:"user_id" json:"userId"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RoleID       *int64    `db:"role_id" json:"roleId,omitempty"`
	RoleName     *string   `db:"role_name" json:"role,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoleID   *int64 `json:"roleId"`
}

func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return apperr.Validation("username is required")
	}
	if len(r.Password) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if len(r.Password) > auth.MaxPasswordBytes {
		return apperr.Validation("password must be at most %d bytes", auth.MaxPasswordBytes)
	}
	if r.RoleID != nil && *r.RoleID < 1 {
		return apperr.Validation("roleId must be a positive id")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned on a successful login. UserRole is nil for a user
// without a role.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserRole  *Role     `json:"userRole"`
}

// RoleCount is the number of users holding one role.
type RoleCount struct {
	RoleID int64  `json:"roleId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// UserStats reports every defined role, including those with no users.
type UserStats struct {
	TotalUsers int          `json:"totalUsers"`
	Roles      []*RoleCount `json:"roles"`
}
