package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
)

// TokenIssuer signs session tokens. *auth.TokenManager implements it.
type TokenIssuer interface {
	Issue(userID int64, username string, roleID *int64, role string) (string, time.Time, error)
}

type Service struct {
	depts      DepartmentRepository
	roles      RoleRepository
	users      UserRepository
	tokens     TokenIssuer
	bcryptCost int
	observer   LoginObserver
	logger     zerolog.Logger
}

func NewService(
	depts DepartmentRepository,
	roles RoleRepository,
	users UserRepository,
	tokens TokenIssuer,
	bcryptCost int,
	observer LoginObserver,
	logger zerolog.Logger,
) *Service {
	return &Service{
		depts:      depts,
		roles:      roles,
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		observer:   observer,
		logger:     logger,
	}
}

// -- Department --

func (s *Service) CreateDepartment(ctx context.Context, in *DepartmentInput) (*Department, error) {
	d := &Department{}
	in.Apply(d)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.depts.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	return s.depts.GetByID(ctx, id)
}

func (s *Service) UpdateDepartment(ctx context.Context, id int64, in *DepartmentInput) (*Department, error) {
	d, err := s.depts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(d)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.depts.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDepartment removes the department. Staff links are cleared by the
// schema.
func (s *Service) DeleteDepartment(ctx context.Context, id int64) error {
	n, err := s.depts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("department")
	}
	return nil
}

func (s *Service) ListDepartments(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	return s.depts.List(ctx, limit, offset)
}

// -- Role --

func (s *Service) CreateRole(ctx context.Context, in *RoleInput) (*Role, error) {
	name := strings.ToLower(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	r := &Role{Name: name, Description: in.Description}
	if err := s.roles.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.roles.List(ctx)
}

// -- User --

// CreateUser hashes the password and stores the user. A taken username is a
// conflict; the unique constraint on app_user.username settles concurrent
// requests for the same name.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("username already exists")
	}

	u := &User{Username: req.Username, RoleID: req.RoleID}
	if req.RoleID != nil {
		role, err := s.roles.GetByID(ctx, *req.RoleID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("roleId %d does not reference an existing role", *req.RoleID)
		}
		if err != nil {
			return nil, err
		}
		u.RoleName = &role.Name
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("username already exists")
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return u, nil
}

// CreateAdmin creates a user holding the admin role.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (*User, error) {
	role, err := s.roles.GetByName(ctx, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return s.CreateUser(ctx, &CreateUserRequest{Username: username, Password: password, RoleID: &role.ID})
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	n, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// UserStats counts all users and the users of each role.
func (s *Service) UserStats(ctx context.Context) (*UserStats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	return &UserStats{TotalUsers: total, Roles: roles}, nil
}

// -- Login --

// Login verifies the credentials and issues a session token. An unknown
// username and a wrong password produce the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	u, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		auth.BurnPasswordCheck(req.Password)
		s.loginFailed(username, "unknown user")
		return nil, apperr.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if !auth.CheckPassword(req.Password, u.PasswordHash) {
		s.loginFailed(username, "wrong password")
		return nil, apperr.ErrInvalidCredentials
	}

	var role *Role
	roleName := ""
	if u.RoleID != nil {
		role, err = s.roles.GetByID(ctx, *u.RoleID)
		if err != nil {
			return nil, err
		}
		roleName = role.Name
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Username, u.RoleID, roleName)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.LoginAttempt("success")
	}
	s.logger.Info().Int64("user_id", u.ID).Str("role", roleName).Msg("login succeeded")
	return &LoginResult{Token: token, ExpiresAt: exp, UserRole: role}, nil
}

func (s *Service) loginFailed(username, reason string) {
	if s.observer != nil {
		s.observer.LoginAttempt("failure")
	}
	s.logger.Warn().Str("username", username).Str("reason", reason).Msg("login failed")
}
