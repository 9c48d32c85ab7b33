package admin

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id int64) (*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Department, int, error)
}

type RoleRepository interface {
	Create(ctx context.Context, r *Role) error
	GetByID(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int, error)
	// CountByRole returns one row per defined role, ordered by role name.
	CountByRole(ctx context.Context) ([]*RoleCount, error)
}

// LoginObserver is told the outcome of every login attempt.
type LoginObserver interface {
	LoginAttempt(outcome string)
}
