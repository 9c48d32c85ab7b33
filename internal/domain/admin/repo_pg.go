package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/db"
)

// -- Department Repository --

type departmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepo(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const deptCols = `department_id, name, location, created_at`

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO department (name, location) VALUES ($1, $2)
		RETURNING department_id, created_at`,
		d.Name, d.Location,
	).Scan(&d.ID, &d.CreatedAt)
	return db.MapError("department", err)
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id int64) (*Department, error) {
	var d Department
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+deptCols+` FROM department WHERE department_id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Location, &d.CreatedAt)
	if err != nil {
		return nil, db.MapError("department", err)
	}
	return &d, nil
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE department SET name = $2, location = $3 WHERE department_id = $1`,
		d.ID, d.Name, d.Location)
	if err != nil {
		return db.MapError("department", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("department", pgx.ErrNoRows)
	}
	return nil
}

func (r *departmentRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM department WHERE department_id = $1`, id)
	if err != nil {
		return 0, db.MapError("department", err)
	}
	return tag.RowsAffected(), nil
}

func (r *departmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM department`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count departments: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+deptCols+` FROM department ORDER BY department_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	depts := make([]*Department, 0)
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Location, &d.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan department: %w", err)
		}
		depts = append(depts, &d)
	}
	return depts, total, rows.Err()
}

// -- Role Repository --

type roleRepoPG struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) RoleRepository {
	return &roleRepoPG{pool: pool}
}

func (r *roleRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *roleRepoPG) Create(ctx context.Context, role *Role) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO role (name, description) VALUES ($1, $2) RETURNING role_id`,
		role.Name, role.Description,
	).Scan(&role.ID)
	return db.MapError("role", err)
}

func (r *roleRepoPG) GetByID(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT role_id, name, description FROM role WHERE role_id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		return nil, db.MapError("role", err)
	}
	return &role, nil
}

func (r *roleRepoPG) GetByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT role_id, name, description FROM role WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		return nil, db.MapError("role", err)
	}
	return &role, nil
}

func (r *roleRepoPG) List(ctx context.Context) ([]*Role, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT role_id, name, description FROM role ORDER BY role_id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]*Role, 0)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

// -- User Repository --

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO app_user (username, password_hash, role_id) VALUES ($1, $2, $3)
		RETURNING user_id, created_at`,
		u.Username, u.PasswordHash, u.RoleID,
	).Scan(&u.ID, &u.CreatedAt)
	return db.MapError("user", err)
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT u.user_id, u.username, u.password_hash, u.role_id, r.name, u.created_at
		FROM app_user u
		LEFT JOIN role r ON r.role_id = u.role_id
		WHERE u.username = $1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.CreatedAt)
	if err != nil {
		return nil, db.MapError("user", err)
	}
	return &u, nil
}

func (r *userRepoPG) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (r *userRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM app_user WHERE user_id = $1`, id)
	if err != nil {
		return 0, db.MapError("user", err)
	}
	return tag.RowsAffected(), nil
}

func (r *userRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM app_user`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepoPG) CountByRole(ctx context.Context) ([]*RoleCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.role_id, r.name, COUNT(u.user_id)
		FROM role r
		LEFT JOIN app_user u ON u.role_id = r.role_id
		GROUP BY r.role_id, r.name
		ORDER BY r.name`)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	defer rows.Close()

	counts := make([]*RoleCount, 0)
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.RoleID, &rc.Name, &rc.Count); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		counts = append(counts, &rc)
	}
	return counts, rows.Err()
}
