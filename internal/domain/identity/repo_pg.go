package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/db"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const patientCols = `patient_id, first_name, last_name, to_char(dob, 'YYYY-MM-DD'), gender,
	height::float8, weight::float8, address, phone, email, created_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (first_name, last_name, dob, gender, height, weight, address, phone, email)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9)
		RETURNING patient_id, created_at`,
		p.FirstName, p.LastName, p.DOB, p.Gender, p.Height, p.Weight, p.Address, p.Phone, p.Email,
	).Scan(&p.ID, &p.CreatedAt)
	return db.MapError("patient", err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE patient_id = $1`, id))
	if err != nil {
		return nil, db.MapError("patient", err)
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name=$2, last_name=$3, dob=$4::date, gender=$5, height=$6, weight=$7,
			address=$8, phone=$9, email=$10
		WHERE patient_id = $1`,
		p.ID, p.FirstName, p.LastName, p.DOB, p.Gender, p.Height, p.Weight, p.Address, p.Phone, p.Email,
	)
	if err != nil {
		return db.MapError("patient", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("patient", pgx.ErrNoRows)
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE patient_id = $1`, id)
	if err != nil {
		return 0, db.MapError("patient", err)
	}
	return tag.RowsAffected(), nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY patient_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	patients := make([]*Patient, 0, limit)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *patientRepoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE patient_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check patient: %w", err)
	}
	return exists, nil
}

func (r *patientRepoPG) ListDoctors(ctx context.Context, patientID int64) ([]*Staff, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+staffColsPrefixed+`
		FROM patient_doctor pd
		JOIN staff s ON s.staff_id = pd.staff_id
		WHERE pd.patient_id = $1
		ORDER BY s.staff_id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient doctors: %w", err)
	}
	defer rows.Close()
	return collectStaff(rows)
}

func (r *patientRepoPG) AddDoctor(ctx context.Context, patientID, staffID int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO patient_doctor (patient_id, staff_id) VALUES ($1, $2)`, patientID, staffID)
	return db.MapError("patient doctor link", err)
}

func (r *patientRepoPG) RemoveDoctor(ctx context.Context, patientID, staffID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM patient_doctor WHERE patient_id = $1 AND staff_id = $2`, patientID, staffID)
	if err != nil {
		return 0, fmt.Errorf("remove patient doctor: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.DOB, &p.Gender,
		&p.Height, &p.Weight, &p.Address, &p.Phone, &p.Email, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// -- Staff Repository --

type staffRepoPG struct {
	pool *pgxpool.Pool
}

func NewStaffRepo(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const staffCols = `staff_id, first_name, last_name, role, phone, email, department_id, doctor_id, created_at`

const staffColsPrefixed = `s.staff_id, s.first_name, s.last_name, s.role, s.phone, s.email,
	s.department_id, s.doctor_id, s.created_at`

// maxSupervisorDepth bounds the supervisor walk.
const maxSupervisorDepth = 1000

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff (first_name, last_name, role, phone, email, department_id, doctor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING staff_id, created_at`,
		s.FirstName, s.LastName, string(s.Role), s.Phone, s.Email, s.DepartmentID, s.DoctorID,
	).Scan(&s.ID, &s.CreatedAt)
	return db.MapError("staff", err)
}

func (r *staffRepoPG) GetByID(ctx context.Context, id int64) (*Staff, error) {
	s, err := scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE staff_id = $1`, id))
	if err != nil {
		return nil, db.MapError("staff", err)
	}
	return s, nil
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET
			first_name=$2, last_name=$3, role=$4, phone=$5, email=$6, department_id=$7, doctor_id=$8
		WHERE staff_id = $1`,
		s.ID, s.FirstName, s.LastName, string(s.Role), s.Phone, s.Email, s.DepartmentID, s.DoctorID,
	)
	if err != nil {
		return db.MapError("staff", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("staff", pgx.ErrNoRows)
	}
	return nil
}

func (r *staffRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE staff_id = $1`, id)
	if err != nil {
		return 0, db.MapError("staff", err)
	}
	return tag.RowsAffected(), nil
}

func (r *staffRepoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+staffCols+` FROM staff ORDER BY staff_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	staff, err := collectStaff(rows)
	if err != nil {
		return nil, 0, err
	}
	return staff, total, nil
}

func (r *staffRepoPG) ListRefsByRole(ctx context.Context, role StaffRole) ([]*StaffRef, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT staff_id, first_name, last_name FROM staff WHERE role = $1 ORDER BY staff_id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", role, err)
	}
	defer rows.Close()

	refs := make([]*StaffRef, 0)
	for rows.Next() {
		var ref StaffRef
		if err := rows.Scan(&ref.ID, &ref.FirstName, &ref.LastName); err != nil {
			return nil, fmt.Errorf("scan staff ref: %w", err)
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}

func (r *staffRepoPG) Team(ctx context.Context, id int64) ([]*Staff, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+staffCols+` FROM staff WHERE doctor_id = $1 ORDER BY staff_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list team: %w", err)
	}
	defer rows.Close()
	return collectStaff(rows)
}

func (r *staffRepoPG) SupervisorChain(ctx context.Context, id int64) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		WITH RECURSIVE chain (staff_id, doctor_id, depth) AS (
			SELECT staff_id, doctor_id, 1 FROM staff WHERE staff_id = $1
			UNION ALL
			SELECT s.staff_id, s.doctor_id, c.depth + 1
			FROM staff s
			JOIN chain c ON s.staff_id = c.doctor_id
			WHERE c.depth < $2
		)
		SELECT staff_id FROM chain ORDER BY depth`, id, maxSupervisorDepth)
	if err != nil {
		return nil, fmt.Errorf("supervisor chain: %w", err)
	}
	defer rows.Close()

	var chain []int64
	for rows.Next() {
		var sid int64
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("scan supervisor chain: %w", err)
		}
		chain = append(chain, sid)
	}
	return chain, rows.Err()
}

func collectStaff(rows pgx.Rows) ([]*Staff, error) {
	staff := make([]*Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	var role string
	err := row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &role, &s.Phone, &s.Email,
		&s.DepartmentID, &s.DoctorID, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Role = StaffRole(role)
	return &s, nil
}
