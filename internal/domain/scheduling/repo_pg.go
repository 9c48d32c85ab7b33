package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/db"
)

type appointmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const apptCols = `appointment_id, patient_id, doctor_id, appointment_date, purpose, status, created_at`

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (patient_id, doctor_id, appointment_date, purpose, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING appointment_id, created_at`,
		a.PatientID, a.DoctorID, a.AppointmentDate, a.Purpose, string(a.Status),
	).Scan(&a.ID, &a.CreatedAt)
	return db.MapError("appointment", err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE appointment_id = $1`, id))
	if err != nil {
		return nil, db.MapError("appointment", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			patient_id=$2, doctor_id=$3, appointment_date=$4, purpose=$5, status=$6
		WHERE appointment_id = $1`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.Purpose, string(a.Status),
	)
	if err != nil {
		return db.MapError("appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("appointment", pgx.ErrNoRows)
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE appointment_id = $1`, id)
	if err != nil {
		return 0, db.MapError("appointment", err)
	}
	return tag.RowsAffected(), nil
}

func (r *appointmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointment ORDER BY appointment_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appts, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patient appointments: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1
		ORDER BY appointment_id LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patient appointments: %w", err)
	}
	defer rows.Close()

	appts, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *appointmentRepoPG) Count(ctx context.Context, status AppointmentStatus) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE $1::text = '' OR status = $1::text`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

func (r *appointmentRepoPG) Upcoming(ctx context.Context, from time.Time, limit int) ([]*UpcomingAppointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.appointment_id, a.appointment_date, a.purpose, a.status,
			a.patient_id, p.first_name || ' ' || p.last_name,
			a.doctor_id, s.first_name || ' ' || s.last_name
		FROM appointment a
		JOIN patient p ON p.patient_id = a.patient_id
		LEFT JOIN staff s ON s.staff_id = a.doctor_id
		WHERE a.status = $1 AND a.appointment_date >= $2
		ORDER BY a.appointment_date, a.appointment_id
		LIMIT $3`, string(StatusScheduled), from, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	defer rows.Close()

	upcoming := make([]*UpcomingAppointment, 0, limit)
	for rows.Next() {
		var u UpcomingAppointment
		var status string
		if err := rows.Scan(
			&u.ID, &u.AppointmentDate, &u.Purpose, &status,
			&u.PatientID, &u.PatientName, &u.DoctorID, &u.DoctorName,
		); err != nil {
			return nil, fmt.Errorf("scan upcoming appointment: %w", err)
		}
		u.Status = AppointmentStatus(status)
		upcoming = append(upcoming, &u)
	}
	return upcoming, rows.Err()
}

func (r *appointmentRepoPG) DeleteByPatient(ctx context.Context, patientID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, fmt.Errorf("delete patient appointments: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *appointmentRepoPG) DeleteByDoctor(ctx context.Context, staffID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE doctor_id = $1`, staffID)
	if err != nil {
		return 0, fmt.Errorf("delete doctor appointments: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	appts := make([]*Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Purpose, &status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = AppointmentStatus(status)
	return &a, nil
}
