package clinical

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/db"
)

type medicalRecordRepoPG struct {
	pool *pgxpool.Pool
}

func NewMedicalRecordRepo(pool *pgxpool.Pool) MedicalRecordRepository {
	return &medicalRecordRepoPG{pool: pool}
}

func (r *medicalRecordRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const recordCols = `record_id, patient_id, appointment_id, diagnosis, prescription, lab_result, treatment, record_date`

func (r *medicalRecordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_record (patient_id, appointment_id, diagnosis, prescription, lab_result, treatment, record_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING record_id`,
		m.PatientID, m.AppointmentID, m.Diagnosis, m.Prescription, m.LabResult, m.Treatment, m.RecordDate,
	).Scan(&m.ID)
	return db.MapError("medical record", err)
}

func (r *medicalRecordRepoPG) GetByID(ctx context.Context, id int64) (*MedicalRecord, error) {
	m, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_record WHERE record_id = $1`, id))
	if err != nil {
		return nil, db.MapError("medical record", err)
	}
	return m, nil
}

func (r *medicalRecordRepoPG) Update(ctx context.Context, m *MedicalRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET
			patient_id=$2, appointment_id=$3, diagnosis=$4, prescription=$5,
			lab_result=$6, treatment=$7, record_date=$8
		WHERE record_id = $1`,
		m.ID, m.PatientID, m.AppointmentID, m.Diagnosis, m.Prescription, m.LabResult, m.Treatment, m.RecordDate,
	)
	if err != nil {
		return db.MapError("medical record", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("medical record", pgx.ErrNoRows)
	}
	return nil
}

func (r *medicalRecordRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_record WHERE record_id = $1`, id)
	if err != nil {
		return 0, db.MapError("medical record", err)
	}
	return tag.RowsAffected(), nil
}

func (r *medicalRecordRepoPG) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_record`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical records: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_record ORDER BY record_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *medicalRecordRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patient medical records: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM medical_record
		WHERE patient_id = $1
		ORDER BY record_id LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patient medical records: %w", err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *medicalRecordRepoPG) deleteWhere(ctx context.Context, what, where string, arg int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_record WHERE `+where, arg)
	if err != nil {
		return 0, fmt.Errorf("delete medical records by %s: %w", what, err)
	}
	return tag.RowsAffected(), nil
}

func (r *medicalRecordRepoPG) DeleteByAppointment(ctx context.Context, appointmentID int64) (int64, error) {
	return r.deleteWhere(ctx, "appointment", `appointment_id = $1`, appointmentID)
}

func (r *medicalRecordRepoPG) DeleteByPatient(ctx context.Context, patientID int64) (int64, error) {
	return r.deleteWhere(ctx, "patient", `patient_id = $1`, patientID)
}

func (r *medicalRecordRepoPG) DeleteByPatientAppointments(ctx context.Context, patientID int64) (int64, error) {
	return r.deleteWhere(ctx, "patient appointments",
		`appointment_id IN (SELECT appointment_id FROM appointment WHERE patient_id = $1)`, patientID)
}

func (r *medicalRecordRepoPG) DeleteByDoctorAppointments(ctx context.Context, staffID int64) (int64, error) {
	return r.deleteWhere(ctx, "doctor appointments",
		`appointment_id IN (SELECT appointment_id FROM appointment WHERE doctor_id = $1)`, staffID)
}

func collectRecords(rows pgx.Rows) ([]*MedicalRecord, error) {
	records := make([]*MedicalRecord, 0)
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medical record: %w", err)
		}
		records = append(records, m)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.AppointmentID, &m.Diagnosis, &m.Prescription,
		&m.LabResult, &m.Treatment, &m.RecordDate)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
