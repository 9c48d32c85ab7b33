package billing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/db"
)

type billingRepoPG struct {
	pool *pgxpool.Pool
}

func NewBillingRepo(pool *pgxpool.Pool) BillingRepository {
	return &billingRepoPG{pool: pool}
}

func (r *billingRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const billingCols = `billing_id, patient_id, receptionist_id,
	treatment_fee::float8, medication_fee::float8, lab_test_fee::float8, consultation_fee::float8,
	total_amount::float8, payment_status, billing_date`

func (r *billingRepoPG) Create(ctx context.Context, b *Billing) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO billing (patient_id, receptionist_id, treatment_fee, medication_fee,
			lab_test_fee, consultation_fee, total_amount, payment_status, billing_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING billing_id`,
		b.PatientID, b.ReceptionistID, b.TreatmentFee, b.MedicationFee,
		b.LabTestFee, b.ConsultationFee, b.TotalAmount, string(b.PaymentStatus), b.BillingDate,
	).Scan(&b.ID)
	return db.MapError("billing record", err)
}

func (r *billingRepoPG) GetByID(ctx context.Context, id int64) (*Billing, error) {
	b, err := scanBilling(r.conn(ctx).QueryRow(ctx, `SELECT `+billingCols+` FROM billing WHERE billing_id = $1`, id))
	if err != nil {
		return nil, db.MapError("billing record", err)
	}
	return b, nil
}

func (r *billingRepoPG) Update(ctx context.Context, b *Billing) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing SET
			patient_id=$2, receptionist_id=$3, treatment_fee=$4, medication_fee=$5,
			lab_test_fee=$6, consultation_fee=$7, total_amount=$8, payment_status=$9, billing_date=$10
		WHERE billing_id = $1`,
		b.ID, b.PatientID, b.ReceptionistID, b.TreatmentFee, b.MedicationFee,
		b.LabTestFee, b.ConsultationFee, b.TotalAmount, string(b.PaymentStatus), b.BillingDate,
	)
	if err != nil {
		return db.MapError("billing record", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("billing record", pgx.ErrNoRows)
	}
	return nil
}

func (r *billingRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM billing WHERE billing_id = $1`, id)
	if err != nil {
		return 0, db.MapError("billing record", err)
	}
	return tag.RowsAffected(), nil
}

func (r *billingRepoPG) List(ctx context.Context, limit, offset int) ([]*Billing, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM billing`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count billing: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billingCols+` FROM billing ORDER BY billing_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list billing: %w", err)
	}
	defer rows.Close()

	bills, err := collectBilling(rows)
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

func (r *billingRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Billing, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM billing WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patient billing: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+billingCols+` FROM billing
		WHERE patient_id = $1
		ORDER BY billing_id LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patient billing: %w", err)
	}
	defer rows.Close()

	bills, err := collectBilling(rows)
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

func (r *billingRepoPG) TotalsByStatus(ctx context.Context) (map[PaymentStatus]StatusTotal, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT payment_status, COUNT(*), COALESCE(SUM(total_amount), 0)::float8
		FROM billing
		GROUP BY payment_status`)
	if err != nil {
		return nil, fmt.Errorf("billing totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[PaymentStatus]StatusTotal)
	for rows.Next() {
		var status string
		var t StatusTotal
		if err := rows.Scan(&status, &t.Count, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan billing totals: %w", err)
		}
		totals[PaymentStatus(status)] = t
	}
	return totals, rows.Err()
}

func (r *billingRepoPG) DeleteByPatient(ctx context.Context, patientID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM billing WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, fmt.Errorf("delete patient billing: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *billingRepoPG) DeleteByReceptionist(ctx context.Context, staffID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM billing WHERE receptionist_id = $1`, staffID)
	if err != nil {
		return 0, fmt.Errorf("delete receptionist billing: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectBilling(rows pgx.Rows) ([]*Billing, error) {
	bills := make([]*Billing, 0)
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, fmt.Errorf("scan billing: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func scanBilling(row pgx.Row) (*Billing, error) {
	var b Billing
	var status string
	err := row.Scan(&b.ID, &b.PatientID, &b.ReceptionistID,
		&b.TreatmentFee, &b.MedicationFee, &b.LabTestFee, &b.ConsultationFee,
		&b.TotalAmount, &status, &b.BillingDate)
	if err != nil {
		return nil, err
	}
	b.PaymentStatus = PaymentStatus(status)
	return &b, nil
}
