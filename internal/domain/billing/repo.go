package billing

import "context"

type BillingRepository interface {
	Create(ctx context.Context, b *Billing) error
	GetByID(ctx context.Context, id int64) (*Billing, error)
	Update(ctx context.Context, b *Billing) error
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Billing, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Billing, int, error)
	// TotalsByStatus returns only the statuses that have at least one bill.
	TotalsByStatus(ctx context.Context) (map[PaymentStatus]StatusTotal, error)

	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
	DeleteByReceptionist(ctx context.Context, staffID int64) (int64, error)
}

// Directory resolves the patient and receptionist of a bill.
type Directory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
	StaffRole(ctx context.Context, id int64) (string, error)
}
