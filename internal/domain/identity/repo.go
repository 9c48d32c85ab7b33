package identity

import (
	"context"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// Delete removes the patient row only and returns the rows affected.
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Exists(ctx context.Context, id int64) (bool, error)

	// Doctor links
	ListDoctors(ctx context.Context, patientID int64) ([]*Staff, error)
	AddDoctor(ctx context.Context, patientID, staffID int64) error
	RemoveDoctor(ctx context.Context, patientID, staffID int64) (int64, error)
}

type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id int64) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Staff, int, error)
	ListRefsByRole(ctx context.Context, role StaffRole) ([]*StaffRef, error)
	// Team returns the staff whose supervisor is id.
	Team(ctx context.Context, id int64) ([]*Staff, error)
	// SupervisorChain returns id followed by its supervisors, nearest first.
	SupervisorChain(ctx context.Context, id int64) ([]int64, error)
}

// Rows that reference a patient or a staff member and must go before it.
// The scheduling, clinical and billing repositories implement these.

type AppointmentCleaner interface {
	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
	DeleteByDoctor(ctx context.Context, staffID int64) (int64, error)
}

type MedicalRecordCleaner interface {
	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
	// DeleteByPatientAppointments removes records attached to any appointment
	// of the patient, whichever patient the record names.
	DeleteByPatientAppointments(ctx context.Context, patientID int64) (int64, error)
	DeleteByDoctorAppointments(ctx context.Context, staffID int64) (int64, error)
}

type BillingCleaner interface {
	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
	DeleteByReceptionist(ctx context.Context, staffID int64) (int64, error)
}

// Dependents bundles the cleaners run by the delete cascades.
type Dependents struct {
	Appointments   AppointmentCleaner
	MedicalRecords MedicalRecordCleaner
	Billing        BillingCleaner
}

// CascadeObserver is notified of rows removed by a cascade.
type CascadeObserver interface {
	CascadeDeleted(root, table string, n int64)
}
