package scheduling

import (
	"context"
	"time"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error)
	// Count counts all appointments, or those in status when it is non-empty.
	Count(ctx context.Context, status AppointmentStatus) (int, error)
	// Upcoming returns scheduled appointments at or after from, soonest first.
	Upcoming(ctx context.Context, from time.Time, limit int) ([]*UpcomingAppointment, error)

	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
	DeleteByDoctor(ctx context.Context, staffID int64) (int64, error)
}

// Directory resolves the patient and staff references of an appointment.
type Directory interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
	StaffRole(ctx context.Context, id int64) (string, error)
}

// RecordCleaner removes the medical records attached to an appointment.
type RecordCleaner interface {
	DeleteByAppointment(ctx context.Context, appointmentID int64) (int64, error)
}

// CascadeObserver is notified of rows removed by a cascade.
type CascadeObserver interface {
	CascadeDeleted(root, table string, n int64)
}
