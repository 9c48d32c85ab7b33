package clinical

import "context"

type MedicalRecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id int64) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error)

	// Cascade cleanup, run inside the caller's transaction.
	DeleteByAppointment(ctx context.Context, appointmentID int64) (int64, error)
	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
	DeleteByPatientAppointments(ctx context.Context, patientID int64) (int64, error)
	DeleteByDoctorAppointments(ctx context.Context, staffID int64) (int64, error)
}

type PatientChecker interface {
	PatientExists(ctx context.Context, id int64) (bool, error)
}

// AppointmentLookup resolves the patient an appointment belongs to.
type AppointmentLookup interface {
	AppointmentPatient(ctx context.Context, appointmentID int64) (int64, error)
}
