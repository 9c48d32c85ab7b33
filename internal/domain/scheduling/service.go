package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/db"
)

// UpcomingLimit caps the upcoming-appointments list.
const UpcomingLimit = 10

type Service struct {
	appointments AppointmentRepository
	directory    Directory
	records      RecordCleaner
	tx           db.Transactor
	observer     CascadeObserver
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(
	appts AppointmentRepository,
	directory Directory,
	records RecordCleaner,
	tx db.Transactor,
	observer CascadeObserver,
	logger zerolog.Logger,
) *Service {
	return &Service{
		appointments: appts,
		directory:    directory,
		records:      records,
		tx:           tx,
		observer:     observer,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, in *AppointmentInput) (*Appointment, error) {
	a := &Appointment{}
	if err := in.Apply(a); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, id int64, in *AppointmentInput) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.Apply(a); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) validate(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	ok, err := s.directory.PatientExists(ctx, a.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("patientId %d does not reference an existing patient", a.PatientID)
	}
	if a.DoctorID == nil {
		return nil
	}
	role, err := s.directory.StaffRole(ctx, *a.DoctorID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation("doctorId %d does not reference an existing staff member", *a.DoctorID)
	}
	if err != nil {
		return err
	}
	if role != "doctor" {
		return apperr.Validation("doctorId %d is a %s, not a doctor", *a.DoctorID, role)
	}
	return nil
}

// DeleteAppointment removes the appointment's medical records and then the
// appointment in one transaction.
func (s *Service) DeleteAppointment(ctx context.Context, id int64) (*DeleteReport, error) {
	report := &DeleteReport{ID: id, Cascaded: map[string]int64{}}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.records.DeleteByAppointment(ctx, id)
		if err != nil {
			return fmt.Errorf("delete dependent medicalRecords: %w", err)
		}
		report.Cascaded["medicalRecords"] = n

		n, err = s.appointments.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("appointment")
		}
		report.Deleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("entity", "appointment").
		Int64("id", id).
		Int64("medicalRecords", report.Cascaded["medicalRecords"]).
		Msg("cascade delete")
	if s.observer != nil {
		s.observer.CascadeDeleted("appointment", "medicalRecords", report.Cascaded["medicalRecords"])
	}
	return report, nil
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListPatientAppointments(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	ok, err := s.directory.PatientExists(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, apperr.NotFound("patient")
	}
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

// CountAppointments counts all appointments, or those with the given status
// when status is not empty.
func (s *Service) CountAppointments(ctx context.Context, status string) (int, error) {
	var st AppointmentStatus
	if status != "" {
		var err error
		if st, err = ParseStatus(status); err != nil {
			return 0, err
		}
	}
	return s.appointments.Count(ctx, st)
}

func (s *Service) Upcoming(ctx context.Context) ([]*UpcomingAppointment, error) {
	return s.appointments.Upcoming(ctx, s.now(), UpcomingLimit)
}

// AppointmentPatient returns the patient an appointment belongs to.
func (s *Service) AppointmentPatient(ctx context.Context, id int64) (int64, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return a.PatientID, nil
}
