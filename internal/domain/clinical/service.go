package clinical

import (
	"context"
	"errors"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
)

type Service struct {
	records      MedicalRecordRepository
	patients     PatientChecker
	appointments AppointmentLookup
	now          func() time.Time
}

func NewService(records MedicalRecordRepository, patients PatientChecker, appointments AppointmentLookup) *Service {
	return &Service{records: records, patients: patients, appointments: appointments, now: time.Now}
}

func (s *Service) CreateRecord(ctx context.Context, in *MedicalRecordInput) (*MedicalRecord, error) {
	m := &MedicalRecord{}
	in.Apply(m)
	if m.RecordDate.IsZero() {
		m.RecordDate = s.now().UTC()
	}
	if err := s.validate(ctx, m); err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetRecord(ctx context.Context, id int64) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) UpdateRecord(ctx context.Context, id int64, in *MedicalRecordInput) (*MedicalRecord, error) {
	m, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(m)
	if err := s.validate(ctx, m); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id int64) error {
	n, err := s.records.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("medical record")
	}
	return nil
}

func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.List(ctx, limit, offset)
}

func (s *Service) ListPatientRecords(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalRecord, int, error) {
	ok, err := s.patients.PatientExists(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, apperr.NotFound("patient")
	}
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

// validate checks that the patient exists and owns the appointment.
func (s *Service) validate(ctx context.Context, m *MedicalRecord) error {
	if err := m.Validate(); err != nil {
		return err
	}
	ok, err := s.patients.PatientExists(ctx, m.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("patientId %d does not reference an existing patient", m.PatientID)
	}

	owner, err := s.appointments.AppointmentPatient(ctx, m.AppointmentID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation("appointmentId %d does not reference an existing appointment", m.AppointmentID)
	}
	if err != nil {
		return err
	}
	if owner != m.PatientID {
		return apperr.Validation("appointment %d belongs to patient %d, not %d", m.AppointmentID, owner, m.PatientID)
	}
	return nil
}
