package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/db"
)

type Service struct {
	patients PatientRepository
	staff    StaffRepository
	deps     Dependents
	tx       db.Transactor
	observer CascadeObserver
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(
	patients PatientRepository,
	staff StaffRepository,
	deps Dependents,
	tx db.Transactor,
	observer CascadeObserver,
	logger zerolog.Logger,
) *Service {
	return &Service{
		patients: patients,
		staff:    staff,
		deps:     deps,
		tx:       tx,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, in *PatientInput) (*Patient, error) {
	p := &Patient{}
	in.Apply(p)
	if err := p.Validate(s.now()); err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, in *PatientInput) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(p)
	if err := p.Validate(s.now()); err != nil {
		return nil, err
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// PatientExists lets other services validate a patientId.
func (s *Service) PatientExists(ctx context.Context, id int64) (bool, error) {
	return s.patients.Exists(ctx, id)
}

// DeletePatient removes the patient's medical records, appointments and
// billing rows, then the patient, in one transaction. Records are matched both
// by patient and by the patient's appointments so none are left pointing at a
// deleted appointment.
func (s *Service) DeletePatient(ctx context.Context, id int64) (*DeleteReport, error) {
	report := &DeleteReport{ID: id, Cascaded: map[string]int64{}}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		steps := []cascadeStep{
			{"medicalRecords", func(ctx context.Context) (int64, error) {
				return s.deps.MedicalRecords.DeleteByPatientAppointments(ctx, id)
			}},
			{"medicalRecords", func(ctx context.Context) (int64, error) {
				return s.deps.MedicalRecords.DeleteByPatient(ctx, id)
			}},
			{"appointments", func(ctx context.Context) (int64, error) {
				return s.deps.Appointments.DeleteByPatient(ctx, id)
			}},
			{"billing", func(ctx context.Context) (int64, error) {
				return s.deps.Billing.DeleteByPatient(ctx, id)
			}},
		}
		if err := runCascade(ctx, steps, report.Cascaded); err != nil {
			return err
		}

		n, err := s.patients.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("patient")
		}
		report.Deleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCascade("patient", report)
	return report, nil
}

// -- Patient doctors --

func (s *Service) ListPatientDoctors(ctx context.Context, patientID int64) ([]*Staff, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.patients.ListDoctors(ctx, patientID)
}

func (s *Service) AssignDoctor(ctx context.Context, patientID, staffID int64) error {
	if staffID < 1 {
		return apperr.Validation("staffId is required")
	}
	if err := s.requirePatient(ctx, patientID); err != nil {
		return err
	}
	if err := s.requireStaffRole(ctx, "staffId", staffID, StaffDoctor); err != nil {
		return err
	}
	return s.patients.AddDoctor(ctx, patientID, staffID)
}

func (s *Service) UnassignDoctor(ctx context.Context, patientID, staffID int64) error {
	n, err := s.patients.RemoveDoctor(ctx, patientID, staffID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("patient doctor link")
	}
	return nil
}

func (s *Service) requirePatient(ctx context.Context, id int64) error {
	ok, err := s.patients.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("patient")
	}
	return nil
}

// -- Staff --

func (s *Service) CreateStaff(ctx context.Context, in *StaffInput) (*Staff, error) {
	st := &Staff{}
	if err := in.Apply(st); err != nil {
		return nil, err
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if st.DoctorID != nil {
		if _, err := s.supervisorChain(ctx, *st.DoctorID); err != nil {
			return nil, err
		}
	}
	if err := s.staff.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) GetStaff(ctx context.Context, id int64) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

// UpdateStaff rejects a supervisor link that would make the staff member
// their own direct or indirect supervisor.
func (s *Service) UpdateStaff(ctx context.Context, id int64, in *StaffInput) (*Staff, error) {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.Apply(st); err != nil {
		return nil, err
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if st.DoctorID != nil {
		chain, err := s.supervisorChain(ctx, *st.DoctorID)
		if err != nil {
			return nil, err
		}
		for _, sid := range chain {
			if sid == st.ID {
				return nil, apperr.Validation("doctorId %d would create a supervision cycle", *st.DoctorID)
			}
		}
	}
	if err := s.staff.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) supervisorChain(ctx context.Context, supervisorID int64) ([]int64, error) {
	chain, err := s.staff.SupervisorChain(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, apperr.Validation("doctorId %d does not reference an existing staff member", supervisorID)
	}
	return chain, nil
}

func (s *Service) ListStaff(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, limit, offset)
}

func (s *Service) ListStaffRefs(ctx context.Context, role StaffRole) ([]*StaffRef, error) {
	return s.staff.ListRefsByRole(ctx, role)
}

func (s *Service) Team(ctx context.Context, id int64) ([]*Staff, error) {
	if _, err := s.staff.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.staff.Team(ctx, id)
}

// StaffRole returns the role of staff member id, or a not-found error.
func (s *Service) StaffRole(ctx context.Context, id int64) (string, error) {
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return string(st.Role), nil
}

func (s *Service) requireStaffRole(ctx context.Context, field string, id int64, role StaffRole) error {
	st, err := s.staff.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation("%s %d does not reference an existing staff member", field, id)
	}
	if err != nil {
		return err
	}
	if st.Role != role {
		return apperr.Validation("%s %d is a %s, not a %s", field, id, st.Role, role)
	}
	return nil
}

// DeleteStaff removes the appointments where the staff member is the doctor
// (with their medical records) and the billing rows they issued, then the
// staff row. Supervisor links and patient links are cleared by the schema.
func (s *Service) DeleteStaff(ctx context.Context, id int64) (*DeleteReport, error) {
	report := &DeleteReport{ID: id, Cascaded: map[string]int64{}}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		steps := []cascadeStep{
			{"medicalRecords", func(ctx context.Context) (int64, error) {
				return s.deps.MedicalRecords.DeleteByDoctorAppointments(ctx, id)
			}},
			{"appointments", func(ctx context.Context) (int64, error) {
				return s.deps.Appointments.DeleteByDoctor(ctx, id)
			}},
			{"billing", func(ctx context.Context) (int64, error) {
				return s.deps.Billing.DeleteByReceptionist(ctx, id)
			}},
		}
		if err := runCascade(ctx, steps, report.Cascaded); err != nil {
			return err
		}

		n, err := s.staff.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("staff")
		}
		report.Deleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCascade("staff", report)
	return report, nil
}

// -- Cascade helpers --

type cascadeStep struct {
	table string
	run   func(ctx context.Context) (int64, error)
}

func runCascade(ctx context.Context, steps []cascadeStep, counts map[string]int64) error {
	for _, step := range steps {
		n, err := step.run(ctx)
		if err != nil {
			return fmt.Errorf("delete dependent %s: %w", step.table, err)
		}
		counts[step.table] += n
	}
	return nil
}

func (s *Service) recordCascade(root string, report *DeleteReport) {
	evt := s.logger.Info().
		Str("entity", root).
		Int64("id", report.ID)
	for table, n := range report.Cascaded {
		evt = evt.Int64(table, n)
		if s.observer != nil {
			s.observer.CascadeDeleted(root, table, n)
		}
	}
	evt.Msg("cascade delete")
}
