package billing

import (
	"context"
	"errors"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
)

type Service struct {
	bills     BillingRepository
	directory Directory
	now       func() time.Time
}

func NewService(bills BillingRepository, directory Directory) *Service {
	return &Service{bills: bills, directory: directory, now: time.Now}
}

// CreateBilling stores a bill with its total computed from the fees.
func (s *Service) CreateBilling(ctx context.Context, in *BillingInput) (*Billing, error) {
	b := &Billing{}
	if err := in.Apply(b); err != nil {
		return nil, err
	}
	if b.BillingDate.IsZero() {
		b.BillingDate = s.now().UTC()
	}
	if err := s.prepare(ctx, b, true); err != nil {
		return nil, err
	}
	if err := s.bills.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBilling(ctx context.Context, id int64) (*Billing, error) {
	return s.bills.GetByID(ctx, id)
}

// UpdateBilling applies a partial update and recomputes the total. The
// receptionist's role is only re-checked when receptionistId changes, so a
// bill stays payable after its issuer changes role.
func (s *Service) UpdateBilling(ctx context.Context, id int64, in *BillingInput) (*Billing, error) {
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	issuer := b.ReceptionistID
	if err := in.Apply(b); err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, b, b.ReceptionistID != issuer); err != nil {
		return nil, err
	}
	if err := s.bills.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) prepare(ctx context.Context, b *Billing, checkReceptionist bool) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.ComputeTotal()

	ok, err := s.directory.PatientExists(ctx, b.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("patientId %d does not reference an existing patient", b.PatientID)
	}
	if !checkReceptionist {
		return nil
	}

	role, err := s.directory.StaffRole(ctx, b.ReceptionistID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation("receptionistId %d does not reference an existing staff member", b.ReceptionistID)
	}
	if err != nil {
		return err
	}
	if role != "receptionist" {
		return apperr.Validation("receptionistId %d is a %s, not a receptionist", b.ReceptionistID, role)
	}
	return nil
}

func (s *Service) DeleteBilling(ctx context.Context, id int64) error {
	n, err := s.bills.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("billing record")
	}
	return nil
}

func (s *Service) ListBilling(ctx context.Context, limit, offset int) ([]*Billing, int, error) {
	return s.bills.List(ctx, limit, offset)
}

func (s *Service) ListPatientBilling(ctx context.Context, patientID int64, limit, offset int) ([]*Billing, int, error) {
	ok, err := s.directory.PatientExists(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, apperr.NotFound("patient")
	}
	return s.bills.ListByPatient(ctx, patientID, limit, offset)
}

// Summary reports every payment status, zero-filled, and the total billed.
func (s *Service) Summary(ctx context.Context) (*RevenueSummary, error) {
	totals, err := s.bills.TotalsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary := &RevenueSummary{ByStatus: make(map[PaymentStatus]StatusTotal, len(PaymentStatuses))}
	for _, st := range PaymentStatuses {
		t := totals[st]
		summary.ByStatus[st] = t
		summary.TotalRevenue += t.Amount
	}
	summary.TotalRevenue = roundCents(summary.TotalRevenue)
	return summary, nil
}
