package billing

import (
	"math"
	"strings"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
)

// PaymentStatus is the closed set of billing payment states.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
)

// PaymentStatuses lists every status in display order.
var PaymentStatuses = []PaymentStatus{PaymentPaid, PaymentUnpaid, PaymentPending}

// ParsePaymentStatus matches s case-insensitively against the known statuses.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case PaymentPaid, PaymentUnpaid, PaymentPending:
		return st, nil
	}
	return "", apperr.Validation("invalid payment status %q: must be one of paid, unpaid, pending", s)
}

// Billing maps to the billing table. TotalAmount is derived from the four
// fees on every write.
type Billing struct {
	ID              int64         `db:"billing_id" json:"billingId"`
	PatientID       int64         `db:"patient_id" json:"patientId"`
	ReceptionistID  int64         `db:"receptionist_id" json:"receptionistId"`
	TreatmentFee    float64       `db:"treatment_fee" json:"treatmentFee"`
	MedicationFee   float64       `db:"medication_fee" json:"medicationFee"`
	LabTestFee      float64       `db:"lab_test_fee" json:"labTestFee"`
	ConsultationFee float64       `db:"consultation_fee" json:"consultationFee"`
	TotalAmount     float64       `db:"total_amount" json:"totalAmount"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"paymentStatus"`
	BillingDate     time.Time     `db:"billing_date" json:"billingDate"`
}

// BillingInput carries no total: it is always computed from the fees.
type BillingInput struct {
	PatientID       *int64     `json:"patientId"`
	ReceptionistID  *int64     `json:"receptionistId"`
	TreatmentFee    *float64   `json:"treatmentFee"`
	MedicationFee   *float64   `json:"medicationFee"`
	LabTestFee      *float64   `json:"labTestFee"`
	ConsultationFee *float64   `json:"consultationFee"`
	PaymentStatus   *string    `json:"paymentStatus"`
	BillingDate     *time.Time `json:"billingDate"`
}

// Apply copies the set fields onto b, parsing the payment status.
func (in *BillingInput) Apply(b *Billing) error {
	if in.PatientID != nil {
		b.PatientID = *in.PatientID
	}
	if in.ReceptionistID != nil {
		b.ReceptionistID = *in.ReceptionistID
	}
	if in.TreatmentFee != nil {
		b.TreatmentFee = *in.TreatmentFee
	}
	if in.MedicationFee != nil {
		b.MedicationFee = *in.MedicationFee
	}
	if in.LabTestFee != nil {
		b.LabTestFee = *in.LabTestFee
	}
	if in.ConsultationFee != nil {
		b.ConsultationFee = *in.ConsultationFee
	}
	if in.PaymentStatus != nil {
		st, err := ParsePaymentStatus(*in.PaymentStatus)
		if err != nil {
			return err
		}
		b.PaymentStatus = st
	}
	if in.BillingDate != nil {
		b.BillingDate = *in.BillingDate
	}
	return nil
}

// ComputeTotal rounds the fees to cents, as stored, and sets TotalAmount to
// their sum.
func (b *Billing) ComputeTotal() {
	b.TreatmentFee = roundCents(b.TreatmentFee)
	b.MedicationFee = roundCents(b.MedicationFee)
	b.LabTestFee = roundCents(b.LabTestFee)
	b.ConsultationFee = roundCents(b.ConsultationFee)
	b.TotalAmount = roundCents(b.TreatmentFee + b.MedicationFee + b.LabTestFee + b.ConsultationFee)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (b *Billing) Validate() error {
	if b.PatientID < 1 {
		return apperr.Validation("patientId is required")
	}
	if b.ReceptionistID < 1 {
		return apperr.Validation("receptionistId is required")
	}
	fees := []struct {
		name  string
		value float64
	}{
		{"treatmentFee", b.TreatmentFee},
		{"medicationFee", b.MedicationFee},
		{"labTestFee", b.LabTestFee},
		{"consultationFee", b.ConsultationFee},
	}
	for _, f := range fees {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return apperr.Validation("%s must be a non-negative amount", f.name)
		}
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentUnpaid
	}
	return nil
}

// StatusTotal is the number and value of bills in one payment status.
type StatusTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// RevenueSummary groups billed amounts by payment status.
type RevenueSummary struct {
	TotalRevenue float64                       `json:"totalRevenue"`
	ByStatus     map[PaymentStatus]StatusTotal `json:"byStatus"`
}
