package scheduling

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/httpx"
)

// AppointmentStatus is the closed set of appointment states.
type AppointmentStatus string

const (
	StatusScheduled    AppointmentStatus = "scheduled"
	StatusCompleted    AppointmentStatus = "completed"
	StatusCancelled    AppointmentStatus = "cancelled"
	StatusNotCompleted AppointmentStatus = "not completed"
)

// ParseStatus matches s case-insensitively. "not_completed" and
// "not-completed" are read as "not completed".
func ParseStatus(s string) (AppointmentStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch st := AppointmentStatus(norm); st {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNotCompleted:
		return st, nil
	}
	return "", apperr.Validation("invalid appointment status %q: must be one of scheduled, completed, cancelled, not completed", s)
}

// Appointment maps to the appointment table. DoctorID is optional.
type Appointment struct {
	ID              int64             `db:"appointment_id" json:"appointmentId"`
	PatientID       int64             `db:"patient_id" json:"patientId"`
	DoctorID        *int64            `db:"doctor_id" json:"doctorId,omitempty"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointmentDate"`
	Purpose         *string           `db:"purpose" json:"purpose,omitempty"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
}

type AppointmentInput struct {
	PatientID       *int64     `json:"patientId"`
	DoctorID        *int64     `json:"doctorId"`
	AppointmentDate *time.Time `json:"appointmentDate"`
	Purpose         *string    `json:"purpose"`
	Status          *string    `json:"status"`

	// ClearDoctor is set by an explicit "doctorId": null.
	ClearDoctor bool `json:"-"`
}

func (in *AppointmentInput) UnmarshalJSON(data []byte) error {
	type plain AppointmentInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}
	nulls, err := httpx.NullFields(data, "doctorId")
	if err != nil {
		return err
	}
	in.ClearDoctor = nulls["doctorId"]
	return nil
}

// Apply copies the set fields onto a, parsing the status.
func (in *AppointmentInput) Apply(a *Appointment) error {
	if in.PatientID != nil {
		a.PatientID = *in.PatientID
	}
	if in.ClearDoctor {
		a.DoctorID = nil
	} else if in.DoctorID != nil {
		a.DoctorID = in.DoctorID
	}
	if in.AppointmentDate != nil {
		a.AppointmentDate = *in.AppointmentDate
	}
	if in.Purpose != nil {
		a.Purpose = in.Purpose
	}
	if in.Status != nil {
		st, err := ParseStatus(*in.Status)
		if err != nil {
			return err
		}
		a.Status = st
	}
	return nil
}

func (a *Appointment) Validate() error {
	if a.PatientID < 1 {
		return apperr.Validation("patientId is required")
	}
	if a.DoctorID != nil && *a.DoctorID < 1 {
		return apperr.Validation("doctorId must be a positive id")
	}
	if a.AppointmentDate.IsZero() {
		return apperr.Validation("appointmentDate is required")
	}
	if a.Status == "" {
		a.Status = StatusNotCompleted
	}
	return nil
}

// UpcomingAppointment is an appointment joined with display names.
type UpcomingAppointment struct {
	ID              int64             `json:"appointmentId"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	Purpose         *string           `json:"purpose,omitempty"`
	Status          AppointmentStatus `json:"status"`
	PatientID       int64             `json:"patientId"`
	PatientName     string            `json:"patientName"`
	DoctorID        *int64            `json:"doctorId,omitempty"`
	DoctorName      *string           `json:"doctorName,omitempty"`
}

// DeleteReport describes a delete and the dependent rows it removed.
type DeleteReport struct {
	ID       int64            `json:"id"`
	Deleted  int64            `json:"deleted"`
	Cascaded map[string]int64 `json:"cascaded"`
}
