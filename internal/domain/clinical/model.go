package clinical

import (
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
)

// MedicalRecord maps to the medical_record table. Both the patient and the
// appointment are required and the appointment must belong to the patient.
type MedicalRecord struct {
	ID            int64     `db:"record_id" json:"recordId"`
	PatientID     int64     `db:"patient_id" json:"patientId"`
	AppointmentID int64     `db:"appointment_id" json:"appointmentId"`
	Diagnosis     *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription  *string   `db:"prescription" json:"prescription,omitempty"`
	LabResult     *string   `db:"lab_result" json:"labResult,omitempty"`
	Treatment     *string   `db:"treatment" json:"treatment,omitempty"`
	RecordDate    time.Time `db:"record_date" json:"recordDate"`
}

type MedicalRecordInput struct {
	PatientID     *int64     `json:"patientId"`
	AppointmentID *int64     `json:"appointmentId"`
	Diagnosis     *string    `json:"diagnosis"`
	Prescription  *string    `json:"prescription"`
	LabResult     *string    `json:"labResult"`
	Treatment     *string    `json:"treatment"`
	RecordDate    *time.Time `json:"recordDate"`
}

func (in *MedicalRecordInput) Apply(r *MedicalRecord) {
	if in.PatientID != nil {
		r.PatientID = *in.PatientID
	}
	if in.AppointmentID != nil {
		r.AppointmentID = *in.AppointmentID
	}
	if in.Diagnosis != nil {
		r.Diagnosis = in.Diagnosis
	}
	if in.Prescription != nil {
		r.Prescription = in.Prescription
	}
	if in.LabResult != nil {
		r.LabResult = in.LabResult
	}
	if in.Treatment != nil {
		r.Treatment = in.Treatment
	}
	if in.RecordDate != nil {
		r.RecordDate = *in.RecordDate
	}
}

func (r *MedicalRecord) Validate() error {
	if r.PatientID < 1 {
		return apperr.Validation("patientId is required")
	}
	if r.AppointmentID < 1 {
		return apperr.Validation("appointmentId is required")
	}
	return nil
}
