package identity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/httpx"
)

// DateLayout is the wire and storage format of Patient.DOB.
const DateLayout = "2006-01-02"

// Patient maps to the patient table.
type Patient struct {
	ID        int64     `db:"patient_id" json:"patientId"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	DOB       *string   `db:"dob" json:"dob,omitempty"`
	Gender    *string   `db:"gender" json:"gender,omitempty"`
	Height    *float64  `db:"height" json:"height,omitempty"`
	Weight    *float64  `db:"weight" json:"weight,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PatientInput is the body of POST and PUT /api/patients. Nil fields are left
// unchanged on update.
type PatientInput struct {
	FirstName *string  `json:"firstName"`
	LastName  *string  `json:"lastName"`
	DOB       *string  `json:"dob"`
	Gender    *string  `json:"gender"`
	Height    *float64 `json:"height"`
	Weight    *float64 `json:"weight"`
	Address   *string  `json:"address"`
	Phone     *string  `json:"phone"`
	Email     *string  `json:"email"`
}

func (in *PatientInput) Apply(p *Patient) {
	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.DOB != nil {
		p.DOB = in.DOB
	}
	if in.Gender != nil {
		p.Gender = in.Gender
	}
	if in.Height != nil {
		p.Height = in.Height
	}
	if in.Weight != nil {
		p.Weight = in.Weight
	}
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if in.Email != nil {
		p.Email = in.Email
	}
}

// Validate checks the fields the store cannot. An empty dob is cleared.
func (p *Patient) Validate(now time.Time) error {
	if p.FirstName == "" || p.LastName == "" {
		return apperr.Validation("firstName and lastName are required")
	}
	if p.DOB != nil && *p.DOB == "" {
		p.DOB = nil
	}
	if p.DOB != nil {
		dob, err := time.Parse(DateLayout, *p.DOB)
		if err != nil {
			return apperr.Validation("dob must be a date in YYYY-MM-DD format")
		}
		if dob.After(now) {
			return apperr.Validation("dob cannot be in the future")
		}
	}
	if p.Height != nil && *p.Height <= 0 {
		return apperr.Validation("height must be positive")
	}
	if p.Weight != nil && *p.Weight <= 0 {
		return apperr.Validation("weight must be positive")
	}
	if p.Email != nil && *p.Email != "" && !strings.Contains(*p.Email, "@") {
		return apperr.Validation("email %q is not a valid address", *p.Email)
	}
	return nil
}

// StaffRole is the closed set of staff job roles.
type StaffRole string

const (
	StaffDoctor       StaffRole = "doctor"
	StaffNurse        StaffRole = "nurse"
	StaffReceptionist StaffRole = "receptionist"
	StaffOther        StaffRole = "other"
)

// ParseStaffRole matches s case-insensitively against the known roles.
func ParseStaffRole(s string) (StaffRole, error) {
	switch r := StaffRole(strings.ToLower(strings.TrimSpace(s))); r {
	case StaffDoctor, StaffNurse, StaffReceptionist, StaffOther:
		return r, nil
	}
	return "", apperr.Validation("invalid staff role %q: must be one of doctor, nurse, receptionist, other", s)
}

// Staff maps to the staff table. DoctorID is the supervising staff member.
type Staff struct {
	ID           int64     `db:"staff_id" json:"staffId"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Role         StaffRole `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	DepartmentID *int64    `db:"department_id" json:"departmentId,omitempty"`
	DoctorID     *int64    `db:"doctor_id" json:"doctorId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type StaffInput struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Role         *string `json:"role"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	DepartmentID *int64  `json:"departmentId"`
	DoctorID     *int64  `json:"doctorId"`

	// Set when the body carries an explicit null for the link.
	ClearDepartment bool `json:"-"`
	ClearDoctor     bool `json:"-"`
}

func (in *StaffInput) UnmarshalJSON(data []byte) error {
	type plain StaffInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}
	nulls, err := httpx.NullFields(data, "departmentId", "doctorId")
	if err != nil {
		return err
	}
	in.ClearDepartment = nulls["departmentId"]
	in.ClearDoctor = nulls["doctorId"]
	return nil
}

// Apply copies the set fields onto s, parsing the role. Cleared links
// are reset to nil.
func (in *StaffInput) Apply(s *Staff) error {
	if in.FirstName != nil {
		s.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		s.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil {
		role, err := ParseStaffRole(*in.Role)
		if err != nil {
			return err
		}
		s.Role = role
	}
	if in.Phone != nil {
		s.Phone = in.Phone
	}
	if in.Email != nil {
		s.Email = in.Email
	}
	if in.ClearDepartment {
		s.DepartmentID = nil
	} else if in.DepartmentID != nil {
		s.DepartmentID = in.DepartmentID
	}
	if in.ClearDoctor {
		s.DoctorID = nil
	} else if in.DoctorID != nil {
		s.DoctorID = in.DoctorID
	}
	return nil
}

func (s *Staff) Validate() error {
	if s.FirstName == "" || s.LastName == "" {
		return apperr.Validation("firstName and lastName are required")
	}
	if s.Role == "" {
		return apperr.Validation("role is required")
	}
	if s.DepartmentID != nil && *s.DepartmentID < 1 {
		return apperr.Validation("departmentId must be a positive id")
	}
	if s.DoctorID != nil && *s.DoctorID < 1 {
		return apperr.Validation("doctorId must be a positive id")
	}
	if s.ID != 0 && s.DoctorID != nil && *s.DoctorID == s.ID {
		return apperr.Validation("staff member cannot supervise themselves")
	}
	return nil
}

// StaffRef is the short form used by dropdowns.
type StaffRef struct {
	ID        int64  `json:"staffId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// DeleteReport describes a delete and the dependent rows it removed.
type DeleteReport struct {
	ID       int64            `json:"id"`
	Deleted  int64            `json:"deleted"`
	Cascaded map[string]int64 `json:"cascaded"`
}
