//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hospital/hms/internal/domain/identity"
	"github.com/hospital/hms/internal/platform/apperr"
)

func TestDeletePatient_Cascade(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	jane := a.mustPatient(t, "Jane", "Doe")
	john := a.mustPatient(t, "John", "Roe")
	house := a.mustStaff(t, "House", "doctor")
	pam := a.mustStaff(t, "Beesly", "receptionist")

	when := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	janeAppt := a.mustAppointment(t, jane.ID, house.ID, when, "scheduled")
	johnAppt := a.mustAppointment(t, john.ID, house.ID, when.Add(time.Hour), "scheduled")
	a.mustRecord(t, jane.ID, janeAppt.ID)
	a.mustRecord(t, john.ID, johnAppt.ID)
	a.mustBill(t, jane.ID, pam.ID, 80)
	a.mustBill(t, john.ID, pam.ID, 60)
	if err := a.identity.AssignDoctor(ctx, jane.ID, house.ID); err != nil {
		t.Fatalf("assign doctor: %v", err)
	}

	report, err := a.identity.DeletePatient(ctx, jane.ID)
	if err != nil {
		t.Fatalf("delete patient: %v", err)
	}
	if report.Deleted != 1 || report.Cascaded["appointments"] != 1 ||
		report.Cascaded["medicalRecords"] != 1 || report.Cascaded["billing"] != 1 {
		t.Errorf("unexpected report %+v", report)
	}

	for _, table := range []string{"appointment", "medical_record", "billing", "patient_doctor"} {
		if n := countRows(t, table, "patient_id = $1", jane.ID); n != 0 {
			t.Errorf("%s still has %d rows for the deleted patient", table, n)
		}
	}
	if n := countRows(t, "patient", "patient_id = $1", jane.ID); n != 0 {
		t.Error("patient row survived the delete")
	}

	// The other patient is untouched.
	for _, table := range []string{"appointment", "medical_record", "billing"} {
		if n := countRows(t, table, "patient_id = $1", john.ID); n != 1 {
			t.Errorf("%s: expected 1 row for the other patient, got %d", table, n)
		}
	}

	series, err := testutil.GatherAndCount(a.metrics.Registry, "hms_cascade_deleted_rows_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if series != 3 {
		t.Errorf("expected a cascade series per dependent table, got %d", series)
	}
}

func TestDeletePatient_NotFoundDeletesNothing(t *testing.T) {
	a := newApp(t)
	jane := a.mustPatient(t, "Jane", "Doe")

	_, err := a.identity.DeletePatient(context.Background(), jane.ID+100)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if n := countRows(t, "patient", ""); n != 1 {
		t.Errorf("expected the existing patient to survive, got %d rows", n)
	}
}

func TestDeleteStaff_Cascade(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	jane := a.mustPatient(t, "Jane", "Doe")
	house := a.mustStaff(t, "House", "doctor")
	wilson := a.mustStaff(t, "Wilson", "doctor")
	pam := a.mustStaff(t, "Beesly", "receptionist")

	when := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	houseAppt := a.mustAppointment(t, jane.ID, house.ID, when, "scheduled")
	wilsonAppt := a.mustAppointment(t, jane.ID, wilson.ID, when.Add(time.Hour), "scheduled")
	a.mustRecord(t, jane.ID, houseAppt.ID)
	a.mustRecord(t, jane.ID, wilsonAppt.ID)
	a.mustBill(t, jane.ID, pam.ID, 50)

	report, err := a.identity.DeleteStaff(ctx, house.ID)
	if err != nil {
		t.Fatalf("delete staff: %v", err)
	}
	if report.Cascaded["appointments"] != 1 || report.Cascaded["medicalRecords"] != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if n := countRows(t, "appointment", "doctor_id = $1", house.ID); n != 0 {
		t.Errorf("appointments of the deleted doctor remain: %d", n)
	}
	if n := countRows(t, "medical_record", "appointment_id = $1", houseAppt.ID); n != 0 {
		t.Errorf("records of removed appointments remain: %d", n)
	}
	if n := countRows(t, "appointment", "doctor_id = $1", wilson.ID); n != 1 {
		t.Errorf("other doctor's appointment should survive, got %d", n)
	}

	report, err = a.identity.DeleteStaff(ctx, pam.ID)
	if err != nil {
		t.Fatalf("delete receptionist: %v", err)
	}
	if report.Cascaded["billing"] != 1 || countRows(t, "billing", "") != 0 {
		t.Errorf("expected the receptionist's bill to be removed, report %+v", report)
	}
}

func TestDeleteStaff_ClearsSupervisorLinks(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	house := a.mustStaff(t, "House", "doctor")
	carla := a.mustStaff(t, "Espinosa", "nurse")
	if _, err := a.identity.UpdateStaff(ctx, carla.ID, &identity.StaffInput{DoctorID: ptr(house.ID)}); err != nil {
		t.Fatalf("assign supervisor: %v", err)
	}

	if _, err := a.identity.DeleteStaff(ctx, house.ID); err != nil {
		t.Fatalf("delete supervisor: %v", err)
	}
	got, err := a.identity.GetStaff(ctx, carla.ID)
	if err != nil {
		t.Fatalf("get nurse: %v", err)
	}
	if got.DoctorID != nil {
		t.Errorf("expected supervisor to be cleared, got %d", *got.DoctorID)
	}
}

func TestDeleteAppointment_RemovesRecords(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	jane := a.mustPatient(t, "Jane", "Doe")
	house := a.mustStaff(t, "House", "doctor")
	appt := a.mustAppointment(t, jane.ID, house.ID, time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC), "scheduled")
	a.mustRecord(t, jane.ID, appt.ID)
	a.mustRecord(t, jane.ID, appt.ID)

	report, err := a.scheduling.DeleteAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("delete appointment: %v", err)
	}
	if report.Cascaded["medicalRecords"] != 2 {
		t.Errorf("expected 2 cascaded records, got %+v", report)
	}
	if countRows(t, "medical_record", "") != 0 || countRows(t, "appointment", "") != 0 {
		t.Error("expected appointment and its records to be gone")
	}

	if _, err := a.scheduling.DeleteAppointment(ctx, appt.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
