//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hospital/hms/internal/domain/admin"
	"github.com/hospital/hms/internal/domain/billing"
	"github.com/hospital/hms/internal/domain/clinical"
	"github.com/hospital/hms/internal/domain/dashboard"
	"github.com/hospital/hms/internal/domain/identity"
	"github.com/hospital/hms/internal/domain/scheduling"
	"github.com/hospital/hms/internal/platform/auth"
	"github.com/hospital/hms/internal/platform/db"
	"github.com/hospital/hms/internal/platform/metrics"
	"github.com/hospital/hms/migrations"
)

// globalPool is shared by every test and migrated once in TestMain.
var globalPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr := os.Getenv("HMS_TEST_DATABASE_URL")
	cleanup := func() {}
	if connStr == "" {
		var err error
		connStr, cleanup, err = startPostgres(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start postgres: %v\n", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(ctx, connStr, 10, 1)
	if err != nil {
		cleanup()
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	if _, err := db.NewMigrator(pool, migrations.FS).Up(ctx); err != nil {
		pool.Close()
		cleanup()
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	globalPool = pool
	code := m.Run()
	pool.Close()
	cleanup()
	os.Exit(code)
}

// app is the fully wired service graph used by the server.
type app struct {
	identity   *identity.Service
	scheduling *scheduling.Service
	clinical   *clinical.Service
	billing    *billing.Service
	admin      *admin.Service
	dashboard  *dashboard.Service
	metrics    *metrics.Metrics
}

// newApp truncates every table except role and wires the services against
// the shared pool.
func newApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	_, err := globalPool.Exec(ctx, `TRUNCATE medical_record, billing, appointment, patient_doctor,
		patient, staff, department, app_user RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	pool := globalPool
	logger := zerolog.New(io.Discard)
	m := metrics.New()
	tx := db.NewTransactor(pool)

	appointmentRepo := scheduling.NewAppointmentRepo(pool)
	recordRepo := clinical.NewMedicalRecordRepo(pool)
	billingRepo := billing.NewBillingRepo(pool)

	a := &app{metrics: m}
	a.identity = identity.NewService(identity.NewPatientRepo(pool), identity.NewStaffRepo(pool), identity.Dependents{
		Appointments:   appointmentRepo,
		MedicalRecords: recordRepo,
		Billing:        billingRepo,
	}, tx, m, logger)
	a.scheduling = scheduling.NewService(appointmentRepo, a.identity, recordRepo, tx, m, logger)
	a.clinical = clinical.NewService(recordRepo, a.identity, a.scheduling)
	a.billing = billing.NewService(billingRepo, a.identity)
	a.admin = admin.NewService(
		admin.NewDepartmentRepo(pool),
		admin.NewRoleRepo(pool),
		admin.NewUserRepo(pool),
		auth.NewTokenManager([]byte("integration-signing-key-0123456789"), time.Hour),
		bcrypt.MinCost,
		m,
		logger,
	)
	a.dashboard = dashboard.NewService(dashboard.NewMeasureRepo(pool), logger)
	return a
}

func ptr[T any](v T) *T { return &v }

func uniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func (a *app) mustPatient(t *testing.T, first, last string) *identity.Patient {
	t.Helper()
	p, err := a.identity.CreatePatient(context.Background(), &identity.PatientInput{
		FirstName: ptr(first),
		LastName:  ptr(last),
		DOB:       ptr("1990-04-12"),
		Gender:    ptr("female"),
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func (a *app) mustStaff(t *testing.T, last, role string) *identity.Staff {
	t.Helper()
	s, err := a.identity.CreateStaff(context.Background(), &identity.StaffInput{
		FirstName: ptr("Test"),
		LastName:  ptr(last),
		Role:      ptr(role),
	})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	return s
}

func (a *app) mustAppointment(t *testing.T, patientID, doctorID int64, at time.Time, status string) *scheduling.Appointment {
	t.Helper()
	appt, err := a.scheduling.CreateAppointment(context.Background(), &scheduling.AppointmentInput{
		PatientID:       ptr(patientID),
		DoctorID:        ptr(doctorID),
		AppointmentDate: ptr(at),
		Purpose:         ptr("checkup"),
		Status:          ptr(status),
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return appt
}

func (a *app) mustRecord(t *testing.T, patientID, appointmentID int64) *clinical.MedicalRecord {
	t.Helper()
	rec, err := a.clinical.CreateRecord(context.Background(), &clinical.MedicalRecordInput{
		PatientID:     ptr(patientID),
		AppointmentID: ptr(appointmentID),
		Diagnosis:     ptr("seasonal flu"),
	})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	return rec
}

func (a *app) mustBill(t *testing.T, patientID, receptionistID int64, fee float64) *billing.Billing {
	t.Helper()
	b, err := a.billing.CreateBilling(context.Background(), &billing.BillingInput{
		PatientID:       ptr(patientID),
		ReceptionistID:  ptr(receptionistID),
		ConsultationFee: ptr(fee),
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return b
}

// countRows returns the rows of table matching where ("" for all).
func countRows(t *testing.T, table, where string, args ...interface{}) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := globalPool.QueryRow(context.Background(), q, args...).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
