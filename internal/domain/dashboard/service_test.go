package dashboard

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeEvaluator struct {
	values map[string]float64
	errs   map[string]error
	block  map[string]bool
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, m Measure) (float64, error) {
	if f.block[m.Name] {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if err := f.errs[m.Name]; err != nil {
		return 0, err
	}
	return f.values[m.Name], nil
}

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(f *fakeEvaluator) *Service {
	svc := NewService(f, zerolog.New(io.Discard))
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestSummary_AllMeasures(t *testing.T) {
	svc := newTestService(&fakeEvaluator{values: map[string]float64{
		MeasurePatients:     42,
		MeasureAppointments: 7,
		MeasureRevenue:      1234.5,
	}})

	sum := svc.Summary(context.Background())
	if sum.TotalPatients != 42 || sum.TotalAppointments != 7 || sum.TotalRevenue != 1234.5 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(sum.Errors) != 0 {
		t.Errorf("expected no errors, got %v", sum.Errors)
	}
	if !sum.GeneratedAt.Equal(testNow) {
		t.Errorf("expected generatedAt %v, got %v", testNow, sum.GeneratedAt)
	}
}

func TestSummary_EmptyStore(t *testing.T) {
	sum := newTestService(&fakeEvaluator{}).Summary(context.Background())
	if sum.TotalPatients != 0 || sum.TotalAppointments != 0 || sum.TotalRevenue != 0 || sum.Errors != nil {
		t.Errorf("expected zero summary, got %+v", sum)
	}
}

func TestSummary_PartialFailure(t *testing.T) {
	svc := newTestService(&fakeEvaluator{
		values: map[string]float64{MeasurePatients: 3, MeasureAppointments: 9, MeasureRevenue: 100},
		errs:   map[string]error{MeasureAppointments: errors.New("relation does not exist")},
	})

	sum := svc.Summary(context.Background())
	if sum.TotalPatients != 3 || sum.TotalRevenue != 100 {
		t.Errorf("healthy measures should survive a failure, got %+v", sum)
	}
	if sum.TotalAppointments != 0 {
		t.Errorf("failed measure should report zero, got %d", sum.TotalAppointments)
	}
	if len(sum.Errors) != 1 || sum.Errors[0] != MeasureAppointments {
		t.Errorf("expected errors [%s], got %v", MeasureAppointments, sum.Errors)
	}
}

func TestSummary_ErrorsFollowMeasureOrder(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(&fakeEvaluator{errs: map[string]error{
		MeasureRevenue:  boom,
		MeasurePatients: boom,
	}})

	sum := svc.Summary(context.Background())
	want := []string{MeasurePatients, MeasureRevenue}
	if len(sum.Errors) != len(want) {
		t.Fatalf("expected %v, got %v", want, sum.Errors)
	}
	for i := range want {
		if sum.Errors[i] != want[i] {
			t.Errorf("errors[%d] = %s, want %s", i, sum.Errors[i], want[i])
		}
	}
}

func TestSummary_SlowMeasureTimesOut(t *testing.T) {
	svc := newTestService(&fakeEvaluator{
		values: map[string]float64{MeasurePatients: 1},
		block:  map[string]bool{MeasureRevenue: true},
	})
	svc.timeout = 20 * time.Millisecond

	sum := svc.Summary(context.Background())
	if sum.TotalPatients != 1 {
		t.Errorf("expected patients 1, got %d", sum.TotalPatients)
	}
	if len(sum.Errors) != 1 || sum.Errors[0] != MeasureRevenue {
		t.Errorf("expected revenue to time out, got %v", sum.Errors)
	}
}

func TestSummary_RevenueRoundedToCents(t *testing.T) {
	svc := newTestService(&fakeEvaluator{values: map[string]float64{MeasureRevenue: 0.1 + 0.2}})

	if got := svc.Summary(context.Background()).TotalRevenue; got != 0.3 {
		t.Errorf("expected 0.3, got %v", got)
	}
}

func TestNewService_MeasuresNotShared(t *testing.T) {
	a := newTestService(&fakeEvaluator{})
	a.measures[0].SQL = "SELECT 1"
	a.measures = a.measures[:1]

	b := newTestService(&fakeEvaluator{})
	if len(b.measures) != 3 {
		t.Fatalf("expected 3 measures, got %d", len(b.measures))
	}
	if b.measures[0].SQL == "SELECT 1" {
		t.Error("measure SQL leaked between services")
	}
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.1 + 0.2, 0.3},
		{170.605, 170.61},
		{1e17, 1e17},
		{-2.5, -2.5},
		{-0.125, -0.13},
		{0, 0},
	}
	for _, tt := range tests {
		if got := roundCents(tt.in); got != tt.want {
			t.Errorf("roundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
