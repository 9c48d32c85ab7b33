package dashboard

import (
	"math"
	"time"
)

// Measure is a single dashboard figure computed by its own scalar query.
type Measure struct {
	Name string
	SQL  string
}

// defaultMeasures returns a fresh set of the dashboard figures. Each is
// evaluated independently so one failing query cannot blank the others.
func defaultMeasures() []Measure {
	return []Measure{
		{Name: MeasurePatients, SQL: `SELECT COUNT(*)::float8 FROM patient`},
		{Name: MeasureAppointments, SQL: `SELECT COUNT(*)::float8 FROM appointment`},
		{Name: MeasureRevenue, SQL: `SELECT COALESCE(SUM(total_amount), 0)::float8 FROM billing`},
	}
}

const (
	MeasurePatients     = "totalPatients"
	MeasureAppointments = "totalAppointments"
	MeasureRevenue      = "totalRevenue"
)

// Summary is the dashboard payload. Errors names the measures that failed;
// their figures are reported as zero.
type Summary struct {
	TotalPatients     int64     `json:"totalPatients"`
	TotalAppointments int64     `json:"totalAppointments"`
	TotalRevenue      float64   `json:"totalRevenue"`
	Errors            []string  `json:"errors,omitempty"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

func (s *Summary) set(name string, v float64) {
	switch name {
	case MeasurePatients:
		s.TotalPatients = int64(v)
	case MeasureAppointments:
		s.TotalAppointments = int64(v)
	case MeasureRevenue:
		s.TotalRevenue = roundCents(v)
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
