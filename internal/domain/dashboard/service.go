package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMeasureTimeout bounds each measure query.
const DefaultMeasureTimeout = 5 * time.Second

type Service struct {
	store    MeasureEvaluator
	measures []Measure
	timeout  time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(store MeasureEvaluator, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		measures: defaultMeasures(),
		timeout:  DefaultMeasureTimeout,
		logger:   logger.With().Str("component", "dashboard").Logger(),
		now:      time.Now,
	}
}

type result struct {
	value float64
	err   error
}

// Summary evaluates every measure concurrently. It never fails: a measure
// whose query errors contributes zero and is listed in Summary.Errors.
func (s *Service) Summary(ctx context.Context) *Summary {
	results := make([]result, len(s.measures))

	var wg sync.WaitGroup
	for i, m := range s.measures {
		wg.Add(1)
		go func(i int, m Measure) {
			defer wg.Done()
			mctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			v, err := s.store.Evaluate(mctx, m)
			results[i] = result{value: v, err: err}
		}(i, m)
	}
	wg.Wait()

	sum := &Summary{GeneratedAt: s.now().UTC()}
	for i, m := range s.measures {
		if err := results[i].err; err != nil {
			s.logger.Warn().Err(err).Str("measure", m.Name).Msg("dashboard measure failed")
			sum.Errors = append(sum.Errors, m.Name)
			continue
		}
		sum.set(m.Name, results[i].value)
	}
	return sum
}
