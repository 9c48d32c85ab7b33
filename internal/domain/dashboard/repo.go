package dashboard

import "context"

// MeasureEvaluator runs a measure's query and returns its single value.
type MeasureEvaluator interface {
	Evaluate(ctx context.Context, m Measure) (float64, error)
}
