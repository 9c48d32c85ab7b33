package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospital/hms/internal/platform/db"
)

type measureRepoPG struct {
	pool *pgxpool.Pool
}

func NewMeasureRepo(pool *pgxpool.Pool) MeasureEvaluator {
	return &measureRepoPG{pool: pool}
}

func (r *measureRepoPG) Evaluate(ctx context.Context, m Measure) (float64, error) {
	var v float64
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, m.SQL).Scan(&v); err != nil {
		return 0, fmt.Errorf("evaluate %s: %w", m.Name, err)
	}
	return v, nil
}
