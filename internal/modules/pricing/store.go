// README: Rate plan store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetPlan(ctx context.Context, ref PlanRef) (Snapshot, error) {
	row := s.db.QueryRow(ctx, `
		SELECT auto_one_way, auto_return,
		       ow_upto_50, ow_upto_100, ow_upto_150,
		       rt_upto_50, rt_upto_100, rt_upto_150
		FROM rate_plans
		WHERE category = $1 AND vehicle_type = $2 AND model = $3`,
		string(ref.Category), ref.VehicleType, ref.Model,
	)

	var (
		autoOneWay, autoReturn *int64
		owU50, owU100, owU150  *float64
		rtU50, rtU100, rtU150  *float64
	)
	err := row.Scan(
		&autoOneWay, &autoReturn,
		&owU50, &owU100, &owU150,
		&rtU50, &rtU100, &rtU150,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrPlanNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if autoOneWay != nil {
		snap.Auto = &AutoFare{OneWay: *autoOneWay}
		if autoReturn != nil {
			snap.Auto.Return = *autoReturn
		}
	}
	if owU50 != nil && owU100 != nil && owU150 != nil {
		snap.OneWay = &DistanceRates{Upto50: *owU50, Upto100: *owU100, Upto150: *owU150}
	}
	if rtU50 != nil && rtU100 != nil && rtU150 != nil {
		snap.Return = &DistanceRates{Upto50: *rtU50, Upto100: *rtU100, Upto150: *rtU150}
	}
	return snap, nil
}
