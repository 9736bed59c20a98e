// README: Vehicle store backed by PostgreSQL; booked flag flips are conditional updates.
package vehicle

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabswift/internal/modules/pricing"
	"cabswift/internal/modules/rating"
	"cabswift/internal/types"
)

var ErrNotFound = errors.New("vehicle not found")

// Store is the persistence contract the booking engine needs from vehicles.
// Acquire and AddRating are single conditional/atomic writes, never
// read-then-write: concurrent callers must serialize on the row itself.
type Store interface {
	Get(ctx context.Context, id types.ID) (*Vehicle, error)
	Create(ctx context.Context, v *Vehicle) error
	UpdateSnapshot(ctx context.Context, id types.ID, snap pricing.Snapshot) error
	AddRating(ctx context.Context, id types.ID, stars int) error
	Acquire(ctx context.Context, id types.ID, at time.Time) (bool, error)
	Release(ctx context.Context, id types.ID) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, driver_id, category, vehicle_type, model, registration_no, seat_count,
		       is_active, is_verified, approval_status, booked, under_maintenance,
		       auto_one_way, auto_return,
		       ow_upto_50, ow_upto_100, ow_upto_150,
		       rt_upto_50, rt_upto_100, rt_upto_150,
		       rating_average, rating_count, rating_b1, rating_b2, rating_b3, rating_b4, rating_b5,
		       work_days, work_start, work_end, created_at
		FROM vehicles
		WHERE id = $1`, string(id),
	)

	var (
		v                     Vehicle
		autoOneWay, autoRet   *int64
		owU50, owU100, owU150 *float64
		rtU50, rtU100, rtU150 *float64
		workDays              int
		createdAt             time.Time
	)
	err := row.Scan(
		&v.ID, &v.DriverID, &v.PlanRef.Category, &v.PlanRef.VehicleType, &v.PlanRef.Model,
		&v.RegistrationNo, &v.SeatCount,
		&v.IsActive, &v.IsVerified, &v.ApprovalStatus, &v.Booked, &v.UnderMaintenance,
		&autoOneWay, &autoRet,
		&owU50, &owU100, &owU150,
		&rtU50, &rtU100, &rtU150,
		&v.Rating.Average, &v.Rating.Count,
		&v.Rating.Breakdown[0], &v.Rating.Breakdown[1], &v.Rating.Breakdown[2],
		&v.Rating.Breakdown[3], &v.Rating.Breakdown[4],
		&workDays, &v.Schedule.Start, &v.Schedule.End, &createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if autoOneWay != nil {
		v.Pricing.Auto = &pricing.AutoFare{OneWay: *autoOneWay}
		if autoRet != nil {
			v.Pricing.Auto.Return = *autoRet
		}
	}
	if owU50 != nil && owU100 != nil && owU150 != nil {
		v.Pricing.OneWay = &pricing.DistanceRates{Upto50: *owU50, Upto100: *owU100, Upto150: *owU150}
	}
	if rtU50 != nil && rtU100 != nil && rtU150 != nil {
		v.Pricing.Return = &pricing.DistanceRates{Upto50: *rtU50, Upto100: *rtU100, Upto150: *rtU150}
	}
	for d := 0; d < 7; d++ {
		v.Schedule.Days[d] = workDays&(1<<d) != 0
	}
	v.CreatedAt = createdAt
	return &v, nil
}

func (s *PGStore) Create(ctx context.Context, v *Vehicle) error {
	workDays := 0
	for d := 0; d < 7; d++ {
		if v.Schedule.Days[d] {
			workDays |= 1 << d
		}
	}
	var autoOneWay, autoRet *int64
	if v.Pricing.Auto != nil {
		autoOneWay = &v.Pricing.Auto.OneWay
		autoRet = &v.Pricing.Auto.Return
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (
			id, driver_id, category, vehicle_type, model, registration_no, seat_count,
			is_active, is_verified, approval_status, booked, under_maintenance,
			auto_one_way, auto_return,
			ow_upto_50, ow_upto_100, ow_upto_150,
			rt_upto_50, rt_upto_100, rt_upto_150,
			work_days, work_start, work_end, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14,
			$15, $16, $17,
			$18, $19, $20,
			$21, $22, $23, $24
		)`,
		string(v.ID), string(v.DriverID),
		string(v.PlanRef.Category), v.PlanRef.VehicleType, v.PlanRef.Model,
		v.RegistrationNo, v.SeatCount,
		v.IsActive, v.IsVerified, string(v.ApprovalStatus), v.Booked, v.UnderMaintenance,
		autoOneWay, autoRet,
		ratesCols(v.Pricing.OneWay), ratesCol2(v.Pricing.OneWay), ratesCol3(v.Pricing.OneWay),
		ratesCols(v.Pricing.Return), ratesCol2(v.Pricing.Return), ratesCol3(v.Pricing.Return),
		workDays, v.Schedule.Start, v.Schedule.End, v.CreatedAt,
	)
	return err
}

func (s *PGStore) UpdateSnapshot(ctx context.Context, id types.ID, snap pricing.Snapshot) error {
	var autoOneWay, autoRet *int64
	if snap.Auto != nil {
		autoOneWay = &snap.Auto.OneWay
		autoRet = &snap.Auto.Return
	}
	_, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET auto_one_way = $1, auto_return = $2,
		    ow_upto_50 = $3, ow_upto_100 = $4, ow_upto_150 = $5,
		    rt_upto_50 = $6, rt_upto_100 = $7, rt_upto_150 = $8
		WHERE id = $9`,
		autoOneWay, autoRet,
		ratesCols(snap.OneWay), ratesCol2(snap.OneWay), ratesCol3(snap.OneWay),
		ratesCols(snap.Return), ratesCol2(snap.Return), ratesCol3(snap.Return),
		string(id),
	)
	return err
}

// AddRating folds one star value into the stored aggregate in a single
// statement; the SET expressions all read the pre-update row, so two
// concurrent folds both land and neither overwrites the other.
func (s *PGStore) AddRating(ctx context.Context, id types.ID, stars int) error {
	if stars < 1 || stars > 5 {
		return rating.ErrInvalidRating
	}
	_, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET rating_b1 = rating_b1 + CASE WHEN $2 = 1 THEN 1 ELSE 0 END,
		    rating_b2 = rating_b2 + CASE WHEN $2 = 2 THEN 1 ELSE 0 END,
		    rating_b3 = rating_b3 + CASE WHEN $2 = 3 THEN 1 ELSE 0 END,
		    rating_b4 = rating_b4 + CASE WHEN $2 = 4 THEN 1 ELSE 0 END,
		    rating_b5 = rating_b5 + CASE WHEN $2 = 5 THEN 1 ELSE 0 END,
		    rating_count = rating_count + 1,
		    rating_average = (rating_b1 + rating_b2 * 2 + rating_b3 * 3 + rating_b4 * 4 + rating_b5 * 5 + $2)::double precision
		                     / (rating_count + 1)
		WHERE id = $1`,
		string(id), stars,
	)
	return err
}

// Acquire flips booked to true only while the full availability predicate
// still holds, in one statement. Two racing callers cannot both succeed.
func (s *PGStore) Acquire(ctx context.Context, id types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET booked = TRUE
		WHERE id = $1
		  AND is_active
		  AND is_verified
		  AND approval_status = 'approved'
		  AND NOT booked
		  AND NOT under_maintenance
		  AND (work_days & (1 << $2)) <> 0
		  AND (work_start = '' OR work_end = '' OR ($3 >= work_start AND $3 <= work_end))`,
		string(id), int(at.Weekday()), at.Format("15:04"),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) Release(ctx context.Context, id types.ID) error {
	_, err := s.db.Exec(ctx, `UPDATE vehicles SET booked = FALSE WHERE id = $1`, string(id))
	return err
}

func ratesCols(r *pricing.DistanceRates) *float64 {
	if r == nil {
		return nil
	}
	return &r.Upto50
}

func ratesCol2(r *pricing.DistanceRates) *float64 {
	if r == nil {
		return nil
	}
	return &r.Upto100
}

func ratesCol3(r *pricing.DistanceRates) *float64 {
	if r == nil {
		return nil
	}
	return &r.Upto150
}
