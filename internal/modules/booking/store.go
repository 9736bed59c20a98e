// README: Booking store; status writes are compare-and-set on status + version.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabswift/internal/modules/rating"
	"cabswift/internal/types"
)

// StatusPatch carries the extra fields a transition writes alongside the
// status flip, so everything lands in one atomic statement.
type StatusPatch struct {
	DriverID    *types.ID
	CancelledBy string
	Reason      string
	Fee         int64
	Refund      int64
}

// Store is the persistence contract. UpdateStatus must be compare-and-set:
// the write succeeds only when the stored status and version still match,
// so two racing transitions from the same source cannot both land.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error)
	SaveRating(ctx context.Context, id types.ID, role string, e rating.Entry) error
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*Booking, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, number, rider_id, driver_id, vehicle_id, trip_type,
			pickup_lat, pickup_lng, pickup_address, pickup_at,
			drop_lat, drop_lng, drop_address, drop_at,
			passengers,
			base_fare, distance_km, per_km_rate,
			extra_driver_allowance, extra_night_charge, extra_toll_charge,
			subtotal, tax, discount, total, currency,
			payment_method, payment_status, payment_gateway, payment_txn,
			status, status_version, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15,
			$16, $17, $18,
			$19, $20, $21,
			$22, $23, $24, $25, $26,
			$27, $28, $29, $30,
			$31, $32, $33
		)`,
		string(b.ID), b.Number, string(b.RiderID), nullIDValue(b.DriverID), string(b.VehicleID), string(b.TripType),
		b.Pickup.Point.Lat, b.Pickup.Point.Lng, b.Pickup.Address, b.Pickup.At,
		b.Drop.Point.Lat, b.Drop.Point.Lng, b.Drop.Address, b.Drop.At,
		b.Passengers,
		b.Pricing.BaseFare, b.Pricing.DistanceKm, b.Pricing.PerKmRate,
		b.Pricing.Extras.DriverAllowance, b.Pricing.Extras.NightCharge, b.Pricing.Extras.TollCharge,
		b.Pricing.Subtotal, b.Pricing.Tax, b.Pricing.Discount, b.Pricing.Total, b.Pricing.Currency,
		b.Payment.Method, b.Payment.Status, b.Payment.Gateway, b.Payment.TransactionID,
		string(b.Status), b.StatusVersion, b.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, number, rider_id, driver_id, vehicle_id, trip_type,
		       pickup_lat, pickup_lng, pickup_address, pickup_at,
		       drop_lat, drop_lng, drop_address, drop_at,
		       passengers,
		       base_fare, distance_km, per_km_rate,
		       extra_driver_allowance, extra_night_charge, extra_toll_charge,
		       subtotal, tax, discount, total, currency,
		       payment_method, payment_status, payment_gateway, payment_txn,
		       status, status_version,
		       cancelled, cancelled_by, cancelled_at, cancel_reason, cancel_fee, cancel_refund,
		       trip_started_at, trip_ended_at,
		       rider_stars, rider_comment, rider_rated_at,
		       driver_stars, driver_comment, driver_rated_at,
		       created_at
		FROM bookings
		WHERE id = $1`, string(id),
	)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b                       Booking
		driverID                sql.NullString
		cancelledBy, reason     sql.NullString
		cancelledAt             sql.NullTime
		cancelFee, cancelRefund sql.NullInt64
		startedAt, endedAt      sql.NullTime
		riderStars, driverStars sql.NullInt64
		riderCmt, driverCmt     sql.NullString
		riderAt, driverAt       sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.Number, &b.RiderID, &driverID, &b.VehicleID, &b.TripType,
		&b.Pickup.Point.Lat, &b.Pickup.Point.Lng, &b.Pickup.Address, &b.Pickup.At,
		&b.Drop.Point.Lat, &b.Drop.Point.Lng, &b.Drop.Address, &b.Drop.At,
		&b.Passengers,
		&b.Pricing.BaseFare, &b.Pricing.DistanceKm, &b.Pricing.PerKmRate,
		&b.Pricing.Extras.DriverAllowance, &b.Pricing.Extras.NightCharge, &b.Pricing.Extras.TollCharge,
		&b.Pricing.Subtotal, &b.Pricing.Tax, &b.Pricing.Discount, &b.Pricing.Total, &b.Pricing.Currency,
		&b.Payment.Method, &b.Payment.Status, &b.Payment.Gateway, &b.Payment.TransactionID,
		&b.Status, &b.StatusVersion,
		&b.Cancellation.IsCancelled, &cancelledBy, &cancelledAt, &reason, &cancelFee, &cancelRefund,
		&startedAt, &endedAt,
		&riderStars, &riderCmt, &riderAt,
		&driverStars, &driverCmt, &driverAt,
		&b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		b.DriverID = types.ID(driverID.String)
	}
	if cancelledBy.Valid {
		b.Cancellation.By = cancelledBy.String
	}
	if reason.Valid {
		b.Cancellation.Reason = reason.String
	}
	b.Cancellation.At = timePtr(cancelledAt)
	if cancelFee.Valid {
		b.Cancellation.Fee = cancelFee.Int64
	}
	if cancelRefund.Valid {
		b.Cancellation.Refund = cancelRefund.Int64
	}
	b.Trip.StartedAt = timePtr(startedAt)
	b.Trip.EndedAt = timePtr(endedAt)
	if riderStars.Valid {
		b.RiderRating = &rating.Entry{Stars: int(riderStars.Int64), Comment: riderCmt.String, RatedAt: riderAt.Time}
	}
	if driverStars.Valid {
		b.DriverRating = &rating.Entry{Stars: int(driverStars.Int64), Comment: driverCmt.String, RatedAt: driverAt.Time}
	}
	return &b, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    status_version = status_version + 1,
		    driver_id = COALESCE($2, driver_id),
		    trip_started_at = CASE WHEN $1 = 'trip_started' THEN NOW() ELSE trip_started_at END,
		    trip_ended_at = CASE WHEN $1 = 'trip_completed' THEN NOW() ELSE trip_ended_at END,
		    cancelled = CASE WHEN $1 = 'cancelled' THEN TRUE ELSE cancelled END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END,
		    cancelled_by = CASE WHEN $1 = 'cancelled' THEN $3 ELSE cancelled_by END,
		    cancel_reason = CASE WHEN $1 = 'cancelled' THEN $4 ELSE cancel_reason END,
		    cancel_fee = CASE WHEN $1 = 'cancelled' THEN $5 ELSE cancel_fee END,
		    cancel_refund = CASE WHEN $1 = 'cancelled' THEN $6 ELSE cancel_refund END
		WHERE id = $7 AND status = $8 AND status_version = $9`,
		string(to),
		nullID(patch.DriverID),
		patch.CancelledBy,
		patch.Reason,
		patch.Fee,
		patch.Refund,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) SaveRating(ctx context.Context, id types.ID, role string, e rating.Entry) error {
	if role == "driver" {
		_, err := s.db.Exec(ctx, `
			UPDATE bookings
			SET driver_stars = $1, driver_comment = $2, driver_rated_at = $3
			WHERE id = $4`,
			e.Stars, e.Comment, e.RatedAt, string(id),
		)
		return err
	}
	_, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET rider_stars = $1, rider_comment = $2, rider_rated_at = $3
		WHERE id = $4`,
		e.Stars, e.Comment, e.RatedAt, string(id),
	)
	return err
}

func (s *PGStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, status, status_version, vehicle_id
		FROM bookings
		WHERE status = 'pending' AND pickup_at < $1`, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.Status, &b.StatusVersion, &b.VehicleID); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO booking_state_events (
			booking_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.BookingID), string(e.From), string(e.To), e.ActorType, nullID(e.ActorID), e.CreatedAt,
	)
	return err
}

func nullIDValue(v types.ID) *string {
	if v == "" {
		return nil
	}
	s := string(v)
	return &s
}

func nullID(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
