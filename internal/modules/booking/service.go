// README: Booking service implements the lifecycle, fare finalization, and cancellation.
package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"cabswift/internal/config"
	"cabswift/internal/modules/pricing"
	"cabswift/internal/modules/rating"
	"cabswift/internal/types"
)

var (
	ErrInvalidState       = errors.New("invalid state transition")
	ErrNotFound           = errors.New("booking not found")
	ErrConflict           = errors.New("booking state conflict")
	ErrBadRequest         = errors.New("bad request")
	ErrVehicleUnavailable = errors.New("vehicle unavailable")
)

// Notifier receives status-change events. Delivery is fire-and-forget;
// failures are logged and never fail the transition.
type Notifier interface {
	Publish(ctx context.Context, bookingID, status string, at time.Time) error
}

type Service struct {
	store    Store
	vehicles VehicleGateway
	notify   Notifier
	cfg      config.BookingConfig
}

// VehicleGateway is the vehicle-side contract: read a vehicle and flip its
// booked flag with compare-and-set semantics.
type VehicleGateway interface {
	Load(ctx context.Context, id types.ID) (VehicleInfo, error)
	Acquire(ctx context.Context, id types.ID, at time.Time) (bool, error)
	Release(ctx context.Context, id types.ID) error
	FoldRating(ctx context.Context, id types.ID, stars int) error
}

// VehicleInfo is the booking-relevant projection of a vehicle record.
type VehicleInfo struct {
	ID        types.ID
	DriverID  types.ID
	Category  pricing.Category
	Pricing   pricing.Snapshot
	Available func(t time.Time) bool
}

func NewService(store Store, vehicles VehicleGateway, notify Notifier, cfg config.BookingConfig) *Service {
	return &Service{store: store, vehicles: vehicles, notify: notify, cfg: cfg}
}

type CreateCommand struct {
	RiderID       types.ID
	VehicleID     types.ID
	TripType      TripType
	Pickup        Stop
	Drop          Stop
	Passengers    []Passenger
	DistanceKm    float64 // 0 means derive from coordinates
	Extras        Extras
	Discount      int64
	PaymentMethod string
}

type TransitionCommand struct {
	BookingID types.ID
	ActorType string
	ActorID   types.ID
}

type AssignCommand struct {
	BookingID types.ID
	DriverID  types.ID
}

type CancelCommand struct {
	BookingID types.ID
	ActorType string
	ActorID   types.ID
	Reason    string
}

type RateCommand struct {
	BookingID types.ID
	Role      string // "rider" or "driver"
	Stars     int
	Comment   string
}

// Create checks availability, acquires the vehicle, quotes the fare, and
// persists the booking in pending. The acquire is a single conditional
// write on the vehicle row, so two riders cannot both pass the check.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.RiderID == "" || cmd.VehicleID == "" || cmd.TripType == "" {
		return "", ErrBadRequest
	}

	v, err := s.vehicles.Load(ctx, cmd.VehicleID)
	if err != nil {
		return "", err
	}
	if v.Available != nil && !v.Available(cmd.Pickup.At) {
		return "", ErrVehicleUnavailable
	}

	distance := cmd.DistanceKm
	if distance == 0 {
		distance = distanceKm(cmd.Pickup.Point, cmd.Drop.Point)
	}
	baseFare, rate, err := pricing.Quote(v.Pricing, v.Category, distance, direction(cmd.TripType))
	if err != nil {
		return "", err
	}

	ok, err := s.vehicles.Acquire(ctx, cmd.VehicleID, cmd.Pickup.At)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrVehicleUnavailable
	}

	now := time.Now()
	subtotal := baseFare + cmd.Extras.Sum()
	tax := int64(math.Round(float64(subtotal) * s.cfg.TaxRate))

	b := &Booking{
		ID:         newID(),
		Number:     newBookingNumber(now),
		RiderID:    cmd.RiderID,
		DriverID:   v.DriverID,
		VehicleID:  cmd.VehicleID,
		TripType:   cmd.TripType,
		Pickup:     cmd.Pickup,
		Drop:       cmd.Drop,
		Passengers: cmd.Passengers,
		Pricing: Pricing{
			BaseFare:   baseFare,
			DistanceKm: distance,
			PerKmRate:  rate,
			Extras:     cmd.Extras,
			Subtotal:   subtotal,
			Tax:        tax,
			Discount:   cmd.Discount,
			Total:      subtotal + tax - cmd.Discount,
			Currency:   s.cfg.Currency,
		},
		Payment:   Payment{Method: cmd.PaymentMethod, Status: "unpaid"},
		Status:    StatusPending,
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		// Creation failed after the flag flip; hand the vehicle back.
		if rerr := s.vehicles.Release(ctx, cmd.VehicleID); rerr != nil {
			log.Printf("release vehicle %s after failed create: %v", cmd.VehicleID, rerr)
		}
		return "", err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		BookingID: b.ID,
		From:      StatusNone,
		To:        StatusPending,
		ActorType: "rider",
		ActorID:   &cmd.RiderID,
		CreatedAt: now,
	})
	s.publish(ctx, b.ID, StatusPending, now)
	return b.ID, nil
}

func (s *Service) Confirm(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.BookingID, StatusConfirmed, cmd.ActorType, cmd.ActorID, StatusPatch{})
	return err
}

func (s *Service) AssignDriver(ctx context.Context, cmd AssignCommand) error {
	if cmd.DriverID == "" {
		return ErrBadRequest
	}
	_, err := s.transition(ctx, cmd.BookingID, StatusDriverAssigned, "driver", cmd.DriverID, StatusPatch{DriverID: &cmd.DriverID})
	return err
}

func (s *Service) DriverEnRoute(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.BookingID, StatusDriverEnRoute, cmd.ActorType, cmd.ActorID, StatusPatch{})
	return err
}

func (s *Service) DriverArrived(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.BookingID, StatusDriverArrived, cmd.ActorType, cmd.ActorID, StatusPatch{})
	return err
}

func (s *Service) StartTrip(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.BookingID, StatusTripStarted, cmd.ActorType, cmd.ActorID, StatusPatch{})
	return err
}

func (s *Service) CompleteTrip(ctx context.Context, cmd TransitionCommand) error {
	b, err := s.transition(ctx, cmd.BookingID, StatusTripCompleted, cmd.ActorType, cmd.ActorID, StatusPatch{})
	if err != nil {
		return err
	}
	s.releaseVehicle(ctx, b.VehicleID)
	return nil
}

// Cancel consults the transition table before touching money: the fee is
// computed only once the cancellation is known to be legal, and it lands
// in the same compare-and-set write as the status flip.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return ErrInvalidState
	}

	fee, refund := CancellationFee(b.Pickup.At, time.Now(), b.Pricing.Total)
	patch := StatusPatch{
		CancelledBy: cmd.ActorType,
		Reason:      cmd.Reason,
		Fee:         fee,
		Refund:      refund,
	}
	if _, err := s.applyAndStore(ctx, b, StatusCancelled, cmd.ActorType, cmd.ActorID, patch); err != nil {
		return err
	}
	s.releaseVehicle(ctx, b.VehicleID)
	return nil
}

// Expire moves a stale pending booking to expired and frees its vehicle.
func (s *Service) Expire(ctx context.Context, id types.ID) error {
	b, err := s.transition(ctx, id, StatusExpired, "system", "", StatusPatch{})
	if err != nil {
		return err
	}
	s.releaseVehicle(ctx, b.VehicleID)
	return nil
}

// Rate stores a single-slot rating on the booking; re-submitting a slot
// overwrites it. A rider rating additionally folds into the vehicle's
// rolling aggregate.
func (s *Service) Rate(ctx context.Context, cmd RateCommand) error {
	if cmd.Role != "rider" && cmd.Role != "driver" {
		return ErrBadRequest
	}
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}
	if b.Status != StatusTripCompleted {
		return ErrInvalidState
	}

	entry, err := rating.NewEntry(cmd.Stars, cmd.Comment, time.Now())
	if err != nil {
		return err
	}
	if err := s.store.SaveRating(ctx, b.ID, cmd.Role, entry); err != nil {
		return err
	}
	if cmd.Role == "rider" {
		if err := s.vehicles.FoldRating(ctx, b.VehicleID, cmd.Stars); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// RunExpirySweeper periodically expires pending bookings whose pickup time
// plus the configured grace window has passed.
func (s *Service) RunExpirySweeper(ctx context.Context) {
	interval := time.Duration(s.cfg.SweepSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Service) sweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(s.cfg.PendingTTLMin) * time.Minute)
	stale, err := s.store.ListPendingBefore(ctx, cutoff)
	if err != nil {
		log.Printf("expiry sweep: %v", err)
		return
	}
	for _, b := range stale {
		if err := s.Expire(ctx, b.ID); err != nil && err != ErrConflict && err != ErrInvalidState {
			log.Printf("expire booking %s: %v", b.ID, err)
		}
	}
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, actorType string, actorID types.ID, patch StatusPatch) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyAndStore(ctx, b, to, actorType, actorID, patch)
}

func (s *Service) applyAndStore(ctx context.Context, b *Booking, to Status, actorType string, actorID types.ID, patch StatusPatch) (*Booking, error) {
	from := b.Status
	now := time.Now()
	if err := b.Apply(to, patch.Reason, now); err != nil {
		return nil, err
	}
	if to == StatusCancelled {
		b.Cancellation.By = patch.CancelledBy
		b.Cancellation.Fee = patch.Fee
		b.Cancellation.Refund = patch.Refund
	}

	ok, err := s.store.UpdateStatus(ctx, b.ID, from, to, b.StatusVersion, patch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	b.StatusVersion++

	var actor *types.ID
	if actorID != "" {
		actor = &actorID
	}
	_ = s.store.AppendEvent(ctx, &Event{
		BookingID: b.ID,
		From:      from,
		To:        to,
		ActorType: actorType,
		ActorID:   actor,
		CreatedAt: now,
	})
	s.publish(ctx, b.ID, to, now)
	return b, nil
}

func (s *Service) releaseVehicle(ctx context.Context, id types.ID) {
	if id == "" {
		return
	}
	if err := s.vehicles.Release(ctx, id); err != nil {
		log.Printf("release vehicle %s: %v", id, err)
	}
}

func (s *Service) publish(ctx context.Context, id types.ID, status Status, at time.Time) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Publish(ctx, string(id), string(status), at); err != nil {
		log.Printf("publish status event for %s: %v", id, err)
	}
}

// direction maps the booking trip type to a rate table. Round trips use
// the return table; multi-city legs are priced as chained one-way distance.
func direction(t TripType) pricing.Direction {
	if t == TripRoundTrip {
		return pricing.DirectionReturn
	}
	return pricing.DirectionOneWay
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}

const numberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newBookingNumber builds the display number: "CS", the last 8 digits of
// the epoch-millisecond clock, then 4 random base-36 characters. Not
// guaranteed unique; the primary key is the random hex ID.
func newBookingNumber(now time.Time) string {
	ts := now.UnixMilli() % 100000000
	var rb [4]byte
	_, _ = rand.Read(rb[:])
	suffix := make([]byte, 4)
	for i, v := range rb {
		suffix[i] = numberAlphabet[int(v)%len(numberAlphabet)]
	}
	return fmt.Sprintf("CS%08d%s", ts, suffix)
}

// distanceKm is the haversine distance between two points.
func distanceKm(a, b types.Point) float64 {
	const R = 6371.0
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dlat := (b.Lat - a.Lat) * math.Pi / 180.0
	dlng := (b.Lng - a.Lng) * math.Pi / 180.0
	h := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * R * math.Asin(math.Sqrt(h))
}
