// README: Booking aggregate, status definitions, and the transition table.
package booking

import (
	"time"

	"cabswift/internal/modules/rating"
	"cabswift/internal/types"
)

type Status string

const (
	StatusNone           Status = "none"
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusDriverAssigned Status = "driver_assigned"
	StatusDriverEnRoute  Status = "driver_en_route"
	StatusDriverArrived  Status = "driver_arrived"
	StatusTripStarted    Status = "trip_started"
	StatusTripCompleted  Status = "trip_completed"
	StatusCancelled      Status = "cancelled"
	StatusExpired        Status = "expired"
)

type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
	TripMultiCity TripType = "multi_city"
)

// AllowedTransitions represents the booking state flow as code. Terminal
// states (trip_completed, cancelled, expired) have no entry.
var AllowedTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed:      {StatusDriverAssigned, StatusCancelled},
	StatusDriverAssigned: {StatusDriverEnRoute, StatusCancelled},
	StatusDriverEnRoute:  {StatusDriverArrived, StatusCancelled},
	StatusDriverArrived:  {StatusTripStarted, StatusCancelled},
	StatusTripStarted:    {StatusTripCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func Terminal(s Status) bool {
	_, ok := AllowedTransitions[s]
	return !ok
}

// IsActive reports whether the booking still occupies its vehicle.
// Derived from the status, never stored.
func IsActive(s Status) bool {
	return !Terminal(s)
}

func CanBeCancelled(s Status) bool {
	return CanTransition(s, StatusCancelled)
}

type Stop struct {
	Point   types.Point
	Address string
	At      time.Time
}

type Passenger struct {
	Name       string
	Age        int
	Gender     string
	Seat       string
	IsChild    bool
	Wheelchair bool
}

// Extras are the fixed set of named additional charges on a fare.
type Extras struct {
	DriverAllowance int64
	NightCharge     int64
	TollCharge      int64
}

func (e Extras) Sum() int64 {
	return e.DriverAllowance + e.NightCharge + e.TollCharge
}

// Pricing is finalized at creation. Total = Subtotal + Tax - Discount.
type Pricing struct {
	BaseFare   int64
	DistanceKm float64
	PerKmRate  float64
	Extras     Extras
	Subtotal   int64
	Tax        int64
	Discount   int64
	Total      int64
	Currency   string
}

type Payment struct {
	Method        string
	Status        string
	Gateway       string
	TransactionID string
}

// Cancellation holds the outcome of a cancellation. Refund = Total - Fee.
type Cancellation struct {
	IsCancelled bool
	By          string
	At          *time.Time
	Reason      string
	Fee         int64
	Refund      int64
}

type Trip struct {
	StartedAt *time.Time
	EndedAt   *time.Time
	Route     []types.Point
	Stops     []Stop
}

type Booking struct {
	ID            types.ID
	Number        string
	RiderID       types.ID
	DriverID      types.ID
	VehicleID     types.ID
	TripType      TripType
	Pickup        Stop
	Drop          Stop
	Passengers    []Passenger
	Pricing       Pricing
	Payment       Payment
	Status        Status
	StatusVersion int
	Cancellation  Cancellation
	Trip          Trip
	RiderRating   *rating.Entry
	DriverRating  *rating.Entry
	CreatedAt     time.Time
}

// Apply validates and performs a status transition on the in-memory record,
// setting the side-effect fields the target status requires. Persistence is
// the store's concern; Apply never touches it.
func (b *Booking) Apply(to Status, reason string, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return ErrInvalidState
	}
	b.Status = to
	switch to {
	case StatusTripStarted:
		t := now
		b.Trip.StartedAt = &t
	case StatusTripCompleted:
		t := now
		b.Trip.EndedAt = &t
	case StatusCancelled:
		t := now
		b.Cancellation.IsCancelled = true
		b.Cancellation.At = &t
		if reason != "" {
			b.Cancellation.Reason = reason
		}
	}
	return nil
}

// Event is one audit row per applied transition.
type Event struct {
	ID        int64
	BookingID types.ID
	From      Status
	To        Status
	ActorType string
	ActorID   *types.ID
	CreatedAt time.Time
}
