// README: Fare quoting from pricing snapshots (flat auto fares, banded per-km rates).
package pricing

import (
	"context"
	"errors"
	"math"
)

var (
	ErrPricingUnavailable = errors.New("pricing unavailable for vehicle")
	ErrBadQuote           = errors.New("bad quote request")
	ErrPlanNotFound       = errors.New("rate plan not found")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Quote computes the fare for a trip from a vehicle's pricing snapshot.
// Autos charge a flat fare per direction regardless of distance. Car and
// bus charge round(rate * distance) where the per-km rate comes from the
// distance band, saturating at the 150 km rate.
func Quote(snap Snapshot, category Category, distanceKm float64, dir Direction) (int64, float64, error) {
	if distanceKm < 0 {
		return 0, 0, ErrBadQuote
	}

	if category == CategoryAuto {
		if snap.Auto == nil {
			return 0, 0, ErrPricingUnavailable
		}
		if dir == DirectionReturn {
			return snap.Auto.Return, 0, nil
		}
		return snap.Auto.OneWay, 0, nil
	}

	rates := snap.OneWay
	if dir == DirectionReturn && snap.Return != nil {
		rates = snap.Return
	}
	if rates == nil {
		return 0, 0, ErrPricingUnavailable
	}

	rate := bandRate(*rates, distanceKm)
	fare := int64(math.Round(rate * distanceKm))
	return fare, rate, nil
}

func bandRate(r DistanceRates, distanceKm float64) float64 {
	switch {
	case distanceKm <= 50:
		return r.Upto50
	case distanceKm <= 100:
		return r.Upto100
	default:
		// 150 km rate covers everything beyond as well.
		return r.Upto150
	}
}

// Resolve loads the rate plan for a vehicle's plan reference. The result
// is meant to be denormalized onto the vehicle record.
func (s *Service) Resolve(ctx context.Context, ref PlanRef) (Snapshot, error) {
	return s.store.GetPlan(ctx, ref)
}
