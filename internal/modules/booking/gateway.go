// README: Adapter from the vehicle store to the booking service's gateway.
package booking

import (
	"context"
	"time"

	"cabswift/internal/modules/vehicle"
	"cabswift/internal/types"
)

type vehicleGateway struct {
	store vehicle.Store
}

// NewVehicleGateway exposes a vehicle store to the booking service.
func NewVehicleGateway(store vehicle.Store) VehicleGateway {
	return &vehicleGateway{store: store}
}

func (g *vehicleGateway) Load(ctx context.Context, id types.ID) (VehicleInfo, error) {
	v, err := g.store.Get(ctx, id)
	if err != nil {
		return VehicleInfo{}, err
	}
	return VehicleInfo{
		ID:        v.ID,
		DriverID:  v.DriverID,
		Category:  v.PlanRef.Category,
		Pricing:   v.Pricing,
		Available: v.AvailableAt,
	}, nil
}

func (g *vehicleGateway) Acquire(ctx context.Context, id types.ID, at time.Time) (bool, error) {
	return g.store.Acquire(ctx, id, at)
}

func (g *vehicleGateway) Release(ctx context.Context, id types.ID) error {
	return g.store.Release(ctx, id)
}

// FoldRating delegates to the store's atomic increment; reading the
// aggregate here and writing it back would drop concurrent folds.
func (g *vehicleGateway) FoldRating(ctx context.Context, id types.ID, stars int) error {
	return g.store.AddRating(ctx, id, stars)
}
