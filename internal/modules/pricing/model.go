// README: Vehicle-category rate plans and denormalized pricing snapshots.
package pricing

type Category string

const (
	CategoryAuto Category = "auto"
	CategoryCar  Category = "car"
	CategoryBus  Category = "bus"
)

type Direction string

const (
	DirectionOneWay Direction = "one-way"
	DirectionReturn Direction = "return"
)

// PlanRef identifies the rate plan a vehicle resolves its pricing from.
type PlanRef struct {
	Category    Category
	VehicleType string
	Model       string
}

// AutoFare is a flat fare per direction; autos do not scale with distance.
type AutoFare struct {
	OneWay int64
	Return int64
}

// DistanceRates holds per-km rates at the 50/100/150 km bands.
// Trips beyond 150 km keep the 150 km rate; no higher band exists.
type DistanceRates struct {
	Upto50  float64
	Upto100 float64
	Upto150 float64
}

// Snapshot is the pricing block denormalized onto a vehicle record.
// Auto is set for auto-category vehicles, OneWay/Return for car and bus.
type Snapshot struct {
	Auto   *AutoFare
	OneWay *DistanceRates
	Return *DistanceRates
}

func (s Snapshot) Empty() bool {
	return s.Auto == nil && s.OneWay == nil && s.Return == nil
}
