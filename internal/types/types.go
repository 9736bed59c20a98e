// README: Common value objects shared across modules.
package types

type ID string

type Point struct {
	Lat float64
	Lng float64
}

type Money struct {
	Amount   int64
	Currency string
}
