// README: Rolling rating aggregates and single-slot booking ratings.
package rating

import (
	"errors"
	"time"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Aggregate keeps a running average with a per-star histogram. The star
// set is closed (1..5), so the breakdown is a fixed array indexed star-1.
type Aggregate struct {
	Average   float64
	Count     int64
	Breakdown [5]int64
}

func (a *Aggregate) Add(stars int) error {
	if stars < 1 || stars > 5 {
		return ErrInvalidRating
	}
	a.Breakdown[stars-1]++
	a.Count++

	var sum int64
	for i, n := range a.Breakdown {
		sum += int64(i+1) * n
	}
	a.Average = float64(sum) / float64(a.Count)
	return nil
}

// Entry is a one-shot rating attached to a booking, one slot for the rider
// and one for the driver. Resubmitting overwrites the slot.
type Entry struct {
	Stars   int
	Comment string
	RatedAt time.Time
}

func NewEntry(stars int, comment string, now time.Time) (Entry, error) {
	if stars < 1 || stars > 5 {
		return Entry{}, ErrInvalidRating
	}
	return Entry{Stars: stars, Comment: comment, RatedAt: now}, nil
}
