// README: Cancellation fee tiers as a function of time until pickup.
package booking

import (
	"math"
	"time"
)

// Fee rates by hours remaining until pickup, first match top-down.
// Negative hours (pickup already passed) fall into the last tier.
const (
	feeRateEarly    = 0.05 // more than 24h out
	feeRateStandard = 0.15 // between 2h and 24h
	feeRateLate     = 0.25 // under 2h
	feeRateNoShow   = 0.50 // at or after pickup time
)

// CancellationFee computes the fee and refund for cancelling a booking
// with the given pickup time and fare total. Both are rounded to the
// nearest currency unit and refund = total - fee always holds.
func CancellationFee(pickupAt, now time.Time, total int64) (fee, refund int64) {
	hours := pickupAt.Sub(now).Hours()

	var rate float64
	switch {
	case hours > 24:
		rate = feeRateEarly
	case hours > 2:
		rate = feeRateStandard
	case hours > 0:
		rate = feeRateLate
	default:
		rate = feeRateNoShow
	}

	fee = int64(math.Round(float64(total) * rate))
	return fee, total - fee
}
