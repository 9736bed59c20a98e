// README: Vehicle record, working schedule, and the availability predicate.
package vehicle

import (
	"time"

	"cabswift/internal/modules/pricing"
	"cabswift/internal/modules/rating"
	"cabswift/internal/types"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Schedule is the driver's working window. Days is indexed by time.Weekday.
// Start and End are "HH:MM" in the vehicle's local time.
type Schedule struct {
	Days  [7]bool
	Start string
	End   string
}

// Covers reports whether t falls on a working day inside working hours.
// An empty Start/End means no hour restriction.
func (s Schedule) Covers(t time.Time) bool {
	if !s.Days[int(t.Weekday())] {
		return false
	}
	if s.Start == "" || s.End == "" {
		return true
	}
	hm := t.Format("15:04")
	return hm >= s.Start && hm <= s.End
}

type Vehicle struct {
	ID               types.ID
	DriverID         types.ID
	PlanRef          pricing.PlanRef
	Pricing          pricing.Snapshot
	RegistrationNo   string
	SeatCount        int
	IsActive         bool
	IsVerified       bool
	ApprovalStatus   ApprovalStatus
	Booked           bool
	UnderMaintenance bool
	Rating           rating.Aggregate
	Schedule         Schedule
	CreatedAt        time.Time
}

// AvailableAt is the pure availability predicate. The store's Acquire
// re-checks the same conditions inside a single conditional UPDATE; this
// form exists for pre-validation and for stores without SQL.
func (v *Vehicle) AvailableAt(t time.Time) bool {
	return v.IsActive &&
		v.IsVerified &&
		v.ApprovalStatus == ApprovalApproved &&
		!v.Booked &&
		!v.UnderMaintenance &&
		v.Schedule.Covers(t)
}
