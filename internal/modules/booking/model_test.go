package booking

import (
	"testing"
	"time"
)

// TestCanTransition verifies the full transition table, including that
// terminal states admit nothing.
func TestCanTransition(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusDriverAssigned, StatusDriverEnRoute,
		StatusDriverArrived, StatusTripStarted, StatusTripCompleted,
		StatusCancelled, StatusExpired,
	}
	allowed := map[Status][]Status{
		StatusPending:        {StatusConfirmed, StatusCancelled, StatusExpired},
		StatusConfirmed:      {StatusDriverAssigned, StatusCancelled},
		StatusDriverAssigned: {StatusDriverEnRoute, StatusCancelled},
		StatusDriverEnRoute:  {StatusDriverArrived, StatusCancelled},
		StatusDriverArrived:  {StatusTripStarted, StatusCancelled},
		StatusTripStarted:    {StatusTripCompleted, StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []Status{StatusTripCompleted, StatusCancelled, StatusExpired} {
		if !Terminal(s) {
			t.Errorf("%s should be terminal", s)
		}
		if IsActive(s) {
			t.Errorf("%s should not be active", s)
		}
		if CanBeCancelled(s) {
			t.Errorf("%s should not be cancellable", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusDriverAssigned, StatusDriverEnRoute, StatusDriverArrived, StatusTripStarted} {
		if Terminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
		if !CanBeCancelled(s) {
			t.Errorf("%s should be cancellable", s)
		}
	}
}

func TestApplySetsTripTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	b := &Booking{Status: StatusDriverArrived}
	if err := b.Apply(StatusTripStarted, "", now); err != nil {
		t.Fatalf("apply start: %v", err)
	}
	if b.Trip.StartedAt == nil || !b.Trip.StartedAt.Equal(now) {
		t.Errorf("trip start time not set")
	}

	later := now.Add(45 * time.Minute)
	if err := b.Apply(StatusTripCompleted, "", later); err != nil {
		t.Fatalf("apply complete: %v", err)
	}
	if b.Trip.EndedAt == nil || !b.Trip.EndedAt.Equal(later) {
		t.Errorf("trip end time not set")
	}
}

func TestApplySetsCancellationFields(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	b := &Booking{Status: StatusConfirmed}

	if err := b.Apply(StatusCancelled, "change of plans", now); err != nil {
		t.Fatalf("apply cancel: %v", err)
	}
	if !b.Cancellation.IsCancelled {
		t.Error("cancellation flag not set")
	}
	if b.Cancellation.At == nil || !b.Cancellation.At.Equal(now) {
		t.Error("cancellation timestamp not set")
	}
	if b.Cancellation.Reason != "change of plans" {
		t.Errorf("reason = %q", b.Cancellation.Reason)
	}
}

func TestApplyRejectsIllegalAndLeavesRecordUnchanged(t *testing.T) {
	now := time.Now()
	b := &Booking{Status: StatusPending}

	if err := b.Apply(StatusTripStarted, "", now); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if b.Status != StatusPending || b.Trip.StartedAt != nil {
		t.Error("failed transition mutated the record")
	}

	b.Status = StatusTripCompleted
	if err := b.Apply(StatusCancelled, "", now); err != ErrInvalidState {
		t.Fatalf("cancel from terminal: expected ErrInvalidState, got %v", err)
	}
	if b.Cancellation.IsCancelled {
		t.Error("terminal booking gained cancellation fields")
	}
}
