// README: Concurrency tests for booking state transitions (run with -race).
package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"cabswift/internal/types"
)

func TestConcurrentCancelSameBooking(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	id := mustCreateBooking(t, svc, 25*time.Hour)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- svc.Cancel(ctx, CancelCommand{BookingID: id, ActorType: "rider", Reason: "race"})
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if err != ErrConflict && err != ErrInvalidState {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 successful cancel, got %d", success)
	}
	assertStatus(t, svc, id, StatusCancelled)
}

func TestConcurrentConfirmVsCancel(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	id := mustCreateBooking(t, svc, 25*time.Hour)

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- svc.Confirm(ctx, TransitionCommand{BookingID: id, ActorType: "system"})
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- svc.Cancel(ctx, CancelCommand{BookingID: id, ActorType: "rider", Reason: "race"})
	}()
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if err != ErrConflict && err != ErrInvalidState {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	b, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Confirm then cancel can both land; cancel first blocks confirm.
	if success == 2 && b.Status != StatusCancelled {
		t.Fatalf("expected cancelled after confirm+cancel, got %s", b.Status)
	}
	if success == 1 && b.Status != StatusConfirmed && b.Status != StatusCancelled {
		t.Fatalf("unexpected final status %s", b.Status)
	}
}

func TestConcurrentCreateSameVehicle(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	const riders = 6
	var wg sync.WaitGroup
	results := make(chan error, riders)
	start := make(chan struct{})

	for i := 0; i < riders; i++ {
		rider := types.ID(string(rune('a' + i)))
		wg.Add(1)
		go func(r types.ID) {
			defer wg.Done()
			<-start
			_, err := svc.Create(ctx, CreateCommand{
				RiderID:    r,
				VehicleID:  "veh1",
				TripType:   TripOneWay,
				Pickup:     Stop{At: time.Now().Add(time.Hour)},
				DistanceKm: 12,
			})
			results <- err
		}(rider)
	}
	close(start)
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if err != ErrVehicleUnavailable {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 booking to win the vehicle, got %d", success)
	}
}
