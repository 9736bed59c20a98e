// README: Vehicle service; registration denormalizes the rate plan onto the record.
package vehicle

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"cabswift/internal/modules/pricing"
	"cabswift/internal/types"
)

var ErrBadRequest = errors.New("bad vehicle request")

// PlanResolver resolves a plan reference to a pricing snapshot.
type PlanResolver interface {
	Resolve(ctx context.Context, ref pricing.PlanRef) (pricing.Snapshot, error)
}

type Service struct {
	store *PGStore
	plans PlanResolver
}

func NewService(store *PGStore, plans PlanResolver) *Service {
	return &Service{store: store, plans: plans}
}

type RegisterCommand struct {
	DriverID       types.ID
	PlanRef        pricing.PlanRef
	RegistrationNo string
	SeatCount      int
	Schedule       Schedule
}

// Register creates a vehicle in pending approval with its pricing snapshot
// resolved from the rate plan. Approval flags are set later by an admin.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (types.ID, error) {
	if cmd.DriverID == "" || cmd.PlanRef.Category == "" || cmd.RegistrationNo == "" {
		return "", ErrBadRequest
	}

	snap, err := s.plans.Resolve(ctx, cmd.PlanRef)
	if err != nil && !errors.Is(err, pricing.ErrPlanNotFound) {
		return "", err
	}

	v := &Vehicle{
		ID:             newID(),
		DriverID:       cmd.DriverID,
		PlanRef:        cmd.PlanRef,
		Pricing:        snap,
		RegistrationNo: cmd.RegistrationNo,
		SeatCount:      cmd.SeatCount,
		IsActive:       true,
		ApprovalStatus: ApprovalPending,
		Schedule:       cmd.Schedule,
		CreatedAt:      time.Now(),
	}
	if err := s.store.Create(ctx, v); err != nil {
		return "", err
	}
	return v.ID, nil
}

// RefreshPricing re-resolves the snapshot after a rate plan change.
func (s *Service) RefreshPricing(ctx context.Context, id types.ID) error {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	snap, err := s.plans.Resolve(ctx, v.PlanRef)
	if err != nil {
		return err
	}
	return s.store.UpdateSnapshot(ctx, id, snap)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.Get(ctx, id)
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
