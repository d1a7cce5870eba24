package lead

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
)

type TogglePhoneBlockInput struct {
	LeadID  int64
	Blocked bool
}

type TogglePhoneBlockOutput struct {
	Affected int64 `json:"affected"`
	Blocked  bool  `json:"blocked"`
}

type TogglePhoneBlock interface {
	Execute(ctx context.Context, in TogglePhoneBlockInput) (TogglePhoneBlockOutput, error)
}

type blockStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	SetBlockedByPhone(ctx context.Context, phoneNorm string, blocked bool, now time.Time) (int64, error)
	SetBlockedByID(ctx context.Context, id int64, blocked bool, now time.Time) (int64, error)
}

type togglePhoneBlock struct {
	store blockStore
	now   func() time.Time
}

func NewTogglePhoneBlock(store blockStore) TogglePhoneBlock {
	return &togglePhoneBlock{store: store, now: time.Now}
}

// Execute flips the blocked flag on a lead. When the lead carries a
// canonical phone the flag propagates to every lead sharing it, which
// keeps the cross-record blocked invariant true in both directions.
func (uc *togglePhoneBlock) Execute(ctx context.Context, in TogglePhoneBlockInput) (TogglePhoneBlockOutput, error) {
	if in.LeadID <= 0 {
		return TogglePhoneBlockOutput{}, ErrInvalidLeadID
	}

	target, err := uc.store.GetByID(ctx, in.LeadID)
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			return TogglePhoneBlockOutput{}, ErrLeadNotFound
		}
		return TogglePhoneBlockOutput{}, fmt.Errorf("%w: %v", ErrToggleBlock, err)
	}

	now := uc.now()
	var affected int64
	if target.RepresentativePhoneNorm != "" {
		affected, err = uc.store.SetBlockedByPhone(ctx, target.RepresentativePhoneNorm, in.Blocked, now)
	} else {
		affected, err = uc.store.SetBlockedByID(ctx, target.ID, in.Blocked, now)
	}
	if err != nil {
		return TogglePhoneBlockOutput{}, fmt.Errorf("%w: %v", ErrToggleBlock, err)
	}

	return TogglePhoneBlockOutput{Affected: affected, Blocked: in.Blocked}, nil
}
