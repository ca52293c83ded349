package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
)

// Transition moves slot from the status and revision it was read with to
// next. Every slot state change in the engine goes through here, so the
// store alone decides which of several racing writers wins; the losers
// get ErrConflict.
func Transition(ctx context.Context, slots SlotRepository, slot models.Slot, next models.SlotStatus) (models.Slot, error) {
	ok, err := slots.ConditionalUpdateStatus(ctx, slot.ID, slot.Status, slot.Revision, next)
	if err != nil {
		return slot, fmt.Errorf("update slot %s: %w", slot.ID, err)
	}
	if !ok {
		return slot, conflictf("slot %s changed concurrently", slot.ID)
	}
	slot.Status = next
	slot.Revision++
	return slot, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
