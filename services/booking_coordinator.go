package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/notifications"
	"github.com/anjiri1684/therapy_booking/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingPolicy struct {
	// CancellationCutoff is how long before the session a booking can
	// still be cancelled.
	CancellationCutoff time.Duration
	StorageTimeout     time.Duration
}

// BookingCoordinator owns every slot transition requested by people:
// booking, cancelling, completing and manual availability changes.
type BookingCoordinator struct {
	tx       TxManager
	notifier notifications.Notifier
	logger   *zap.Logger
	policy   BookingPolicy
}

func NewBookingCoordinator(tx TxManager, notifier notifications.Notifier, logger *zap.Logger, policy BookingPolicy) *BookingCoordinator {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &BookingCoordinator{tx: tx, notifier: notifier, logger: logger, policy: policy}
}

type BookingRequest struct {
	SlotID       uuid.UUID
	ClientID     uuid.UUID
	Currency     string
	SessionType  models.SessionType
	TimeCapHours int
	Now          time.Time
}

type BookingResult struct {
	Slot  models.Slot
	Order models.Order
}

// BookableAt reports whether a slot at instant may still be booked at now.
// The boundary itself is already too late.
func BookableAt(instant time.Time, timeCapHours int, now time.Time) bool {
	return instant.After(now.Add(time.Duration(timeCapHours) * time.Hour))
}

func (c *BookingCoordinator) Book(ctx context.Context, req BookingRequest) (BookingResult, error) {
	if req.ClientID == uuid.Nil {
		return BookingResult{}, validationf("client id is required")
	}
	if req.TimeCapHours < 0 {
		return BookingResult{}, validationf("time cap must not be negative")
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return BookingResult{}, err
	}
	if !req.SessionType.Valid() {
		return BookingResult{}, validationf("unknown session type %q", req.SessionType)
	}

	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var result BookingResult
	err = c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		slot, err := repos.Slots.FindByID(ctx, req.SlotID)
		if err != nil {
			return err
		}
		if slot.Status != models.SlotAvailable {
			return conflictf("slot %s is %s", slot.ID, slot.Status)
		}
		if !BookableAt(slot.AvailableAtUTC, req.TimeCapHours, req.Now) {
			return ErrTimeCapViolated
		}

		price, err := currentPrice(ctx, repos.Prices, slot.TherapistID, currency, req.SessionType)
		if err != nil {
			return err
		}

		slot, err = Transition(ctx, repos.Slots, slot, models.SlotBooked)
		if err != nil {
			return err
		}

		reference, err := utils.GenerateUniqueReference(func(code string) (bool, error) {
			return repos.Orders.ReferenceTaken(ctx, code)
		})
		if err != nil {
			return fmt.Errorf("generate order reference: %w", err)
		}

		order := models.Order{
			ID:          uuid.New(),
			Reference:   reference,
			SlotID:      slot.ID,
			TherapistID: slot.TherapistID,
			ClientID:    req.ClientID,
			PriceID:     price.ID,
			Amount:      price.Amount,
			Currency:    price.Currency,
			SessionType: price.SessionType,
			Status:      models.OrderPendingPayment,
		}
		if err := repos.Orders.Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		result = BookingResult{Slot: slot, Order: order}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	c.logger.Info("slot booked",
		zap.String("slot_id", result.Slot.ID.String()),
		zap.String("order_id", result.Order.ID.String()),
		zap.String("client_id", req.ClientID.String()),
	)
	c.notifier.Notify(ctx, SlotEvent(notifications.EventBooked, result.Slot, &result.Order))
	return result, nil
}

type CancelRequest struct {
	OrderID  uuid.UUID
	ClientID uuid.UUID
	Now      time.Time
}

// Cancel releases a booking while the session is still far enough away.
// The slot becomes CANCELLED for good; it is not offered again.
func (c *BookingCoordinator) Cancel(ctx context.Context, req CancelRequest) (BookingResult, error) {
	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var result BookingResult
	err := c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		order, err := repos.Orders.FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if req.ClientID != uuid.Nil && order.ClientID != req.ClientID {
			return fmt.Errorf("order %s: %w", order.ID, ErrNotFound)
		}

		slot, err := repos.Slots.FindByID(ctx, order.SlotID)
		if err != nil {
			return err
		}
		if slot.Status != models.SlotBooked {
			return policyf("slot %s is %s and cannot be cancelled", slot.ID, slot.Status)
		}
		if !req.Now.Before(slot.AvailableAtUTC.Add(-c.policy.CancellationCutoff)) {
			return ErrCancellationWindowClosed
		}

		slot, err = Transition(ctx, repos.Slots, slot, models.SlotCancelled)
		if err != nil {
			return err
		}
		if err := repos.Orders.UpdateStatus(ctx, order.ID, models.OrderCancelled, true); err != nil {
			return fmt.Errorf("cancel order %s: %w", order.ID, err)
		}
		order.Status = models.OrderCancelled
		order.Refundable = true

		result = BookingResult{Slot: slot, Order: order}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	c.logger.Info("booking cancelled",
		zap.String("slot_id", result.Slot.ID.String()),
		zap.String("order_id", result.Order.ID.String()),
	)
	c.notifier.Notify(ctx, SlotEvent(notifications.EventCancelled, result.Slot, &result.Order))
	return result, nil
}

type Outcome string

const (
	OutcomeDone   Outcome = "done"
	OutcomeFailed Outcome = "failed"
)

type CompleteRequest struct {
	OrderID     uuid.UUID
	TherapistID uuid.UUID
	Outcome     Outcome
	Now         time.Time
}

// Complete records how a session went once its start has passed.
func (c *BookingCoordinator) Complete(ctx context.Context, req CompleteRequest) (BookingResult, error) {
	var next models.SlotStatus
	var orderStatus models.OrderStatus
	switch req.Outcome {
	case OutcomeDone:
		next, orderStatus = models.SlotDone, models.OrderCompleted
	case OutcomeFailed:
		next, orderStatus = models.SlotFailed, models.OrderFailed
	default:
		return BookingResult{}, validationf("unknown outcome %q", req.Outcome)
	}

	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var result BookingResult
	err := c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		order, err := repos.Orders.FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if req.TherapistID != uuid.Nil && order.TherapistID != req.TherapistID {
			return fmt.Errorf("order %s: %w", order.ID, ErrNotFound)
		}

		slot, err := repos.Slots.FindByID(ctx, order.SlotID)
		if err != nil {
			return err
		}
		if slot.Status != models.SlotBooked {
			return policyf("slot %s is %s and cannot be completed", slot.ID, slot.Status)
		}
		if req.Now.Before(slot.AvailableAtUTC) {
			return policyf("session has not started yet")
		}

		slot, err = Transition(ctx, repos.Slots, slot, next)
		if err != nil {
			return err
		}
		if err := repos.Orders.UpdateStatus(ctx, order.ID, orderStatus, false); err != nil {
			return fmt.Errorf("complete order %s: %w", order.ID, err)
		}
		order.Status = orderStatus

		result = BookingResult{Slot: slot, Order: order}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	c.notifier.Notify(ctx, SlotEvent(notifications.EventCompleted, result.Slot, &result.Order))
	return result, nil
}

// Toggle flips a slot between AVAILABLE and UNAVAILABLE.
func (c *BookingCoordinator) Toggle(ctx context.Context, slotID uuid.UUID, now time.Time) (models.Slot, error) {
	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var slot models.Slot
	err := c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		found, err := repos.Slots.FindByID(ctx, slotID)
		if err != nil {
			return err
		}
		slot, err = toggle(ctx, repos.Slots, found, now)
		return err
	})
	return slot, err
}

type ToggleAtRequest struct {
	TherapistID uuid.UUID
	Date        time.Time
	Hour        int
	Now         time.Time
}

// ToggleAt is the single-slot switch addressed by local date and hour: it
// opens a new slot when none exists there, otherwise it toggles the one
// that does.
func (c *BookingCoordinator) ToggleAt(ctx context.Context, req ToggleAtRequest) (models.Slot, bool, error) {
	if req.Hour < 0 || req.Hour > 23 {
		return models.Slot{}, false, validationf("hour %d is outside 0-23", req.Hour)
	}

	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var slot models.Slot
	var created bool
	err := c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		therapist, err := loadTherapist(ctx, repos.Therapists, req.TherapistID)
		if err != nil {
			return err
		}
		loc, err := loadZone(therapist.TimeZone)
		if err != nil {
			return err
		}
		year, month, day := req.Date.Date()
		at, ok := utils.ResolveLocalHour(loc, year, month, day, req.Hour)
		if !ok {
			return validationf("%s %02d:00 does not exist in %s", req.Date.Format(time.DateOnly), req.Hour, therapist.TimeZone)
		}
		if !at.After(req.Now) {
			return policyf("slot time has already passed")
		}

		slot = models.Slot{
			ID:             uuid.New(),
			TherapistID:    therapist.UserID,
			AvailableAtUTC: at,
			Status:         models.SlotAvailable,
		}
		created, err = repos.Slots.CreateIfAbsent(ctx, &slot)
		if err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
		if created {
			return nil
		}

		existing, err := repos.Slots.FindByTherapistAndRange(ctx, therapist.UserID, at, at.Add(time.Second))
		if err != nil {
			return fmt.Errorf("load slot: %w", err)
		}
		if len(existing) == 0 {
			return conflictf("slot at %s changed concurrently", at.Format(time.RFC3339))
		}
		slot, err = toggle(ctx, repos.Slots, existing[0], req.Now)
		return err
	})
	return slot, created, err
}

func toggle(ctx context.Context, slots SlotRepository, slot models.Slot, now time.Time) (models.Slot, error) {
	if slot.Status.Terminal() {
		return slot, policyf("slot %s is %s and can no longer change", slot.ID, slot.Status)
	}
	switch slot.Status {
	case models.SlotAvailable:
		return Transition(ctx, slots, slot, models.SlotUnavailable)
	case models.SlotUnavailable:
		if !slot.AvailableAtUTC.After(now) {
			return slot, policyf("slot %s has already passed", slot.ID)
		}
		return Transition(ctx, slots, slot, models.SlotAvailable)
	case models.SlotBooked:
		return slot, policyf("slot %s is booked", slot.ID)
	}
	return slot, fmt.Errorf("slot %s has unknown status %q", slot.ID, slot.Status)
}

// Remove deletes an open slot that has never carried a booking.
func (c *BookingCoordinator) Remove(ctx context.Context, slotID uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	return c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		slot, err := repos.Slots.FindByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.Status != models.SlotAvailable {
			return policyf("slot %s is %s and cannot be removed", slot.ID, slot.Status)
		}
		booked, err := repos.Orders.ExistsForSlot(ctx, slot.ID)
		if err != nil {
			return fmt.Errorf("check slot history: %w", err)
		}
		if booked {
			return policyf("slot %s has booking history", slot.ID)
		}

		deleted, err := repos.Slots.DeleteIfAvailable(ctx, slot.ID, slot.Revision)
		if err != nil {
			return fmt.Errorf("delete slot %s: %w", slot.ID, err)
		}
		if !deleted {
			return conflictf("slot %s changed concurrently", slot.ID)
		}
		return nil
	})
}

func (c *BookingCoordinator) Order(ctx context.Context, orderID uuid.UUID) (models.Order, error) {
	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var order models.Order
	err := c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		order, err = repos.Orders.FindByID(ctx, orderID)
		return err
	})
	return order, err
}

func (c *BookingCoordinator) Slot(ctx context.Context, slotID uuid.UUID) (models.Slot, error) {
	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var slot models.Slot
	err := c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		slot, err = repos.Slots.FindByID(ctx, slotID)
		return err
	})
	return slot, err
}

// Slots lists a therapist's slots with instants in [from, to).
func (c *BookingCoordinator) Slots(ctx context.Context, therapistID uuid.UUID, from, to time.Time) ([]models.Slot, error) {
	if !to.After(from) {
		return nil, validationf("range end must be after its start")
	}

	ctx, cancel := withTimeout(ctx, c.policy.StorageTimeout)
	defer cancel()

	var slots []models.Slot
	err := c.tx.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		if err := requireTherapist(ctx, repos.Therapists, therapistID); err != nil {
			if errors.Is(err, ErrValidation) {
				return fmt.Errorf("therapist %s: %w", therapistID, ErrNotFound)
			}
			return err
		}
		var err error
		slots, err = repos.Slots.FindByTherapistAndRange(ctx, therapistID, from, to)
		return err
	})
	return slots, err
}

// SlotEvent describes a committed transition of slot for notifiers.
func SlotEvent(kind notifications.EventType, slot models.Slot, order *models.Order) notifications.Event {
	event := notifications.Event{
		Type:           kind,
		SlotID:         slot.ID,
		TherapistID:    slot.TherapistID,
		AvailableAtUTC: slot.AvailableAtUTC,
		Status:         string(slot.Status),
		Revision:       slot.Revision,
	}
	if order != nil {
		orderID, clientID := order.ID, order.ClientID
		event.OrderID = &orderID
		event.ClientID = &clientID
	}
	return event
}
