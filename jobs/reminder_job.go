package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/therapy_booking/notifications"
	"github.com/anjiri1684/therapy_booking/services"
	"go.uber.org/zap"
)

const (
	reminderLead   = 60 * time.Minute
	reminderWindow = 5 * time.Minute
)

// SessionReminder announces booked sessions starting in about an hour.
// The window matches the job interval so each session is picked up once.
type SessionReminder struct {
	tx       services.TxManager
	notifier notifications.Notifier
	logger   *zap.Logger
	timeout  time.Duration
}

func NewSessionReminder(tx services.TxManager, notifier notifications.Notifier, logger *zap.Logger, timeout time.Duration) *SessionReminder {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SessionReminder{tx: tx, notifier: notifier, logger: logger, timeout: timeout}
}

func (r *SessionReminder) Remind(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	from := now.Add(reminderLead)
	to := from.Add(reminderWindow)

	var events []notifications.Event
	err := r.tx.WithTx(ctx, func(ctx context.Context, repos services.Repositories) error {
		slots, err := repos.Slots.FindBookedBetween(ctx, from, to)
		if err != nil {
			return err
		}
		for _, slot := range slots {
			order, err := repos.Orders.FindBySlot(ctx, slot.ID)
			if errors.Is(err, services.ErrNotFound) {
				r.logger.Warn("booked slot without order", zap.String("slot_id", slot.ID.String()))
				continue
			}
			if err != nil {
				return err
			}
			events = append(events, services.SlotEvent(notifications.EventReminder, slot, &order))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, event := range events {
		r.notifier.Notify(ctx, event)
	}
	return len(events), nil
}

func (r *SessionReminder) Run() {
	n, err := r.Remind(context.Background(), time.Now().UTC())
	if err != nil {
		r.logger.Error("session reminders failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Info("session reminders sent", zap.Int("count", n))
	}
}
