package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/notifications"
	"github.com/anjiri1684/therapy_booking/services"
	"go.uber.org/zap"
)

// Lease lets one of several instances skip a tick another one is already
// running. Sweeping stays correct without it.
type Lease interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

type ExpirySweeper struct {
	tx        services.TxManager
	notifier  notifications.Notifier
	logger    *zap.Logger
	batchSize int
	timeout   time.Duration
	lease     Lease
}

type SweeperOption func(*ExpirySweeper)

func WithLease(l Lease) SweeperOption {
	return func(s *ExpirySweeper) { s.lease = l }
}

func WithBatchSize(n int) SweeperOption {
	return func(s *ExpirySweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithStorageTimeout(d time.Duration) SweeperOption {
	return func(s *ExpirySweeper) { s.timeout = d }
}

func NewExpirySweeper(tx services.TxManager, notifier notifications.Notifier, logger *zap.Logger, opts ...SweeperOption) *ExpirySweeper {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	s := &ExpirySweeper{
		tx:        tx,
		notifier:  notifier,
		logger:    logger,
		batchSize: 500,
		timeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep expires every AVAILABLE slot whose instant is before now and
// returns how many transitions this call won. A slot another writer moved
// first is skipped without notification, which keeps repeated and
// concurrent sweeps free of duplicate side effects.
func (s *ExpirySweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	if s.lease != nil {
		release, ok, err := s.lease.Acquire(ctx)
		if err != nil {
			s.logger.Warn("sweep lease unavailable, sweeping anyway", zap.Error(err))
		} else if !ok {
			s.logger.Debug("sweep lease held elsewhere, skipping tick")
			return 0, nil
		} else {
			defer release()
		}
	}

	expired := 0
	for {
		batch, err := s.lapsed(ctx, now)
		if err != nil {
			return expired, err
		}

		won := 0
		for _, slot := range batch {
			slot, err := s.expire(ctx, slot)
			if errors.Is(err, services.ErrConflict) {
				continue
			}
			if err != nil {
				return expired, err
			}
			won++
			s.notifier.Notify(ctx, services.SlotEvent(notifications.EventExpired, slot, nil))
		}
		expired += won

		if len(batch) < s.batchSize || won == 0 {
			break
		}
	}

	if expired > 0 {
		s.logger.Info("expired lapsed slots", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *ExpirySweeper) lapsed(ctx context.Context, now time.Time) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var batch []models.Slot
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos services.Repositories) error {
		var err error
		batch, err = repos.Slots.FindLapsed(ctx, now, s.batchSize)
		return err
	})
	return batch, err
}

func (s *ExpirySweeper) expire(ctx context.Context, slot models.Slot) (models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.tx.WithTx(ctx, func(ctx context.Context, repos services.Repositories) error {
		var err error
		slot, err = services.Transition(ctx, repos.Slots, slot, models.SlotExpired)
		return err
	})
	return slot, err
}

// Run is the cron entry point.
func (s *ExpirySweeper) Run() {
	if _, err := s.Sweep(context.Background(), time.Now().UTC()); err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
	}
}
