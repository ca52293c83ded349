package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/therapy_booking/database/memstore"
	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/notifications"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Notify(_ context.Context, event notifications.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) count(kind notifications.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == kind {
			n++
		}
	}
	return n
}

type fakeLease struct {
	ok       bool
	err      error
	released int
}

func (l *fakeLease) Acquire(context.Context) (func(), bool, error) {
	if l.err != nil || !l.ok {
		return nil, l.ok, l.err
	}
	return func() { l.released++ }, true, nil
}

func seedSlots(store *memstore.Store, therapistID uuid.UUID, start time.Time, n int, status models.SlotStatus) {
	for i := 0; i < n; i++ {
		store.PutSlot(models.Slot{
			ID:             uuid.New(),
			TherapistID:    therapistID,
			AvailableAtUTC: start.Add(time.Duration(i) * time.Hour),
			Status:         status,
		})
	}
}

func statusCount(store *memstore.Store, status models.SlotStatus) int {
	n := 0
	for _, slot := range store.Slots() {
		if slot.Status == status {
			n++
		}
	}
	return n
}

func TestSweepExpiresOnlyLapsedAvailableSlots(t *testing.T) {
	store := memstore.New()
	notifier := &recordingNotifier{}
	therapistID := uuid.New()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	seedSlots(store, therapistID, now.Add(-5*time.Hour), 3, models.SlotAvailable)
	seedSlots(store, therapistID, now.Add(-10*time.Hour), 2, models.SlotBooked)
	seedSlots(store, therapistID, now.Add(-20*time.Hour), 1, models.SlotUnavailable)
	seedSlots(store, therapistID, now, 2, models.SlotAvailable)

	sweeper := NewExpirySweeper(store, notifier, zap.NewNop(), WithBatchSize(2))

	n, err := sweeper.Sweep(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 3 {
		t.Fatalf("expired %d slots, want 3", n)
	}
	if got := statusCount(store, models.SlotExpired); got != 3 {
		t.Fatalf("%d expired slots in store, want 3", got)
	}
	if got := statusCount(store, models.SlotBooked); got != 2 {
		t.Fatalf("booked slots were touched: %d left", got)
	}
	if got := statusCount(store, models.SlotAvailable); got != 2 {
		t.Fatalf("future slots were touched: %d available", got)
	}
	if got := notifier.count(notifications.EventExpired); got != 3 {
		t.Fatalf("%d expiry notifications, want 3", got)
	}

	n, err = sweeper.Sweep(context.Background(), now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 || notifier.count(notifications.EventExpired) != 3 {
		t.Fatalf("second sweep changed %d slots and sent extra notifications", n)
	}
}

func TestConcurrentSweepsNotifyOncePerSlot(t *testing.T) {
	store := memstore.New()
	notifier := &recordingNotifier{}
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	seedSlots(store, uuid.New(), now.Add(-48*time.Hour), 40, models.SlotAvailable)

	const workers = 4
	totals := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper := NewExpirySweeper(store, notifier, zap.NewNop(), WithBatchSize(7))
			n, err := sweeper.Sweep(context.Background(), now)
			if err != nil {
				t.Errorf("sweep: %v", err)
			}
			totals <- n
		}()
	}
	wg.Wait()
	close(totals)

	sum := 0
	for n := range totals {
		sum += n
	}
	if sum != 40 {
		t.Fatalf("sweeps won %d transitions in total, want 40", sum)
	}
	if got := notifier.count(notifications.EventExpired); got != 40 {
		t.Fatalf("%d notifications, want 40", got)
	}
	if got := statusCount(store, models.SlotExpired); got != 40 {
		t.Fatalf("%d expired slots, want 40", got)
	}
}

func TestSweepLease(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("held elsewhere", func(t *testing.T) {
		store := memstore.New()
		seedSlots(store, uuid.New(), now.Add(-time.Hour), 1, models.SlotAvailable)
		sweeper := NewExpirySweeper(store, nil, zap.NewNop(), WithLease(&fakeLease{ok: false}))

		n, err := sweeper.Sweep(context.Background(), now)
		if err != nil || n != 0 {
			t.Fatalf("expected a skipped tick, got %d %v", n, err)
		}
		if statusCount(store, models.SlotAvailable) != 1 {
			t.Fatalf("slot expired while the lease was held elsewhere")
		}
	})

	t.Run("acquired and released", func(t *testing.T) {
		store := memstore.New()
		seedSlots(store, uuid.New(), now.Add(-time.Hour), 1, models.SlotAvailable)
		lease := &fakeLease{ok: true}
		sweeper := NewExpirySweeper(store, nil, zap.NewNop(), WithLease(lease))

		if n, err := sweeper.Sweep(context.Background(), now); err != nil || n != 1 {
			t.Fatalf("got %d %v", n, err)
		}
		if lease.released != 1 {
			t.Fatalf("lease released %d times", lease.released)
		}
	})

	t.Run("lease store down", func(t *testing.T) {
		store := memstore.New()
		seedSlots(store, uuid.New(), now.Add(-time.Hour), 1, models.SlotAvailable)
		sweeper := NewExpirySweeper(store, nil, zap.NewNop(), WithLease(&fakeLease{err: errors.New("redis down")}))

		if n, err := sweeper.Sweep(context.Background(), now); err != nil || n != 1 {
			t.Fatalf("sweep should proceed without the lease, got %d %v", n, err)
		}
	})
}
