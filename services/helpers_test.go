package services_test

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/anjiri1684/therapy_booking/database/memstore"
	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/notifications"
	"github.com/anjiri1684/therapy_booking/services"
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

func (r *recordingNotifier) Events() []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Event(nil), r.events...)
}

type fixture struct {
	store       *memstore.Store
	notifier    *recordingNotifier
	coordinator *services.BookingCoordinator
	generator   *services.ScheduleGenerator
	prices      *services.PriceResolver
	therapistID uuid.UUID
	clientID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	notifier := &recordingNotifier{}
	logger := zap.NewNop()

	f := &fixture{
		store:    store,
		notifier: notifier,
		coordinator: services.NewBookingCoordinator(store, notifier, logger, services.BookingPolicy{
			CancellationCutoff: 24 * time.Hour,
			StorageTimeout:     time.Second,
		}),
		generator:   services.NewScheduleGenerator(store, time.Second, logger),
		prices:      services.NewPriceResolver(store, time.Second, logger),
		therapistID: uuid.New(),
		clientID:    uuid.New(),
	}
	store.AddTherapist(models.Therapist{UserID: f.therapistID, TimeZone: "Europe/Kyiv"})
	store.AddUser(models.User{ID: f.therapistID, FullName: "Olena", Email: "olena@example.com", Role: "therapist"})
	store.AddUser(models.User{ID: f.clientID, FullName: "Client", Email: "client@example.com", Role: "client"})
	return f
}

func (f *fixture) putSlot(at time.Time, status models.SlotStatus) models.Slot {
	slot := models.Slot{
		ID:             uuid.New(),
		TherapistID:    f.therapistID,
		AvailableAtUTC: at.UTC(),
		Status:         status,
	}
	f.store.PutSlot(slot)
	return slot
}

func (f *fixture) setPrice(t *testing.T, currency string, sessionType models.SessionType, amount float64) models.Price {
	t.Helper()
	price, err := f.prices.SetPrice(context.Background(), services.SetPriceRequest{
		TherapistID: f.therapistID,
		Currency:    currency,
		SessionType: sessionType,
		Amount:      amount,
	})
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
	return price
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}
