// Package memstore is an in-process implementation of the repositories
// used by tests and local runs without postgres. A store-wide mutex plays
// the role of the database row locks; each WithTx is serialized and rolled
// back on error.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/google/uuid"
)

type state struct {
	slots      map[uuid.UUID]models.Slot
	prices     map[uuid.UUID]models.Price
	orders     map[uuid.UUID]models.Order
	therapists map[uuid.UUID]models.Therapist
	users      map[uuid.UUID]models.User
}

func newState() *state {
	return &state{
		slots:      map[uuid.UUID]models.Slot{},
		prices:     map[uuid.UUID]models.Price{},
		orders:     map[uuid.UUID]models.Order{},
		therapists: map[uuid.UUID]models.Therapist{},
		users:      map[uuid.UUID]models.User{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.prices {
		c.prices[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.therapists {
		c.therapists[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.st.clone()
	if err := fn(ctx, s.repositories(working)); err != nil {
		return err
	}
	s.st = working
	return nil
}

func (s *Store) repositories(st *state) services.Repositories {
	return services.Repositories{
		Slots:      &slotRepo{st: st, now: s.now},
		Prices:     &priceRepo{st: st, now: s.now},
		Orders:     &orderRepo{st: st, now: s.now},
		Therapists: &therapistRepo{st: st},
		Users:      &userRepo{st: st},
	}
}

func (s *Store) AddTherapist(t models.Therapist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Status == "" {
		t.Status = "active"
	}
	s.st.therapists[t.UserID] = t
}

func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

// PutSlot stores slot as given, bypassing every precondition.
func (s *Store) PutSlot(slot models.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.slots[slot.ID] = slot
}

func (s *Store) Slots() []models.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Slot, 0, len(s.st.slots))
	for _, slot := range s.st.slots {
		out = append(out, slot)
	}
	sortSlots(out)
	return out
}

func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.st.orders))
	for _, order := range s.st.orders {
		out = append(out, order)
	}
	return out
}

func sortSlots(slots []models.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].AvailableAtUTC.Before(slots[j].AvailableAtUTC)
	})
}
