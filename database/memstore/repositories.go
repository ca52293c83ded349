package memstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/google/uuid"
)

var errDuplicate = fmt.Errorf("%w: memstore: duplicate key", services.ErrConflict)

type slotRepo struct {
	st  *state
	now func() time.Time
}

func (r *slotRepo) FindByID(_ context.Context, id uuid.UUID) (models.Slot, error) {
	slot, ok := r.st.slots[id]
	if !ok {
		return models.Slot{}, services.ErrNotFound
	}
	return slot, nil
}

func (r *slotRepo) FindByTherapistAndRange(_ context.Context, therapistID uuid.UUID, from, to time.Time) ([]models.Slot, error) {
	var out []models.Slot
	for _, slot := range r.st.slots {
		if slot.TherapistID == therapistID && !slot.AvailableAtUTC.Before(from) && slot.AvailableAtUTC.Before(to) {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func (r *slotRepo) FindLapsed(_ context.Context, before time.Time, limit int) ([]models.Slot, error) {
	var out []models.Slot
	for _, slot := range r.st.slots {
		if slot.Status == models.SlotAvailable && slot.AvailableAtUTC.Before(before) {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *slotRepo) FindBookedBetween(_ context.Context, from, to time.Time) ([]models.Slot, error) {
	var out []models.Slot
	for _, slot := range r.st.slots {
		if slot.Status == models.SlotBooked && !slot.AvailableAtUTC.Before(from) && slot.AvailableAtUTC.Before(to) {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func (r *slotRepo) CreateIfAbsent(_ context.Context, slot *models.Slot) (bool, error) {
	at := slot.AvailableAtUTC.UTC()
	for _, existing := range r.st.slots {
		if existing.TherapistID == slot.TherapistID && existing.AvailableAtUTC.Equal(at) {
			return false, nil
		}
	}
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if _, ok := r.st.slots[slot.ID]; ok {
		return false, errDuplicate
	}
	now := r.now().UTC()
	slot.AvailableAtUTC = at
	slot.CreatedAt, slot.UpdatedAt = now, now
	r.st.slots[slot.ID] = *slot
	return true, nil
}

func (r *slotRepo) ConditionalUpdateStatus(_ context.Context, id uuid.UUID, expected models.SlotStatus, revision int64, next models.SlotStatus) (bool, error) {
	slot, ok := r.st.slots[id]
	if !ok || slot.Status != expected || slot.Revision != revision {
		return false, nil
	}
	slot.Status = next
	slot.Revision++
	slot.UpdatedAt = r.now().UTC()
	r.st.slots[id] = slot
	return true, nil
}

func (r *slotRepo) DeleteIfAvailable(_ context.Context, id uuid.UUID, revision int64) (bool, error) {
	slot, ok := r.st.slots[id]
	if !ok || slot.Status != models.SlotAvailable || slot.Revision != revision {
		return false, nil
	}
	for _, order := range r.st.orders {
		if order.SlotID == id {
			return false, nil
		}
	}
	delete(r.st.slots, id)
	return true, nil
}

type priceRepo struct {
	st  *state
	now func() time.Time
}

func (r *priceRepo) FindByID(_ context.Context, id uuid.UUID) (models.Price, error) {
	price, ok := r.st.prices[id]
	if !ok {
		return models.Price{}, services.ErrNotFound
	}
	return price, nil
}

func (r *priceRepo) FindCurrent(_ context.Context, therapistID uuid.UUID, currency string, sessionType models.SessionType) (models.Price, error) {
	for _, price := range r.st.prices {
		if price.TherapistID == therapistID && price.Currency == currency &&
			price.SessionType == sessionType && price.State == models.PriceCurrent {
			return price, nil
		}
	}
	return models.Price{}, services.ErrNotFound
}

func (r *priceRepo) ListByTherapist(_ context.Context, therapistID uuid.UUID) ([]models.Price, error) {
	var out []models.Price
	for _, price := range r.st.prices {
		if price.TherapistID == therapistID {
			out = append(out, price)
		}
	}
	return out, nil
}

func (r *priceRepo) Create(ctx context.Context, price *models.Price) error {
	if price.ID == uuid.Nil {
		price.ID = uuid.New()
	}
	if _, ok := r.st.prices[price.ID]; ok {
		return errDuplicate
	}
	if price.State == models.PriceCurrent {
		if _, err := r.FindCurrent(ctx, price.TherapistID, price.Currency, price.SessionType); err == nil {
			return errDuplicate
		}
	}
	now := r.now().UTC()
	price.CreatedAt, price.UpdatedAt = now, now
	r.st.prices[price.ID] = *price
	return nil
}

func (r *priceRepo) Retire(_ context.Context, id uuid.UUID) (bool, error) {
	price, ok := r.st.prices[id]
	if !ok || price.State != models.PriceCurrent {
		return false, nil
	}
	price.State = models.PriceHistorical
	price.UpdatedAt = r.now().UTC()
	r.st.prices[id] = price
	return true, nil
}

type orderRepo struct {
	st  *state
	now func() time.Time
}

func (r *orderRepo) FindByID(_ context.Context, id uuid.UUID) (models.Order, error) {
	order, ok := r.st.orders[id]
	if !ok {
		return models.Order{}, services.ErrNotFound
	}
	return order, nil
}

func (r *orderRepo) FindBySlot(_ context.Context, slotID uuid.UUID) (models.Order, error) {
	for _, order := range r.st.orders {
		if order.SlotID == slotID {
			return order, nil
		}
	}
	return models.Order{}, services.ErrNotFound
}

func (r *orderRepo) ExistsForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	_, err := r.FindBySlot(ctx, slotID)
	if errors.Is(err, services.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *orderRepo) ReferenceTaken(_ context.Context, reference string) (bool, error) {
	for _, order := range r.st.orders {
		if order.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if _, ok := r.st.orders[order.ID]; ok {
		return errDuplicate
	}
	if exists, _ := r.ExistsForSlot(ctx, order.SlotID); exists {
		return errDuplicate
	}
	now := r.now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	r.st.orders[order.ID] = *order
	return nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status models.OrderStatus, refundable bool) error {
	order, ok := r.st.orders[id]
	if !ok {
		return services.ErrNotFound
	}
	order.Status = status
	order.Refundable = refundable
	order.UpdatedAt = r.now().UTC()
	r.st.orders[id] = order
	return nil
}

type therapistRepo struct {
	st *state
}

func (r *therapistRepo) FindByID(_ context.Context, userID uuid.UUID) (models.Therapist, error) {
	therapist, ok := r.st.therapists[userID]
	if !ok || therapist.Status != "active" {
		return models.Therapist{}, services.ErrNotFound
	}
	return therapist, nil
}

type userRepo struct {
	st *state
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	user, ok := r.st.users[id]
	if !ok {
		return models.User{}, services.ErrNotFound
	}
	return user, nil
}
