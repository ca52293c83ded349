package services

import (
	"context"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/google/uuid"
)

// SlotRepository returns ErrNotFound for missing rows. Mutations that carry
// a precondition report whether they applied instead of failing.
type SlotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.Slot, error)
	FindByTherapistAndRange(ctx context.Context, therapistID uuid.UUID, from, to time.Time) ([]models.Slot, error)
	FindLapsed(ctx context.Context, before time.Time, limit int) ([]models.Slot, error)
	FindBookedBetween(ctx context.Context, from, to time.Time) ([]models.Slot, error)
	CreateIfAbsent(ctx context.Context, slot *models.Slot) (bool, error)
	ConditionalUpdateStatus(ctx context.Context, id uuid.UUID, expected models.SlotStatus, revision int64, next models.SlotStatus) (bool, error)
	DeleteIfAvailable(ctx context.Context, id uuid.UUID, revision int64) (bool, error)
}

type PriceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.Price, error)
	FindCurrent(ctx context.Context, therapistID uuid.UUID, currency string, sessionType models.SessionType) (models.Price, error)
	ListByTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.Price, error)
	Create(ctx context.Context, price *models.Price) error
	Retire(ctx context.Context, id uuid.UUID) (bool, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.Order, error)
	FindBySlot(ctx context.Context, slotID uuid.UUID) (models.Order, error)
	ExistsForSlot(ctx context.Context, slotID uuid.UUID) (bool, error)
	ReferenceTaken(ctx context.Context, reference string) (bool, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, refundable bool) error
}

type TherapistRepository interface {
	FindByID(ctx context.Context, userID uuid.UUID) (models.Therapist, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type Repositories struct {
	Slots      SlotRepository
	Prices     PriceRepository
	Orders     OrderRepository
	Therapists TherapistRepository
	Users      UserRepository
}

// TxManager runs fn as one unit of work: everything fn writes commits
// together or not at all.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
