package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, services.ErrNotFound
	}
	return order, err
}

func (r *OrderRepository) FindBySlot(ctx context.Context, slotID uuid.UUID) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "slot_id = ?", slotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, services.ErrNotFound
	}
	return order, err
}

func (r *OrderRepository) ExistsForSlot(ctx context.Context, slotID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("slot_id = ?", slotID).Count(&count).Error
	return count > 0, err
}

func (r *OrderRepository) ReferenceTaken(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("reference = ?", reference).Count(&count).Error
	return count > 0, err
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return conflictOr(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, refundable bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "refundable": refundable, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}
