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

type PriceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

func (r *PriceRepository) FindByID(ctx context.Context, id uuid.UUID) (models.Price, error) {
	var price models.Price
	err := r.db.WithContext(ctx).First(&price, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return price, services.ErrNotFound
	}
	return price, err
}

func (r *PriceRepository) FindCurrent(ctx context.Context, therapistID uuid.UUID, currency string, sessionType models.SessionType) (models.Price, error) {
	var price models.Price
	err := r.db.WithContext(ctx).
		Where("therapist_id = ? AND currency = ? AND session_type = ? AND state = ?", therapistID, currency, sessionType, models.PriceCurrent).
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return price, services.ErrNotFound
	}
	return price, err
}

func (r *PriceRepository) ListByTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.Price, error) {
	var prices []models.Price
	err := r.db.WithContext(ctx).
		Where("therapist_id = ?", therapistID).
		Order("created_at desc").
		Find(&prices).Error
	return prices, err
}

// Create fails with ErrConflict when another current price for the same
// combination committed first.
func (r *PriceRepository) Create(ctx context.Context, price *models.Price) error {
	return conflictOr(r.db.WithContext(ctx).Create(price).Error)
}

func (r *PriceRepository) Retire(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Price{}).
		Where("id = ? AND state = ?", id, models.PriceCurrent).
		Updates(map[string]any{"state": models.PriceHistorical, "updated_at": time.Now().UTC()})
	if lostRace(res.Error) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
