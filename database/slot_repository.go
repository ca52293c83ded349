package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) FindByID(ctx context.Context, id uuid.UUID) (models.Slot, error) {
	var slot models.Slot
	err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return slot, services.ErrNotFound
	}
	return slot, err
}

func (r *SlotRepository) FindByTherapistAndRange(ctx context.Context, therapistID uuid.UUID, from, to time.Time) ([]models.Slot, error) {
	var slots []models.Slot
	err := r.db.WithContext(ctx).
		Where("therapist_id = ? AND available_at_utc >= ? AND available_at_utc < ?", therapistID, from.UTC(), to.UTC()).
		Order("available_at_utc asc").
		Find(&slots).Error
	return slots, err
}

func (r *SlotRepository) FindLapsed(ctx context.Context, before time.Time, limit int) ([]models.Slot, error) {
	var slots []models.Slot
	err := r.db.WithContext(ctx).
		Where("status = ? AND available_at_utc < ?", models.SlotAvailable, before.UTC()).
		Order("available_at_utc asc").
		Limit(limit).
		Find(&slots).Error
	return slots, err
}

func (r *SlotRepository) FindBookedBetween(ctx context.Context, from, to time.Time) ([]models.Slot, error) {
	var slots []models.Slot
	err := r.db.WithContext(ctx).
		Where("status = ? AND available_at_utc >= ? AND available_at_utc < ?", models.SlotBooked, from.UTC(), to.UTC()).
		Order("available_at_utc asc").
		Find(&slots).Error
	return slots, err
}

// CreateIfAbsent leans on the (therapist_id, available_at_utc) unique index,
// so two generators racing over the same week cannot both insert.
func (r *SlotRepository) CreateIfAbsent(ctx context.Context, slot *models.Slot) (bool, error) {
	slot.AvailableAtUTC = slot.AvailableAtUTC.UTC()
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "therapist_id"}, {Name: "available_at_utc"}},
			DoNothing: true,
		}).
		Create(slot)
	if res.Error != nil {
		return false, conflictOr(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *SlotRepository) ConditionalUpdateStatus(ctx context.Context, id uuid.UUID, expected models.SlotStatus, revision int64, next models.SlotStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ? AND status = ? AND revision = ?", id, expected, revision).
		Updates(map[string]any{
			"status":     next,
			"revision":   gorm.Expr("revision + 1"),
			"updated_at": time.Now().UTC(),
		})
	if lostRace(res.Error) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SlotRepository) DeleteIfAvailable(ctx context.Context, id uuid.UUID, revision int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND revision = ?", id, models.SlotAvailable, revision).
		Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.slot_id = slots.id)").
		Delete(&models.Slot{})
	if lostRace(res.Error) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
