package database

import (
	"context"
	"errors"

	"github.com/anjiri1684/therapy_booking/models"
	"github.com/anjiri1684/therapy_booking/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TherapistRepository struct {
	db *gorm.DB
}

func NewTherapistRepository(db *gorm.DB) *TherapistRepository {
	return &TherapistRepository{db: db}
}

func (r *TherapistRepository) FindByID(ctx context.Context, userID uuid.UUID) (models.Therapist, error) {
	var therapist models.Therapist
	err := r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, "active").First(&therapist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return therapist, services.ErrNotFound
	}
	return therapist, err
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, services.ErrNotFound
	}
	return user, err
}
