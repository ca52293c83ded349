package models

import (
	"time"

	"github.com/google/uuid"
)

type Therapist struct {
	UserID   uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	Headline *string   `gorm:"size:255" json:"headline"`
	TimeZone string    `gorm:"size:100;not null" json:"time_zone"`
	Status   string    `gorm:"size:20;not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
