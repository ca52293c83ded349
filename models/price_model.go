package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionType string

const (
	SessionIndividual SessionType = "individual"
	SessionCouple     SessionType = "couple"
)

func (t SessionType) Valid() bool {
	return t == SessionIndividual || t == SessionCouple
}

type PriceState string

const (
	PriceCurrent    PriceState = "current"
	PriceHistorical PriceState = "historical"
)

// Price rows are never edited after creation apart from the
// current -> historical flip when a newer price supersedes them.
type Price struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TherapistID uuid.UUID   `gorm:"type:uuid;not null;index" json:"therapist_id"`
	Currency    string      `gorm:"size:3;not null" json:"currency"`
	SessionType SessionType `gorm:"size:20;not null" json:"session_type"`
	Amount      float64     `gorm:"type:numeric(10,2);not null" json:"amount"`
	State       PriceState  `gorm:"size:20;not null;default:'current'" json:"state"`
	Slug        *string     `gorm:"size:100" json:"slug,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
