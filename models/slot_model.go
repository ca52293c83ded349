package models

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "available"
	SlotUnavailable SlotStatus = "unavailable"
	SlotBooked      SlotStatus = "booked"
	SlotDone        SlotStatus = "done"
	SlotFailed      SlotStatus = "failed"
	SlotCancelled   SlotStatus = "cancelled"
	SlotExpired     SlotStatus = "expired"
)

// Terminal reports whether no further transition can leave the status.
func (s SlotStatus) Terminal() bool {
	switch s {
	case SlotDone, SlotFailed, SlotCancelled, SlotExpired:
		return true
	}
	return false
}

// Slot is one bookable hour of a therapist, keyed by its UTC instant.
// Revision grows by one on every status change and guards conditional updates.
type Slot struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TherapistID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_slots_therapist_instant" json:"therapist_id"`
	AvailableAtUTC time.Time  `gorm:"column:available_at_utc;not null;uniqueIndex:idx_slots_therapist_instant;index" json:"available_at_utc"`
	Status         SlotStatus `gorm:"size:20;not null;default:'available';index" json:"status"`
	Revision       int64      `gorm:"not null;default:0" json:"revision"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
