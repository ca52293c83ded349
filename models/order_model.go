package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderCancelled      OrderStatus = "cancelled"
	OrderCompleted      OrderStatus = "completed"
	OrderFailed         OrderStatus = "failed"
)

// Order links exactly one booked slot to billing. Amount, Currency and
// SessionType are copied from the price at booking time; PriceID only
// points back at the (possibly historical) row they were copied from.
type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Reference   string      `gorm:"size:10;not null;unique" json:"reference"`
	SlotID      uuid.UUID   `gorm:"type:uuid;not null;unique" json:"slot_id"`
	TherapistID uuid.UUID   `gorm:"type:uuid;not null;index" json:"therapist_id"`
	ClientID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"client_id"`
	PriceID     uuid.UUID   `gorm:"type:uuid;not null" json:"price_id"`
	Amount      float64     `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency    string      `gorm:"size:3;not null" json:"currency"`
	SessionType SessionType `gorm:"size:20;not null" json:"session_type"`
	Status      OrderStatus `gorm:"size:20;not null;default:'pending_payment'" json:"status"`
	Refundable  bool        `gorm:"not null;default:false" json:"refundable"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
