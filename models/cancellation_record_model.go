package models

import (
	"time"

	"github.com/google/uuid"
)

// CancellationRecord is an insert-only audit row written in the same
// transaction as the booking's cancellation.
type CancellationRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"not null" json:"booking_id"`
	Initiator string    `gorm:"size:20;not null" json:"initiator"`
	Reason    string    `gorm:"type:text" json:"reason"`

	RefundPercent int   `gorm:"not null" json:"refund_percent"`
	RefundAmount  int64 `gorm:"not null" json:"refund_amount"`
	DaysUntilTrip int   `gorm:"not null" json:"days_until_trip"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
