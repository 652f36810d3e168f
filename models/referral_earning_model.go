package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralEarning is one row per referred booking, owned by the referrer.
// Status flips pending->paid exactly once, and only when the referenced
// booking completes; the ledger's settlement tracker is the single write path.
type ReferralEarning struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ReferrerID uuid.UUID `gorm:"not null" json:"referrer_id"`
	BookingID  uuid.UUID `gorm:"not null;unique" json:"booking_id"`

	// Amount is in currency minor units.
	Amount int64  `gorm:"not null" json:"amount"`
	Status string `gorm:"size:20;not null;default:'pending'" json:"status"`

	PaidAt *time.Time `json:"paid_at,omitempty"`

	Referrer User    `gorm:"foreignkey:ReferrerID" json:"referrer,omitempty"`
	Booking  Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
