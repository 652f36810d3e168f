package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one customer's purchase of one trip-date seat. All money fields
// are in currency minor units and must satisfy
//
//	GrossPrice = CommissionAmount + HostingFee + GuidePayout + ReferralAmount
//
// exactly. Status and payment status are only ever written through the ledger
// orchestrator once the booking exists; bookings are never deleted.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TripID     uuid.UUID `gorm:"not null" json:"trip_id"`
	TripDateID uuid.UUID `gorm:"not null" json:"trip_date_id"`
	CustomerID uuid.UUID `gorm:"not null" json:"customer_id"`
	GuideID    uuid.UUID `gorm:"not null" json:"guide_id"`

	GrossPrice       int64  `gorm:"not null" json:"gross_price"`
	CommissionAmount int64  `gorm:"not null" json:"commission_amount"`
	HostingFee       int64  `gorm:"not null" json:"hosting_fee"`
	GuidePayout      int64  `gorm:"not null" json:"guide_payout"`
	ReferralAmount   int64  `gorm:"not null;default:0" json:"referral_amount"`
	Currency         string `gorm:"size:3;not null" json:"currency"`

	ReferrerID *uuid.UUID `json:"referrer_id,omitempty"`

	Status        string `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus string `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Trip     Trip     `gorm:"foreignkey:TripID" json:"trip,omitempty"`
	TripDate TripDate `gorm:"foreignkey:TripDateID" json:"trip_date,omitempty"`
	Customer User     `gorm:"foreignkey:CustomerID" json:"customer,omitempty"`
	Guide    User     `gorm:"foreignkey:GuideID" json:"guide,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
