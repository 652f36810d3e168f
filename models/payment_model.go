package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID *uuid.UUID `gorm:"unique" json:"booking_id"`

	// Amount is in currency minor units.
	Amount   int64  `gorm:"not null" json:"amount"`
	Currency string `gorm:"size:3;not null" json:"currency"`
	Provider string `gorm:"size:50;not null" json:"provider"`

	ProviderOrderID  *string `gorm:"size:255;unique" json:"provider_order_id"`
	ProviderTxnID    *string `gorm:"size:255;unique" json:"provider_txn_id"`
	ProviderRefundID *string `gorm:"size:255;unique" json:"provider_refund_id"`

	Status       string  `gorm:"size:20;not null" json:"status"`
	RefundReason *string `gorm:"type:text" json:"refund_reason,omitempty"`
	ReceiptURL   *string `gorm:"size:512" json:"receipt_url,omitempty"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
