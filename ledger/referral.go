package ledger

import (
	"time"

	"github.com/toofuturetechnologies/SummitSite-sub001/models"
)

const (
	ReferralPending = "pending"
	ReferralPaid    = "paid"
)

// settleReferral flips the booking's referral earning from pending to paid.
// It runs only inside the confirmed->completed transaction and is the single
// write path allowed to mark an earning paid. A second completion event finds
// the earning already paid and leaves it untouched, so duplicate events can
// never double-pay a referrer.
//
// Returns the earning when it was flipped on this call, nil otherwise.
func settleReferral(tx Tx, booking *models.Booking, now time.Time) (*models.ReferralEarning, error) {
	if booking.ReferrerID == nil {
		return nil, nil
	}

	earning, err := tx.ReferralEarningForUpdate(booking.ID)
	if err != nil {
		return nil, err
	}
	if earning == nil || earning.Status == ReferralPaid {
		return nil, nil
	}

	earning.Status = ReferralPaid
	earning.PaidAt = &now
	if err := tx.SaveReferralEarning(earning); err != nil {
		return nil, err
	}

	return earning, nil
}
