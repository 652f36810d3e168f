package ledger

import (
	"fmt"
	"math"
)

// MaxReferralRate is the business ceiling on the referral cut: 2% of gross.
const MaxReferralRate = 0.02

// Rates holds the platform's split parameters for one booking. HostingFee is
// a flat amount in currency minor units; the two rates are fractions of the
// gross price.
type Rates struct {
	CommissionRate float64
	HostingFee     int64
	ReferralRate   float64
}

// Split is the result of dividing a gross price between the platform, the
// guide and an optional referrer. All fields are in currency minor units and
// always sum exactly to the gross price they were computed from.
type Split struct {
	Commission  int64
	HostingFee  int64
	GuidePayout int64
	Referral    int64
}

// Sum returns the total of all split components.
func (s Split) Sum() int64 {
	return s.Commission + s.HostingFee + s.GuidePayout + s.Referral
}

// SplitPrice divides gross (minor units) per the given rates. Commission and
// referral amounts are rounded half-up to the minor unit; the guide payout
// takes whatever remains, so rounding never shifts a sub-unit fraction from
// the guide to the platform or the referrer.
func SplitPrice(gross int64, rates Rates) (Split, error) {
	if gross <= 0 {
		return Split{}, fmt.Errorf("%w: gross price must be positive, got %d", ErrInvalidSplit, gross)
	}
	if rates.CommissionRate < 0 || rates.CommissionRate > 1 {
		return Split{}, fmt.Errorf("%w: commission rate %v out of [0,1]", ErrInvalidSplit, rates.CommissionRate)
	}
	if rates.HostingFee < 0 {
		return Split{}, fmt.Errorf("%w: hosting fee must not be negative, got %d", ErrInvalidSplit, rates.HostingFee)
	}
	if rates.ReferralRate < 0 || rates.ReferralRate > MaxReferralRate {
		return Split{}, fmt.Errorf("%w: referral rate %v out of [0,%v]", ErrInvalidSplit, rates.ReferralRate, MaxReferralRate)
	}

	commission := roundHalfUp(float64(gross) * rates.CommissionRate)
	referral := roundHalfUp(float64(gross) * rates.ReferralRate)
	guide := gross - commission - rates.HostingFee - referral
	if guide < 0 {
		return Split{}, fmt.Errorf("%w: deductions exceed gross price %d", ErrInvalidSplit, gross)
	}

	return Split{
		Commission:  commission,
		HostingFee:  rates.HostingFee,
		GuidePayout: guide,
		Referral:    referral,
	}, nil
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
