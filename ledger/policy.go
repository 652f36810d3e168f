package ledger

import "fmt"

// RefundTier maps days-until-trip to a refund percentage:
//
//	> 7 days  -> 100%
//	4..7 days -> 50%
//	0..3 days -> 0%
//
// A negative daysUntilTrip means the trip has already started and the
// cancellation is rejected outright, not zero-refunded. Guide-initiated
// cancellations always get the 100% tier; the caller passes that explicitly
// rather than the policy inferring it.
func RefundTier(daysUntilTrip int, guideInitiated bool) (int, error) {
	if daysUntilTrip < 0 {
		return 0, fmt.Errorf("%w: trip started %d day(s) ago", ErrInvalidCancellation, -daysUntilTrip)
	}
	if guideInitiated {
		return 100, nil
	}
	switch {
	case daysUntilTrip > 7:
		return 100, nil
	case daysUntilTrip > 3:
		return 50, nil
	default:
		return 0, nil
	}
}
