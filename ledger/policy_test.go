package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundTier(t *testing.T) {
	type testCase struct {
		name           string
		daysUntilTrip  int
		guideInitiated bool
		want           int
	}

	tests := []testCase{
		{name: "WellAhead", daysUntilTrip: 30, want: 100},
		{name: "EightDaysOut", daysUntilTrip: 8, want: 100},
		{name: "SevenDaysOut", daysUntilTrip: 7, want: 50},
		{name: "FourDaysOut", daysUntilTrip: 4, want: 50},
		{name: "ThreeDaysOut", daysUntilTrip: 3, want: 0},
		{name: "DayOf", daysUntilTrip: 0, want: 0},
		{name: "GuideCancelsDayOf", daysUntilTrip: 0, guideInitiated: true, want: 100},
		{name: "GuideCancelsMidWindow", daysUntilTrip: 5, guideInitiated: true, want: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RefundTier(tc.daysUntilTrip, tc.guideInitiated)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRefundTier_TripAlreadyStarted(t *testing.T) {
	for _, days := range []int{-1, -10} {
		_, err := RefundTier(days, false)
		assert.ErrorIs(t, err, ErrInvalidCancellation)

		// Guide-initiated does not override a started trip.
		_, err = RefundTier(days, true)
		assert.ErrorIs(t, err, ErrInvalidCancellation)
	}
}

// Cancelling earlier can never pay back less than cancelling later.
func TestRefundTier_Monotonic(t *testing.T) {
	prev := 0
	for days := 0; days <= 30; days++ {
		got, err := RefundTier(days, false)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, prev, "refund dropped at %d days out", days)
		prev = got
	}
}
