package ledger

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPrice(t *testing.T) {
	type testCase struct {
		name  string
		gross int64
		rates Rates
		want  Split
	}

	tests := []testCase{
		{
			name:  "StandardBookingWithReferrer",
			gross: 50000,
			rates: Rates{CommissionRate: 0.12, HostingFee: 100, ReferralRate: 0.015},
			want:  Split{Commission: 6000, HostingFee: 100, GuidePayout: 43150, Referral: 750},
		},
		{
			name:  "NoReferrer",
			gross: 50000,
			rates: Rates{CommissionRate: 0.12, HostingFee: 100},
			want:  Split{Commission: 6000, HostingFee: 100, GuidePayout: 43900},
		},
		{
			name:  "RoundingGoesHalfUpOnCommission",
			gross: 1005,
			rates: Rates{CommissionRate: 0.125},
			// 1005 * 0.125 = 125.625 -> 126
			want: Split{Commission: 126, GuidePayout: 879},
		},
		{
			name:  "GuideAbsorbsRoundingRemainder",
			gross: 999,
			rates: Rates{CommissionRate: 0.1, HostingFee: 50, ReferralRate: 0.02},
			// commission 99.9 -> 100, referral 19.98 -> 20
			want: Split{Commission: 100, HostingFee: 50, GuidePayout: 829, Referral: 20},
		},
		{
			name:  "OneCentBooking",
			gross: 1,
			rates: Rates{CommissionRate: 0.12, ReferralRate: 0.015},
			want:  Split{Commission: 0, GuidePayout: 1, Referral: 0},
		},
		{
			name:  "FullCommission",
			gross: 2500,
			rates: Rates{CommissionRate: 1},
			want:  Split{Commission: 2500, GuidePayout: 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SplitPrice(tc.gross, tc.rates)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.gross, got.Sum())
		})
	}
}

func TestSplitPrice_Errors(t *testing.T) {
	type testCase struct {
		name  string
		gross int64
		rates Rates
	}

	tests := []testCase{
		{name: "ZeroGross", gross: 0, rates: Rates{CommissionRate: 0.12}},
		{name: "NegativeGross", gross: -100, rates: Rates{CommissionRate: 0.12}},
		{name: "NegativeCommission", gross: 1000, rates: Rates{CommissionRate: -0.01}},
		{name: "CommissionOverOne", gross: 1000, rates: Rates{CommissionRate: 1.01}},
		{name: "NegativeHostingFee", gross: 1000, rates: Rates{HostingFee: -1}},
		{name: "NegativeReferral", gross: 1000, rates: Rates{ReferralRate: -0.001}},
		{name: "ReferralAboveCeiling", gross: 1000, rates: Rates{ReferralRate: 0.021}},
		{name: "DeductionsExceedGross", gross: 100, rates: Rates{CommissionRate: 0.5, HostingFee: 60}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SplitPrice(tc.gross, tc.rates)
			assert.ErrorIs(t, err, ErrInvalidSplit)
		})
	}
}

// The split must reassemble to the gross exactly for any inputs, never
// drifting by rounding.
func TestSplitPrice_SumIsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 10000; i++ {
		gross := rng.Int63n(10_000_000) + 1
		rates := Rates{
			CommissionRate: rng.Float64() * 0.5,
			HostingFee:     rng.Int63n(500),
			ReferralRate:   rng.Float64() * MaxReferralRate,
		}

		split, err := SplitPrice(gross, rates)
		if err != nil {
			// Deductions exceeding a tiny gross is the only legal failure
			// for these ranges.
			assert.ErrorIs(t, err, ErrInvalidSplit)
			continue
		}

		require.Equal(t, gross, split.Sum(), "gross=%d rates=%+v split=%+v", gross, rates, split)
		assert.GreaterOrEqual(t, split.GuidePayout, int64(0))
		assert.GreaterOrEqual(t, split.Commission, int64(0))
		assert.GreaterOrEqual(t, split.Referral, int64(0))
	}
}
