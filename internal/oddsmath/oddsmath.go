// Package oddsmath provides pure conversions between American odds, decimal
// odds, implied probability, arbitrage profit, and expected value. All
// functions are stateless and total: invalid input yields an explicit error
// or absent result, never a panic or a silently wrong number.
package oddsmath

import (
	"math"

	"github.com/propscan/propscan/internal/domain"
)

// ToDecimal converts American odds to decimal odds. Zero is not valid
// American odds and returns domain.ErrInvalidOdds.
func ToDecimal(american int) (float64, error) {
	switch {
	case american > 0:
		return float64(american)/100 + 1, nil
	case american < 0:
		return 100/math.Abs(float64(american)) + 1, nil
	default:
		return 0, domain.ErrInvalidOdds
	}
}

// ImpliedProbability returns the probability implied by decimal odds, as a
// percentage.
func ImpliedProbability(decimal float64) float64 {
	return (1 / decimal) * 100
}

// ArbitrageProfit computes the guaranteed profit percentage of betting both
// sides at the given American odds. It reports ok=false when no arbitrage
// exists (combined implied probability >= 1) or when either odds value is
// invalid. A breakeven pair is not an opportunity, so the absent result is
// deliberately distinct from a zero profit.
func ArbitrageProfit(overOdds, underOdds int) (float64, bool) {
	decOver, err := ToDecimal(overOdds)
	if err != nil {
		return 0, false
	}
	decUnder, err := ToDecimal(underOdds)
	if err != nil {
		return 0, false
	}

	total := 1/decOver + 1/decUnder
	if total >= 1 {
		return 0, false
	}
	return round2((1/total - 1) * 100), true
}

// ExpectedValue computes the expected value of a bet as a percentage of
// stake, given the bettor's own probability estimate (0-100).
func ExpectedValue(american int, trueProbPercent float64) (float64, error) {
	decimal, err := ToDecimal(american)
	if err != nil {
		return 0, err
	}
	p := trueProbPercent / 100
	ev := p*(decimal-1) - (1 - p)
	return round2(ev * 100), nil
}

// StakeSplit distributes a total stake across the two legs of an arbitrage so
// the payout is identical whichever side wins, and returns the guaranteed
// profit. The profit computed from the over leg equals the profit computed
// from the under leg up to floating-point rounding.
func StakeSplit(total, decOver, decUnder float64) (stakeOver, stakeUnder, profit float64) {
	stakeOver = total / (1 + decOver/decUnder)
	stakeUnder = total - stakeOver
	profit = stakeOver*decOver - total
	return stakeOver, stakeUnder, profit
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
