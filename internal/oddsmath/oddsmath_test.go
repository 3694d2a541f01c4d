package oddsmath

import (
	"errors"
	"math"
	"testing"

	"github.com/propscan/propscan/internal/domain"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"even money", 100, 2.0},
		{"underdog +150", 150, 2.5},
		{"underdog +200", 200, 3.0},
		{"favorite -110", -110, 1.909090909},
		{"favorite -150", -150, 1.666666667},
		{"favorite -200", -200, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToDecimal(tt.american)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("ToDecimal(%d) = %f, want %f", tt.american, got, tt.want)
			}
		})
	}
}

func TestToDecimalZero(t *testing.T) {
	if _, err := ToDecimal(0); !errors.Is(err, domain.ErrInvalidOdds) {
		t.Fatalf("ToDecimal(0) error = %v, want ErrInvalidOdds", err)
	}
}

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		decimal float64
		want    float64
	}{
		{2.0, 50.0},
		{2.5, 40.0},
		{1.5, 66.666667},
	}

	for _, tt := range tests {
		got := ImpliedProbability(tt.decimal)
		if math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("ImpliedProbability(%f) = %f, want %f", tt.decimal, got, tt.want)
		}
	}
}

func TestArbitrageProfit(t *testing.T) {
	tests := []struct {
		name       string
		over       int
		under      int
		wantProfit float64
		wantOK     bool
	}{
		// both sides decimal 2.2, implied 45.45% each, sum 0.909 < 1
		{"plus money both sides", 120, 120, 10.0, true},
		// implied ~52.4% each, sum 1.048 >= 1: no arbitrage, absent not zero
		{"standard vig", -110, -110, 0, false},
		{"breakeven is not arbitrage", 100, -100, 0, false},
		{"invalid odds", 0, 120, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ArbitrageProfit(tt.over, tt.under)
			if ok != tt.wantOK {
				t.Fatalf("ArbitrageProfit(%d, %d) ok = %v, want %v", tt.over, tt.under, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.wantProfit) > 0.01 {
				t.Errorf("ArbitrageProfit(%d, %d) = %f, want %f", tt.over, tt.under, got, tt.wantProfit)
			}
		})
	}
}

func TestExpectedValue(t *testing.T) {
	// +100 at a true 50% is exactly breakeven.
	ev, err := ExpectedValue(100, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ev) > 0.01 {
		t.Errorf("ExpectedValue(+100, 50) = %f, want 0", ev)
	}

	// +150 at a true 50%: 0.5*1.5 - 0.5 = +25%.
	ev, err = ExpectedValue(150, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ev-25) > 0.01 {
		t.Errorf("ExpectedValue(+150, 50) = %f, want 25", ev)
	}

	if _, err := ExpectedValue(0, 50); !errors.Is(err, domain.ErrInvalidOdds) {
		t.Fatalf("ExpectedValue(0, 50) error = %v, want ErrInvalidOdds", err)
	}
}

// Whatever side wins, an arbitrage stake split pays out the same amount, so
// the profit computed from either leg must agree within rounding.
func TestStakeSplitProperty(t *testing.T) {
	pairs := [][2]int{
		{120, 120},
		{150, -105},
		{200, -110},
		{105, 110},
	}

	for _, pair := range pairs {
		decOver, err := ToDecimal(pair[0])
		if err != nil {
			t.Fatalf("ToDecimal(%d): %v", pair[0], err)
		}
		decUnder, err := ToDecimal(pair[1])
		if err != nil {
			t.Fatalf("ToDecimal(%d): %v", pair[1], err)
		}

		const total = 100.0
		stakeOver, stakeUnder, profit := StakeSplit(total, decOver, decUnder)

		if math.Abs(stakeOver+stakeUnder-total) > 1e-9 {
			t.Errorf("stakes %f + %f do not sum to %f", stakeOver, stakeUnder, total)
		}

		profitFromUnder := stakeUnder*decUnder - total
		if math.Abs(profit-profitFromUnder) > 1e-6 {
			t.Errorf("odds %v: over-leg profit %f != under-leg profit %f", pair, profit, profitFromUnder)
		}
	}
}
