package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

func testTariff() config.Tariff {
	return config.Tariff{
		FreeThreshold: 5000,
		FixedFee:      100,
		Percentage:    decimal.RequireFromString("0.005"),
		MaxFee:        1000,
	}
}

func TestComputeDefaultFee(t *testing.T) {
	tariff := testTariff()

	tests := []struct {
		name   string
		amount int64
		want   int64
	}{
		{name: "zero amount is free", amount: 0, want: 0},
		{name: "small amount is free", amount: 3000, want: 0},
		{name: "exactly at threshold is free", amount: 5000, want: 0},
		{name: "one unit above threshold", amount: 5001, want: 125},
		{name: "mid-range amount", amount: 50000, want: 350},
		{name: "large amount is capped", amount: 1000000, want: 1000},
		{name: "exactly at cap boundary", amount: 180000, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDefaultFee(tt.amount, tariff))
		})
	}
}

func TestComputeRuleFee(t *testing.T) {
	maxFee := int64(1000)

	tests := []struct {
		name   string
		amount int64
		rule   models.CommissionRule
		want   int64
	}{
		{
			name:   "percentage plus fixed",
			amount: 50000,
			rule: models.CommissionRule{
				Percentage:  decimal.RequireFromString("0.005"),
				FixedAmount: 100,
				MinAmount:   50,
				MaxAmount:   &maxFee,
			},
			want: 350,
		},
		{
			name:   "capped at maximum",
			amount: 1000000,
			rule: models.CommissionRule{
				Percentage:  decimal.RequireFromString("0.005"),
				FixedAmount: 100,
				MaxAmount:   &maxFee,
			},
			want: 1000,
		},
		{
			name:   "raised to minimum",
			amount: 100,
			rule: models.CommissionRule{
				Percentage: decimal.RequireFromString("0.005"),
				MinAmount:  50,
			},
			want: 50,
		},
		{
			name:   "fixed fee only",
			amount: 75000,
			rule: models.CommissionRule{
				Percentage:  decimal.Zero,
				FixedAmount: 200,
			},
			want: 200,
		},
		{
			name:   "percentage only",
			amount: 75000,
			rule: models.CommissionRule{
				Percentage: decimal.RequireFromString("0.01"),
			},
			want: 750,
		},
		{
			name:   "percentage product truncated toward zero",
			amount: 333,
			rule: models.CommissionRule{
				Percentage: decimal.RequireFromString("0.005"),
			},
			want: 1, // floor(1.665)
		},
		{
			name:   "no bounds leaves raw fee",
			amount: 2000000,
			rule: models.CommissionRule{
				Percentage:  decimal.RequireFromString("0.005"),
				FixedAmount: 100,
			},
			want: 10100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeRuleFee(tt.amount, &tt.rule))
		})
	}
}

func TestComputeRuleFee_AlwaysWithinBounds(t *testing.T) {
	maxFee := int64(800)
	rule := models.CommissionRule{
		Percentage:  decimal.RequireFromString("0.02"),
		FixedAmount: 50,
		MinAmount:   100,
		MaxAmount:   &maxFee,
	}

	for _, amount := range []int64{0, 1, 999, 50000, 123456789, 9999999999} {
		fee := ComputeRuleFee(amount, &rule)
		assert.GreaterOrEqual(t, fee, rule.MinAmount, "amount %d", amount)
		assert.LessOrEqual(t, fee, maxFee, "amount %d", amount)
	}
}
