package commission

import (
	"github.com/shopspring/decimal"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// ComputeRuleFee applies a rule's fee formula to an amount in minor units:
//
//	fee = floor(amount * percentage) + fixedAmount, clamped to [minAmount, maxAmount]
//
// The percentage product is computed in exact decimal arithmetic and
// truncated toward zero, so results are reproducible integers.
func ComputeRuleFee(amount int64, rule *models.CommissionRule) int64 {
	percentageFee := decimal.NewFromInt(amount).
		Mul(rule.Percentage).
		RoundDown(0).
		IntPart()

	fee := percentageFee + rule.FixedAmount

	if fee < rule.MinAmount {
		fee = rule.MinAmount
	}
	if rule.MaxAmount != nil && fee > *rule.MaxAmount {
		fee = *rule.MaxAmount
	}
	return fee
}

// ComputeDefaultFee applies the jurisdiction tariff used when no rule
// matches: amounts at or below the free threshold cost nothing, everything
// above pays the fixed fee plus a percentage, capped at the tariff maximum.
func ComputeDefaultFee(amount int64, tariff config.Tariff) int64 {
	if amount <= tariff.FreeThreshold {
		return 0
	}

	percentageFee := decimal.NewFromInt(amount).
		Mul(tariff.Percentage).
		RoundDown(0).
		IntPart()

	fee := tariff.FixedFee + percentageFee
	if fee > tariff.MaxFee {
		fee = tariff.MaxFee
	}
	return fee
}
