package commission

import (
	"sort"
	"time"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// SelectRule picks the single rule governing a transaction out of the
// candidate list: highest priority first, and among equal priorities the
// earliest effectiveFrom, then the smallest rule id, so selection is
// deterministic. Returns nil when no rule matches; callers fall back to the
// jurisdiction default tariff.
func SelectRule(rules []models.CommissionRule, amount int64, kyc models.KYCLevel, asOf time.Time) *models.CommissionRule {
	ordered := make([]models.CommissionRule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		if !ordered[i].EffectiveFrom.Equal(ordered[j].EffectiveFrom) {
			return ordered[i].EffectiveFrom.Before(ordered[j].EffectiveFrom)
		}
		return ordered[i].RuleID.String() < ordered[j].RuleID.String()
	})

	for i := range ordered {
		if ordered[i].Matches(amount, kyc, asOf) {
			return &ordered[i]
		}
	}
	return nil
}
