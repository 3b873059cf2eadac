package commission

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

func newTestRule(priority int, effectiveFrom time.Time) models.CommissionRule {
	return models.CommissionRule{
		RuleID:        uuid.New(),
		Currency:      models.CurrencyXOF,
		TransferType:  models.TransferCrossWallet,
		KYCLevel:      models.KYCAny,
		Percentage:    decimal.RequireFromString("0.005"),
		IsActive:      true,
		Priority:      priority,
		EffectiveFrom: effectiveFrom,
	}
}

func TestSelectRule_PriorityOrdering(t *testing.T) {
	now := time.Now()
	low := newTestRule(1, now.Add(-time.Hour))
	high := newTestRule(10, now.Add(-time.Hour))

	selected := SelectRule([]models.CommissionRule{low, high}, 10000, models.KYCLevel1, now)
	require.NotNil(t, selected)
	assert.Equal(t, high.RuleID, selected.RuleID)
}

func TestSelectRule_TieBreak(t *testing.T) {
	now := time.Now()

	t.Run("earlier effective_from wins on equal priority", func(t *testing.T) {
		older := newTestRule(5, now.Add(-48*time.Hour))
		newer := newTestRule(5, now.Add(-time.Hour))

		selected := SelectRule([]models.CommissionRule{newer, older}, 10000, models.KYCAny, now)
		require.NotNil(t, selected)
		assert.Equal(t, older.RuleID, selected.RuleID)
	})

	t.Run("smaller rule id wins on full tie", func(t *testing.T) {
		from := now.Add(-time.Hour).Truncate(time.Second)
		a := newTestRule(5, from)
		b := newTestRule(5, from)

		want := a.RuleID
		if b.RuleID.String() < a.RuleID.String() {
			want = b.RuleID
		}

		selected := SelectRule([]models.CommissionRule{a, b}, 10000, models.KYCAny, now)
		require.NotNil(t, selected)
		assert.Equal(t, want, selected.RuleID)

		// Same outcome regardless of input order.
		selected = SelectRule([]models.CommissionRule{b, a}, 10000, models.KYCAny, now)
		require.NotNil(t, selected)
		assert.Equal(t, want, selected.RuleID)
	})
}

func TestSelectRule_Eligibility(t *testing.T) {
	now := time.Now()

	t.Run("future rule is never selected", func(t *testing.T) {
		future := newTestRule(10, now.Add(24*time.Hour))
		assert.Nil(t, SelectRule([]models.CommissionRule{future}, 10000, models.KYCAny, now))
	})

	t.Run("expired rule is never selected", func(t *testing.T) {
		expired := newTestRule(10, now.Add(-48*time.Hour))
		until := now.Add(-time.Hour)
		expired.EffectiveTo = &until
		assert.Nil(t, SelectRule([]models.CommissionRule{expired}, 10000, models.KYCAny, now))
	})

	t.Run("inactive rule is never selected", func(t *testing.T) {
		inactive := newTestRule(10, now.Add(-time.Hour))
		inactive.IsActive = false
		assert.Nil(t, SelectRule([]models.CommissionRule{inactive}, 10000, models.KYCAny, now))
	})

	t.Run("amount bounds are inclusive", func(t *testing.T) {
		rule := newTestRule(10, now.Add(-time.Hour))
		minTx, maxTx := int64(1000), int64(50000)
		rule.MinTransaction = &minTx
		rule.MaxTransaction = &maxTx
		candidates := []models.CommissionRule{rule}

		assert.NotNil(t, SelectRule(candidates, 1000, models.KYCAny, now))
		assert.NotNil(t, SelectRule(candidates, 50000, models.KYCAny, now))
		assert.Nil(t, SelectRule(candidates, 999, models.KYCAny, now))
		assert.Nil(t, SelectRule(candidates, 50001, models.KYCAny, now))
	})

	t.Run("kyc requirement must match unless ANY", func(t *testing.T) {
		strict := newTestRule(10, now.Add(-time.Hour))
		strict.KYCLevel = models.KYCLevel2
		candidates := []models.CommissionRule{strict}

		assert.Nil(t, SelectRule(candidates, 10000, models.KYCLevel1, now))
		assert.NotNil(t, SelectRule(candidates, 10000, models.KYCLevel2, now))
	})

	t.Run("lower priority rule selected when higher is ineligible", func(t *testing.T) {
		high := newTestRule(10, now.Add(-time.Hour))
		maxTx := int64(5000)
		high.MaxTransaction = &maxTx
		low := newTestRule(1, now.Add(-time.Hour))

		selected := SelectRule([]models.CommissionRule{high, low}, 10000, models.KYCAny, now)
		require.NotNil(t, selected)
		assert.Equal(t, low.RuleID, selected.RuleID)
	})
}

func TestSelectRule_NoCandidates(t *testing.T) {
	assert.Nil(t, SelectRule(nil, 10000, models.KYCAny, time.Now()))
}
