package rules

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) Create(ctx context.Context, rule *models.CommissionRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepo) Save(ctx context.Context, rule *models.CommissionRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleRepo) FindByID(ctx context.Context, ruleID uuid.UUID) (*models.CommissionRule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionRule), args.Error(1)
}

func (m *MockRuleRepo) FindActiveByScope(ctx context.Context, currency models.Currency, transferType models.TransferType) ([]models.CommissionRule, error) {
	args := m.Called(ctx, currency, transferType)
	return args.Get(0).([]models.CommissionRule), args.Error(1)
}

func (m *MockRuleRepo) FindByCurrency(ctx context.Context, currency models.Currency, limit, offset int) ([]models.CommissionRule, int64, error) {
	args := m.Called(ctx, currency, limit, offset)
	return args.Get(0).([]models.CommissionRule), args.Get(1).(int64), args.Error(2)
}

func (m *MockRuleRepo) FindAll(ctx context.Context, limit, offset int) ([]models.CommissionRule, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.CommissionRule), args.Get(1).(int64), args.Error(2)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, currency models.Currency, transferType models.TransferType) error {
	return m.Called(ctx, currency, transferType).Error(0)
}

func (m *MockInvalidator) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T) (Service, *MockRuleRepo, *MockInvalidator) {
	t.Helper()
	repo := new(MockRuleRepo)
	invalidator := new(MockInvalidator)
	return NewService(repo, invalidator, testLogger()), repo, invalidator
}

func validCreateRequest() CreateRuleRequest {
	fixed := int64(100)
	return CreateRuleRequest{
		Currency:     "XOF",
		TransferType: "CROSS_WALLET",
		Percentage:   decimal.RequireFromString("0.005"),
		FixedAmount:  &fixed,
		Description:  "Standard pricing",
	}
}

func TestCreateRule(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and invalidates cache around the write", func(t *testing.T) {
		svc, repo, invalidator := newTestService(t)
		repo.On("Create", ctx, mock.AnythingOfType("*models.CommissionRule")).Return(nil)
		invalidator.On("Invalidate", ctx, models.CurrencyXOF, models.TransferCrossWallet).Return(nil).Twice()

		createdBy := uuid.New()
		rule, err := svc.CreateRule(ctx, validCreateRequest(), &createdBy)
		require.NoError(t, err)
		assert.True(t, rule.IsActive)
		assert.Equal(t, models.KYCAny, rule.KYCLevel)
		assert.False(t, rule.EffectiveFrom.IsZero())
		require.NotNil(t, rule.CreatedBy)
		assert.Equal(t, createdBy, *rule.CreatedBy)
		invalidator.AssertExpectations(t)
	})

	t.Run("unknown currency", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := validCreateRequest()
		req.Currency = "EUR"

		_, err := svc.CreateRule(ctx, req, nil)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("percentage above one", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := validCreateRequest()
		req.Percentage = decimal.RequireFromString("1.5")

		_, err := svc.CreateRule(ctx, req, nil)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("max fee below min fee", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := validCreateRequest()
		minFee, maxFee := int64(500), int64(100)
		req.MinAmount = &minFee
		req.MaxAmount = &maxFee

		_, err := svc.CreateRule(ctx, req, nil)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("inverted transaction bounds", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := validCreateRequest()
		minTx, maxTx := int64(10000), int64(5000)
		req.MinTransaction = &minTx
		req.MaxTransaction = &maxTx

		_, err := svc.CreateRule(ctx, req, nil)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("effective_to before effective_from", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		req := validCreateRequest()
		from := time.Now()
		to := from.Add(-time.Hour)
		req.EffectiveFrom = &from
		req.EffectiveTo = &to

		_, err := svc.CreateRule(ctx, req, nil)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("invalid rule never reaches the store", func(t *testing.T) {
		svc, repo, invalidator := newTestService(t)
		req := validCreateRequest()
		req.Percentage = decimal.RequireFromString("-0.1")

		_, err := svc.CreateRule(ctx, req, nil)
		assert.ErrorIs(t, err, ErrInvalidRule)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateRule(t *testing.T) {
	ctx := context.Background()

	storedRule := func() *models.CommissionRule {
		return &models.CommissionRule{
			RuleID:        uuid.New(),
			Currency:      models.CurrencyXOF,
			TransferType:  models.TransferCrossWallet,
			KYCLevel:      models.KYCAny,
			Percentage:    decimal.RequireFromString("0.005"),
			FixedAmount:   100,
			IsActive:      true,
			EffectiveFrom: time.Now().Add(-time.Hour),
		}
	}

	t.Run("applies partial edits and invalidates cache", func(t *testing.T) {
		svc, repo, invalidator := newTestService(t)
		rule := storedRule()
		repo.On("FindByID", ctx, rule.RuleID).Return(rule, nil)
		repo.On("Save", ctx, rule).Return(nil)
		invalidator.On("Invalidate", ctx, models.CurrencyXOF, models.TransferCrossWallet).Return(nil).Twice()

		newPct := decimal.RequireFromString("0.01")
		updated, err := svc.UpdateRule(ctx, rule.RuleID, UpdateRuleRequest{Percentage: &newPct})
		require.NoError(t, err)
		assert.True(t, updated.Percentage.Equal(newPct))
		assert.Equal(t, int64(100), updated.FixedAmount) // untouched field survives
		invalidator.AssertExpectations(t)
	})

	t.Run("unknown rule", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		ruleID := uuid.New()
		repo.On("FindByID", ctx, ruleID).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.UpdateRule(ctx, ruleID, UpdateRuleRequest{})
		assert.ErrorIs(t, err, ErrRuleNotFound)
	})

	t.Run("edit producing invalid rule is rejected", func(t *testing.T) {
		svc, repo, invalidator := newTestService(t)
		rule := storedRule()
		repo.On("FindByID", ctx, rule.RuleID).Return(rule, nil)

		badPct := decimal.RequireFromString("2")
		_, err := svc.UpdateRule(ctx, rule.RuleID, UpdateRuleRequest{Percentage: &badPct})
		assert.ErrorIs(t, err, ErrInvalidRule)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestActivation(t *testing.T) {
	ctx := context.Background()

	storedRule := func(active bool) *models.CommissionRule {
		return &models.CommissionRule{
			RuleID:        uuid.New(),
			Currency:      models.CurrencyXAF,
			TransferType:  models.TransferInternational,
			KYCLevel:      models.KYCAny,
			Percentage:    decimal.RequireFromString("0.01"),
			IsActive:      active,
			EffectiveFrom: time.Now().Add(-time.Hour),
		}
	}

	t.Run("deactivation persists and invalidates", func(t *testing.T) {
		svc, repo, invalidator := newTestService(t)
		rule := storedRule(true)
		repo.On("FindByID", ctx, rule.RuleID).Return(rule, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(r *models.CommissionRule) bool {
			return !r.IsActive
		})).Return(nil)
		invalidator.On("Invalidate", ctx, models.CurrencyXAF, models.TransferInternational).Return(nil).Twice()

		require.NoError(t, svc.DeactivateRule(ctx, rule.RuleID))
		repo.AssertExpectations(t)
		invalidator.AssertExpectations(t)
	})

	t.Run("activating an active rule is a no-op", func(t *testing.T) {
		svc, repo, invalidator := newTestService(t)
		rule := storedRule(true)
		repo.On("FindByID", ctx, rule.RuleID).Return(rule, nil)

		require.NoError(t, svc.ActivateRule(ctx, rule.RuleID))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache invalidation failure does not block the change", func(t *testing.T) {
		svc, repo, invalidator := newTestService(t)
		rule := storedRule(false)
		repo.On("FindByID", ctx, rule.RuleID).Return(rule, nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)
		invalidator.On("Invalidate", ctx, models.CurrencyXAF, models.TransferInternational).Return(assert.AnError)

		require.NoError(t, svc.ActivateRule(ctx, rule.RuleID))
	})
}

func TestListRules(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by currency when given", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.On("FindByCurrency", ctx, models.CurrencyGNF, 20, 0).
			Return([]models.CommissionRule{}, int64(0), nil)

		_, _, err := svc.ListRules(ctx, "GNF", 20, 0)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("lists all without filter", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.On("FindAll", ctx, 20, 0).Return([]models.CommissionRule{}, int64(0), nil)

		_, _, err := svc.ListRules(ctx, "", 20, 0)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown currency filter", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, _, err := svc.ListRules(ctx, "USD", 20, 0)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})
}
