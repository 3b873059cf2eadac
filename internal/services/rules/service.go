// Package rules manages the commission rule store: creation, edits and
// activation state, with cache invalidation on every mutation.
package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
)

// Service errors
var (
	ErrRuleNotFound = errors.New("commission rule not found")
	ErrInvalidRule  = errors.New("invalid commission rule")
)

// Service administers commission rules.
type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest, createdBy *uuid.UUID) (*models.CommissionRule, error)
	UpdateRule(ctx context.Context, ruleID uuid.UUID, req UpdateRuleRequest) (*models.CommissionRule, error)
	GetRule(ctx context.Context, ruleID uuid.UUID) (*models.CommissionRule, error)
	ListRules(ctx context.Context, currency string, limit, offset int) ([]models.CommissionRule, int64, error)
	ActivateRule(ctx context.Context, ruleID uuid.UUID) error
	DeactivateRule(ctx context.Context, ruleID uuid.UUID) error
}

type service struct {
	repo  repositories.RuleRepository
	cache RuleCacheInvalidator
	log   *logrus.Logger
}

// NewService wires the rule administration service.
func NewService(repo repositories.RuleRepository, cache RuleCacheInvalidator, log *logrus.Logger) Service {
	return &service{repo: repo, cache: cache, log: log}
}

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest, createdBy *uuid.UUID) (*models.CommissionRule, error) {
	currency, err := models.ParseCurrency(req.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	transferType, err := models.ParseTransferType(req.TransferType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	kycLevel := models.KYCAny
	if req.KYCLevel != "" {
		kycLevel, err = models.ParseKYCLevel(req.KYCLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
	}

	rule := &models.CommissionRule{
		Currency:       currency,
		TransferType:   transferType,
		MinTransaction: req.MinTransaction,
		MaxTransaction: req.MaxTransaction,
		KYCLevel:       kycLevel,
		Percentage:     req.Percentage,
		IsActive:       true,
		EffectiveFrom:  time.Now(),
		EffectiveTo:    req.EffectiveTo,
		Description:    req.Description,
		Notes:          req.Notes,
		CreatedBy:      createdBy,
	}
	if req.FixedAmount != nil {
		rule.FixedAmount = *req.FixedAmount
	}
	if req.MinAmount != nil {
		rule.MinAmount = *req.MinAmount
	}
	rule.MaxAmount = req.MaxAmount
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.EffectiveFrom != nil {
		rule.EffectiveFrom = *req.EffectiveFrom
	}

	if err := validateRule(rule); err != nil {
		return nil, err
	}

	// Invalidation brackets the write so no reader keeps serving stale
	// pricing once the change is confirmed.
	s.invalidate(ctx, currency, transferType)
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}
	s.invalidate(ctx, currency, transferType)

	s.log.WithFields(logrus.Fields{
		"rule_id":       rule.RuleID,
		"currency":      currency,
		"transfer_type": transferType,
	}).Info("commission rule created")
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, ruleID uuid.UUID, req UpdateRuleRequest) (*models.CommissionRule, error) {
	rule, err := s.loadRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if req.MinTransaction != nil {
		rule.MinTransaction = req.MinTransaction
	}
	if req.MaxTransaction != nil {
		rule.MaxTransaction = req.MaxTransaction
	}
	if req.KYCLevel != nil {
		kycLevel, err := models.ParseKYCLevel(*req.KYCLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		rule.KYCLevel = kycLevel
	}
	if req.Percentage != nil {
		rule.Percentage = *req.Percentage
	}
	if req.FixedAmount != nil {
		rule.FixedAmount = *req.FixedAmount
	}
	if req.MinAmount != nil {
		rule.MinAmount = *req.MinAmount
	}
	if req.MaxAmount != nil {
		rule.MaxAmount = req.MaxAmount
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.EffectiveTo != nil {
		rule.EffectiveTo = req.EffectiveTo
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.Notes != nil {
		rule.Notes = *req.Notes
	}

	if err := validateRule(rule); err != nil {
		return nil, err
	}

	s.invalidate(ctx, rule.Currency, rule.TransferType)
	if err := s.repo.Save(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	s.invalidate(ctx, rule.Currency, rule.TransferType)

	s.log.WithField("rule_id", ruleID).Info("commission rule updated")
	return rule, nil
}

func (s *service) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.CommissionRule, error) {
	return s.loadRule(ctx, ruleID)
}

func (s *service) ListRules(ctx context.Context, currency string, limit, offset int) ([]models.CommissionRule, int64, error) {
	if currency == "" {
		return s.repo.FindAll(ctx, limit, offset)
	}

	parsed, err := models.ParseCurrency(currency)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return s.repo.FindByCurrency(ctx, parsed, limit, offset)
}

func (s *service) ActivateRule(ctx context.Context, ruleID uuid.UUID) error {
	return s.setActive(ctx, ruleID, true)
}

func (s *service) DeactivateRule(ctx context.Context, ruleID uuid.UUID) error {
	return s.setActive(ctx, ruleID, false)
}

func (s *service) setActive(ctx context.Context, ruleID uuid.UUID, active bool) error {
	rule, err := s.loadRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if rule.IsActive == active {
		return nil
	}

	rule.IsActive = active
	s.invalidate(ctx, rule.Currency, rule.TransferType)
	if err := s.repo.Save(ctx, rule); err != nil {
		return fmt.Errorf("failed to change rule activation: %w", err)
	}
	s.invalidate(ctx, rule.Currency, rule.TransferType)

	s.log.WithFields(logrus.Fields{
		"rule_id": ruleID,
		"active":  active,
	}).Info("commission rule activation changed")
	return nil
}

func (s *service) loadRule(ctx context.Context, ruleID uuid.UUID) (*models.CommissionRule, error) {
	rule, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
		}
		return nil, err
	}
	return rule, nil
}

func (s *service) invalidate(ctx context.Context, currency models.Currency, transferType models.TransferType) {
	if err := s.cache.Invalidate(ctx, currency, transferType); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"currency":      currency,
			"transfer_type": transferType,
		}).Error("failed to invalidate rule cache")
	}
}

// validateRule rejects inconsistent rule definitions before anything is
// persisted.
func validateRule(rule *models.CommissionRule) error {
	if rule.Percentage.LessThan(decimal.Zero) || rule.Percentage.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: percentage must be between 0 and 1", ErrInvalidRule)
	}
	if rule.FixedAmount < 0 {
		return fmt.Errorf("%w: fixed amount must not be negative", ErrInvalidRule)
	}
	if rule.MinAmount < 0 {
		return fmt.Errorf("%w: minimum fee must not be negative", ErrInvalidRule)
	}
	if rule.MaxAmount != nil && *rule.MaxAmount < rule.MinAmount {
		return fmt.Errorf("%w: maximum fee is less than minimum fee", ErrInvalidRule)
	}
	if rule.MinTransaction != nil && rule.MaxTransaction != nil && *rule.MaxTransaction < *rule.MinTransaction {
		return fmt.Errorf("%w: maximum transaction is less than minimum transaction", ErrInvalidRule)
	}
	if rule.EffectiveTo != nil && !rule.EffectiveTo.After(rule.EffectiveFrom) {
		return fmt.Errorf("%w: effective_to must be after effective_from", ErrInvalidRule)
	}
	return nil
}
