// Package commission implements the fee pricing engine and the commission
// ledger lifecycle.
package commission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/events"
	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
)

// Service prices transactions and maintains the commission ledger.
type Service interface {
	// CalculateFee prices against an explicit rule id. Inactive, ineffective
	// or out-of-bounds rules are distinct errors, never a silent fallback.
	CalculateFee(ctx context.Context, req CalculateFeeRequest) (*FeeCalculation, error)
	// QuoteFee prices by transaction attributes, selecting the best matching
	// rule or falling back to the jurisdiction default tariff.
	QuoteFee(ctx context.Context, req QuoteFeeRequest) (*FeeCalculation, error)
	RecordCommission(ctx context.Context, req RecordCommissionRequest) (*models.CommissionTransaction, error)
	RefundCommission(ctx context.Context, transactionID uuid.UUID) error
	SettleCommission(ctx context.Context, commissionID uuid.UUID) (*models.CommissionTransaction, error)
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*models.CommissionTransaction, error)
	ListUnsettled(ctx context.Context, providerID uuid.UUID) ([]models.CommissionTransaction, error)
}

type service struct {
	rules     repositories.RuleRepository
	ledger    repositories.CommissionRepository
	cache     RuleCache
	tariff    config.Tariff
	publisher events.Publisher
	log       *logrus.Logger
}

// NewService wires the commission service.
func NewService(
	rules repositories.RuleRepository,
	ledger repositories.CommissionRepository,
	cache RuleCache,
	tariff config.Tariff,
	publisher events.Publisher,
	log *logrus.Logger,
) Service {
	return &service{
		rules:     rules,
		ledger:    ledger,
		cache:     cache,
		tariff:    tariff,
		publisher: publisher,
		log:       log,
	}
}

func (s *service) CalculateFee(ctx context.Context, req CalculateFeeRequest) (*FeeCalculation, error) {
	rule, err := s.rules.FindByID(ctx, req.RuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, req.RuleID)
		}
		return nil, fmt.Errorf("failed to load rule %s: %w", req.RuleID, err)
	}

	if !rule.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotActive, req.RuleID)
	}
	if !rule.IsEffectiveAt(time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotEffective, req.RuleID)
	}
	if rule.MinTransaction != nil && req.Amount < *rule.MinTransaction {
		return nil, &AmountBoundError{Bound: "minimum", Limit: *rule.MinTransaction, Currency: rule.Currency}
	}
	if rule.MaxTransaction != nil && req.Amount > *rule.MaxTransaction {
		return nil, &AmountBoundError{Bound: "maximum", Limit: *rule.MaxTransaction, Currency: rule.Currency}
	}

	fee := ComputeRuleFee(req.Amount, rule)

	ruleID := rule.RuleID
	return &FeeCalculation{
		Amount:   req.Amount,
		Currency: rule.Currency,
		Fee:      fee,
		RuleID:   &ruleID,
		Basis:    ruleBasis(req.Amount, fee, rule),
	}, nil
}

func (s *service) QuoteFee(ctx context.Context, req QuoteFeeRequest) (*FeeCalculation, error) {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	rules, err := s.scopedRules(ctx, req.Currency, req.TransferType)
	if err != nil {
		return nil, err
	}

	rule := SelectRule(rules, req.Amount, req.KYCLevel, asOf)
	if rule == nil {
		fee := ComputeDefaultFee(req.Amount, s.tariff)
		return &FeeCalculation{
			Amount:   req.Amount,
			Currency: req.Currency,
			Fee:      fee,
			Basis:    tariffBasis(req.Amount, fee, s.tariff),
		}, nil
	}

	fee := ComputeRuleFee(req.Amount, rule)
	ruleID := rule.RuleID
	return &FeeCalculation{
		Amount:   req.Amount,
		Currency: req.Currency,
		Fee:      fee,
		RuleID:   &ruleID,
		Basis:    ruleBasis(req.Amount, fee, rule),
	}, nil
}

// scopedRules reads the active-rule list through the cache. Cache failures
// degrade to a direct store read; the cache is never the only place a rule
// exists.
func (s *service) scopedRules(ctx context.Context, currency models.Currency, transferType models.TransferType) ([]models.CommissionRule, error) {
	cached, found, err := s.cache.GetRules(ctx, currency, transferType)
	if err != nil {
		s.log.WithError(err).Warn("rule cache read failed, falling back to store")
	} else if found {
		return cached, nil
	}

	rules, err := s.rules.FindActiveByScope(ctx, currency, transferType)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules for %s/%s: %w", currency, transferType, err)
	}

	if err := s.cache.SetRules(ctx, currency, transferType, rules); err != nil {
		s.log.WithError(err).Warn("failed to populate rule cache")
	}
	return rules, nil
}

func (s *service) RecordCommission(ctx context.Context, req RecordCommissionRequest) (*models.CommissionTransaction, error) {
	commission := &models.CommissionTransaction{
		TransactionID:    req.TransactionID,
		RuleID:           req.RuleID,
		ProviderID:       req.ProviderID,
		Currency:         req.Currency,
		Amount:           req.Amount,
		CalculationBasis: req.CalculationBasis,
		Status:           models.CommissionCompleted,
		Settled:          false,
	}

	if err := s.ledger.Create(ctx, commission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCommission, req.TransactionID)
		}
		return nil, fmt.Errorf("failed to record commission: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"commission_id":  commission.CommissionID,
		"transaction_id": commission.TransactionID,
		"amount":         commission.Amount,
		"currency":       commission.Currency,
	}).Info("commission recorded")

	s.publisher.CommissionCollected(ctx, commission)
	return commission, nil
}

func (s *service) RefundCommission(ctx context.Context, transactionID uuid.UUID) error {
	commission, err := s.ledger.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The reversal event may race ahead of commission recording.
			s.log.WithField("transaction_id", transactionID).
				Warn("refund requested for unknown transaction, skipping")
			return nil
		}
		return fmt.Errorf("failed to load commission for refund: %w", err)
	}

	changed, err := s.ledger.MarkRefunded(ctx, commission.CommissionID)
	if err != nil {
		return fmt.Errorf("failed to refund commission %s: %w", commission.CommissionID, err)
	}
	if !changed {
		// Already refunded; retried deliveries are a no-op.
		return nil
	}

	commission.Status = models.CommissionRefunded
	s.log.WithFields(logrus.Fields{
		"commission_id":  commission.CommissionID,
		"transaction_id": transactionID,
	}).Info("commission refunded")

	s.publisher.CommissionRefunded(ctx, commission)
	return nil
}

func (s *service) SettleCommission(ctx context.Context, commissionID uuid.UUID) (*models.CommissionTransaction, error) {
	commission, err := s.ledger.FindByID(ctx, commissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCommissionNotFound, commissionID)
		}
		return nil, fmt.Errorf("failed to load commission for settlement: %w", err)
	}

	now := time.Now().UTC()
	changed, err := s.ledger.MarkSettled(ctx, commissionID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to settle commission %s: %w", commissionID, err)
	}
	if !changed {
		return commission, nil
	}

	commission.Settled = true
	commission.SettlementDate = &now
	s.log.WithField("commission_id", commissionID).Info("commission settled")

	s.publisher.CommissionSettled(ctx, commission)
	return commission, nil
}

func (s *service) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*models.CommissionTransaction, error) {
	commission, err := s.ledger.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrCommissionNotFound, transactionID)
		}
		return nil, err
	}
	return commission, nil
}

func (s *service) ListUnsettled(ctx context.Context, providerID uuid.UUID) ([]models.CommissionTransaction, error) {
	return s.ledger.FindUnsettledByProvider(ctx, providerID)
}

func ruleBasis(amount, fee int64, rule *models.CommissionRule) models.JSON {
	basis := models.JSON{
		"rule_id":          rule.RuleID.String(),
		"transfer_type":    string(rule.TransferType),
		"percentage":       rule.Percentage.String(),
		"fixed_amount":     rule.FixedAmount,
		"min_amount":       rule.MinAmount,
		"priority":         rule.Priority,
		"kyc_level":        string(rule.KYCLevel),
		"requested_amount": amount,
		"final_amount":     fee,
	}
	if rule.MaxAmount != nil {
		basis["max_amount"] = *rule.MaxAmount
	}
	if rule.Description != "" {
		basis["rule_description"] = rule.Description
	}
	return basis
}

func tariffBasis(amount, fee int64, tariff config.Tariff) models.JSON {
	return models.JSON{
		"tariff":           "default",
		"free_threshold":   tariff.FreeThreshold,
		"fixed_fee":        tariff.FixedFee,
		"percentage":       tariff.Percentage.String(),
		"max_fee":          tariff.MaxFee,
		"requested_amount": amount,
		"final_amount":     fee,
	}
}
