// Package revenue produces commission revenue rollups for reporting.
package revenue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
)

var ErrInvalidPeriod = errors.New("invalid report period")

// ReportRequest selects the rollup period and optional filters.
type ReportRequest struct {
	Currency   string
	ProviderID *uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
}

// Report is a revenue rollup over completed commissions.
type Report struct {
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Currency          string    `json:"currency,omitempty"`
	TotalRevenue      int64     `json:"total_revenue"`
	TransactionCount  int64     `json:"transaction_count"`
	AverageCommission int64     `json:"average_commission"`
}

// Service aggregates commission revenue.
type Service interface {
	Report(ctx context.Context, req ReportRequest) (*Report, error)
}

type service struct {
	ledger repositories.CommissionRepository
}

func NewService(ledger repositories.CommissionRepository) Service {
	return &service{ledger: ledger}
}

func (s *service) Report(ctx context.Context, req ReportRequest) (*Report, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidPeriod)
	}

	filter := repositories.RevenueFilter{
		ProviderID: req.ProviderID,
		Start:      req.StartDate,
		End:        req.EndDate,
	}
	if req.Currency != "" {
		currency, err := models.ParseCurrency(req.Currency)
		if err != nil {
			return nil, err
		}
		filter.Currency = &currency
	}

	summary, err := s.ledger.RevenueSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	return &Report{
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Currency:          req.Currency,
		TotalRevenue:      summary.TotalRevenue,
		TransactionCount:  summary.TransactionCount,
		AverageCommission: summary.AverageCommission,
	}, nil
}
