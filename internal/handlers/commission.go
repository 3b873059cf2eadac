// Package handlers contains the HTTP handlers for the commission service.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/services/commission"
	"github.com/m2m2d0u/commisions-ms-payments/internal/utils/response"
)

// CommissionHandler exposes fee calculation and ledger operations.
type CommissionHandler struct {
	service commission.Service
}

func NewCommissionHandler(service commission.Service) *CommissionHandler {
	return &CommissionHandler{service: service}
}

// CalculateFee prices a transaction against an explicit rule.
func (h *CommissionHandler) CalculateFee(c *fiber.Ctx) error {
	var input struct {
		RuleID   string `json:"rule_id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ruleID, err := uuid.Parse(input.RuleID)
	if err != nil {
		return response.BadRequest(c, "Invalid rule id")
	}
	if input.Amount < 0 {
		return response.BadRequest(c, "Amount must not be negative")
	}
	currency, err := models.ParseCurrency(input.Currency)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.service.CalculateFee(c.Context(), commission.CalculateFeeRequest{
		RuleID:   ruleID,
		Amount:   input.Amount,
		Currency: currency,
	})
	if err != nil {
		return commissionError(c, err)
	}
	return response.Success(c, "Fee calculated", result)
}

// QuoteFee prices a transaction by attributes, falling back to the default
// tariff when no rule matches.
func (h *CommissionHandler) QuoteFee(c *fiber.Ctx) error {
	var input struct {
		Amount       int64  `json:"amount"`
		Currency     string `json:"currency"`
		TransferType string `json:"transfer_type"`
		KYCLevel     string `json:"kyc_level"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Amount < 0 {
		return response.BadRequest(c, "Amount must not be negative")
	}
	currency, err := models.ParseCurrency(input.Currency)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	transferType, err := models.ParseTransferType(input.TransferType)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	kycLevel := models.KYCAny
	if input.KYCLevel != "" {
		kycLevel, err = models.ParseKYCLevel(input.KYCLevel)
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
	}

	result, err := h.service.QuoteFee(c.Context(), commission.QuoteFeeRequest{
		Amount:       input.Amount,
		Currency:     currency,
		TransferType: transferType,
		KYCLevel:     kycLevel,
	})
	if err != nil {
		return commissionError(c, err)
	}
	return response.Success(c, "Fee quoted", result)
}

// GetByTransaction returns the ledger entry for a priced transaction.
func (h *CommissionHandler) GetByTransaction(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("transactionId"))
	if err != nil {
		return response.BadRequest(c, "Invalid transaction id")
	}

	entry, err := h.service.GetByTransactionID(c.Context(), transactionID)
	if err != nil {
		return commissionError(c, err)
	}
	return response.Success(c, "Commission found", entry)
}

// Refund transitions the commission for a transaction to REFUNDED. Missing
// entries and repeated refunds are no-ops.
func (h *CommissionHandler) Refund(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("transactionId"))
	if err != nil {
		return response.BadRequest(c, "Invalid transaction id")
	}

	if err := h.service.RefundCommission(c.Context(), transactionID); err != nil {
		return commissionError(c, err)
	}
	return response.Success(c, "Commission refunded", nil)
}

// Settle flags a commission as settled with the upstream provider.
func (h *CommissionHandler) Settle(c *fiber.Ctx) error {
	commissionID, err := uuid.Parse(c.Params("commissionId"))
	if err != nil {
		return response.BadRequest(c, "Invalid commission id")
	}

	entry, err := h.service.SettleCommission(c.Context(), commissionID)
	if err != nil {
		return commissionError(c, err)
	}
	return response.Success(c, "Commission settled", entry)
}

// ListUnsettled returns commissions awaiting settlement for a provider.
func (h *CommissionHandler) ListUnsettled(c *fiber.Ctx) error {
	providerID, err := uuid.Parse(c.Query("provider_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid provider id")
	}

	entries, err := h.service.ListUnsettled(c.Context(), providerID)
	if err != nil {
		return response.ServerError(c, "Failed to list unsettled commissions")
	}
	return response.Success(c, "Unsettled commissions", entries)
}

func commissionError(c *fiber.Ctx, err error) error {
	var boundErr *commission.AmountBoundError
	switch {
	case errors.Is(err, commission.ErrRuleNotFound),
		errors.Is(err, commission.ErrCommissionNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, commission.ErrRuleNotActive),
		errors.Is(err, commission.ErrRuleNotEffective):
		return response.BadRequest(c, err.Error())
	case errors.As(err, &boundErr):
		return response.BadRequest(c, boundErr.Error())
	case errors.Is(err, commission.ErrDuplicateCommission):
		return response.Conflict(c, err.Error())
	default:
		return response.ServerError(c, "Internal error")
	}
}
