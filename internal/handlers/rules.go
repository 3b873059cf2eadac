package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/services/rules"
	"github.com/m2m2d0u/commisions-ms-payments/internal/utils/pagination"
	"github.com/m2m2d0u/commisions-ms-payments/internal/utils/response"
)

// RuleHandler exposes the commission rule administration API.
type RuleHandler struct {
	service rules.Service
}

func NewRuleHandler(service rules.Service) *RuleHandler {
	return &RuleHandler{service: service}
}

// Create registers a new commission rule.
func (h *RuleHandler) Create(c *fiber.Ctx) error {
	var req rules.CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var createdBy *uuid.UUID
	if claims, ok := c.Locals("claims").(*models.AdminClaims); ok {
		createdBy = &claims.UserID
	}

	rule, err := h.service.CreateRule(c.Context(), req, createdBy)
	if err != nil {
		return ruleError(c, err)
	}
	return response.Created(c, "Rule created", rule)
}

// Update edits an existing rule.
func (h *RuleHandler) Update(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("ruleId"))
	if err != nil {
		return response.BadRequest(c, "Invalid rule id")
	}

	var req rules.UpdateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rule, err := h.service.UpdateRule(c.Context(), ruleID, req)
	if err != nil {
		return ruleError(c, err)
	}
	return response.Success(c, "Rule updated", rule)
}

// Get returns one rule by id.
func (h *RuleHandler) Get(c *fiber.Ctx) error {
	ruleID, err := uuid.Parse(c.Params("ruleId"))
	if err != nil {
		return response.BadRequest(c, "Invalid rule id")
	}

	rule, err := h.service.GetRule(c.Context(), ruleID)
	if err != nil {
		return ruleError(c, err)
	}
	return response.Success(c, "Rule found", rule)
}

// List returns rules, optionally filtered by currency, paginated.
func (h *RuleHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	items, total, err := h.service.ListRules(c.Context(), c.Query("currency"), p.Limit, p.Offset)
	if err != nil {
		return ruleError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, items))
}

// Activate re-enables a rule.
func (h *RuleHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// Deactivate disables a rule without deleting it.
func (h *RuleHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *RuleHandler) setActive(c *fiber.Ctx, active bool) error {
	ruleID, err := uuid.Parse(c.Params("ruleId"))
	if err != nil {
		return response.BadRequest(c, "Invalid rule id")
	}

	if active {
		err = h.service.ActivateRule(c.Context(), ruleID)
	} else {
		err = h.service.DeactivateRule(c.Context(), ruleID)
	}
	if err != nil {
		return ruleError(c, err)
	}

	message := "Rule deactivated"
	if active {
		message = "Rule activated"
	}
	return response.Success(c, message, nil)
}

func ruleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, rules.ErrRuleNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, rules.ErrInvalidRule):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, "Internal error")
	}
}
