package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/m2m2d0u/commisions-ms-payments/internal/services/revenue"
	"github.com/m2m2d0u/commisions-ms-payments/internal/utils/response"
)

// RevenueHandler exposes the revenue report endpoint.
type RevenueHandler struct {
	service revenue.Service
}

func NewRevenueHandler(service revenue.Service) *RevenueHandler {
	return &RevenueHandler{service: service}
}

// Report returns the commission revenue rollup for a date range.
func (h *RevenueHandler) Report(c *fiber.Ctx) error {
	startDate, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		return response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		return response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
	}

	req := revenue.ReportRequest{
		Currency:  c.Query("currency"),
		StartDate: startDate,
		// Date ranges are inclusive of the end day.
		EndDate: endDate.Add(24*time.Hour - time.Nanosecond),
	}
	if providerParam := c.Query("provider_id"); providerParam != "" {
		providerID, err := uuid.Parse(providerParam)
		if err != nil {
			return response.BadRequest(c, "Invalid provider id")
		}
		req.ProviderID = &providerID
	}

	report, err := h.service.Report(c.Context(), req)
	if err != nil {
		if errors.Is(err, revenue.ErrInvalidPeriod) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "Failed to build revenue report")
	}
	return response.Success(c, "Revenue report", report)
}
