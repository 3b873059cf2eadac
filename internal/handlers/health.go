package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
)

// HealthCheck reports service liveness and database reachability.
func HealthCheck(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}

	sqlDB, err := repositories.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}

	return c.JSON(status)
}
