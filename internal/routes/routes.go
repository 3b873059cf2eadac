// Package routes defines the API routing configuration.
package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/events"
	"github.com/m2m2d0u/commisions-ms-payments/internal/handlers"
	"github.com/m2m2d0u/commisions-ms-payments/internal/middleware"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
	"github.com/m2m2d0u/commisions-ms-payments/internal/services/commission"
	"github.com/m2m2d0u/commisions-ms-payments/internal/services/revenue"
	"github.com/m2m2d0u/commisions-ms-payments/internal/services/rules"
)

// SetupRoutes wires repositories, services and handlers onto the Fiber app.
// It returns the event publisher so main can close it on shutdown.
func SetupRoutes(app *fiber.App, log *logrus.Logger) events.Publisher {
	ruleRepo := repositories.NewRuleRepository(repositories.DB)
	ledgerRepo := repositories.NewCommissionRepository(repositories.DB)

	var publisher events.Publisher = events.NoopPublisher{}
	if brokers := config.GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		publisher = events.NewKafkaPublisher(
			strings.Split(brokers, ","),
			config.GetEnv("KAFKA_COMMISSION_TOPIC", "commission-events"),
			log,
		)
	} else {
		log.Warn("KAFKA_BROKERS not set, commission events disabled")
	}

	tariff := config.LoadTariff()
	commissionService := commission.NewService(
		ruleRepo,
		ledgerRepo,
		repositories.RuleCache,
		tariff,
		publisher,
		log,
	)
	ruleService := rules.NewService(ruleRepo, repositories.RuleCache, log)
	revenueService := revenue.NewService(ledgerRepo)

	commissionHandler := handlers.NewCommissionHandler(commissionService)
	ruleHandler := handlers.NewRuleHandler(ruleService)
	revenueHandler := handlers.NewRevenueHandler(revenueService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api/v1/commissions", middleware.Auth)

	// Fee pricing
	api.Post("/calculate", commissionHandler.CalculateFee)
	api.Post("/quote", commissionHandler.QuoteFee)

	// Ledger
	api.Get("/unsettled", commissionHandler.ListUnsettled)
	api.Get("/transaction/:transactionId", commissionHandler.GetByTransaction)
	api.Post("/transaction/:transactionId/refund", middleware.RequireAdmin, commissionHandler.Refund)
	api.Post("/:commissionId/settle", middleware.RequireAdmin, commissionHandler.Settle)

	// Revenue reporting
	api.Get("/revenue", revenueHandler.Report)

	// Rule administration; mutations require the admin role.
	ruleRoutes := api.Group("/rules")
	ruleRoutes.Get("/", ruleHandler.List)
	ruleRoutes.Get("/:ruleId", ruleHandler.Get)
	ruleRoutes.Post("/", middleware.RequireAdmin, ruleHandler.Create)
	ruleRoutes.Put("/:ruleId", middleware.RequireAdmin, ruleHandler.Update)
	ruleRoutes.Post("/:ruleId/activate", middleware.RequireAdmin, ruleHandler.Activate)
	ruleRoutes.Post("/:ruleId/deactivate", middleware.RequireAdmin, ruleHandler.Deactivate)

	return publisher
}
