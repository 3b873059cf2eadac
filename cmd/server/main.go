// Package main is the entry point of the commission service HTTP API.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/logger"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
	"github.com/m2m2d0u/commisions-ms-payments/internal/routes"
)

func main() {
	config.LoadEnv()
	log := logger.New()

	if err := repositories.InitDB(); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if repositories.RuleCache != nil {
			_ = repositories.RuleCache.Close()
		}
	}()

	app := fiber.New(fiber.Config{
		AppName: "commission-service",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	publisher := routes.SetupRoutes(app, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("failed to close event publisher")
		}
	}()

	go func() {
		addr := ":" + config.GetEnv("PORT", "8086")
		if err := app.Listen(addr); err != nil {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("failed to shut down cleanly")
	}
}
