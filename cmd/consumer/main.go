// Package main runs the transaction event consumer that records and refunds
// commissions.
package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/consumer"
	"github.com/m2m2d0u/commisions-ms-payments/internal/events"
	"github.com/m2m2d0u/commisions-ms-payments/internal/logger"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
	"github.com/m2m2d0u/commisions-ms-payments/internal/services/commission"
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

	brokers := strings.Split(config.GetEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	publisher := events.NewKafkaPublisher(
		brokers,
		config.GetEnv("KAFKA_COMMISSION_TOPIC", "commission-events"),
		log,
	)
	defer publisher.Close()

	commissionService := commission.NewService(
		repositories.NewRuleRepository(repositories.DB),
		repositories.NewCommissionRepository(repositories.DB),
		repositories.RuleCache,
		config.LoadTariff(),
		publisher,
		log,
	)

	c := consumer.New(consumer.Config{
		Brokers: brokers,
		Topic:   config.GetEnv("KAFKA_TRANSACTION_TOPIC", "transaction-events"),
		GroupID: config.GetEnv("KAFKA_GROUP_ID", "commission-service"),
	}, commissionService, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Run(ctx); err != nil {
		log.WithError(err).Fatal("consumer stopped")
	}
}
