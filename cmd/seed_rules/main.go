// Package main seeds a baseline set of commission rules for local
// development. Existing rules for a scope are left untouched.
package main

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if repositories.RuleCache != nil {
			_ = repositories.RuleCache.Close()
		}
	}()

	ctx := context.Background()
	repo := repositories.NewRuleRepository(repositories.DB)

	maxCross := int64(1500)
	seeds := []models.CommissionRule{
		{
			Currency:     models.CurrencyXOF,
			TransferType: models.TransferCrossWallet,
			Percentage:   decimal.RequireFromString("0.005"),
			FixedAmount:  100,
			MinAmount:    50,
			MaxAmount:    &maxCross,
			Priority:     10,
			Description:  "Standard cross-wallet pricing",
		},
		{
			Currency:     models.CurrencyXOF,
			TransferType: models.TransferInternational,
			Percentage:   decimal.RequireFromString("0.01"),
			FixedAmount:  250,
			MinAmount:    100,
			Priority:     10,
			Description:  "International transfer pricing",
		},
	}

	for _, seed := range seeds {
		existing, err := repo.FindActiveByScope(ctx, seed.Currency, seed.TransferType)
		if err != nil {
			log.Fatalf("failed to check existing rules: %v", err)
		}
		if len(existing) > 0 {
			log.Printf("rules already exist for %s/%s, skipping", seed.Currency, seed.TransferType)
			continue
		}

		rule := seed
		rule.IsActive = true
		rule.EffectiveFrom = time.Now()
		if err := repo.Create(ctx, &rule); err != nil {
			log.Fatalf("failed to seed rule for %s/%s: %v", seed.Currency, seed.TransferType, err)
		}
		log.Printf("seeded rule %s for %s/%s", rule.RuleID, seed.Currency, seed.TransferType)
	}

	if err := repositories.RuleCache.InvalidateAll(ctx); err != nil {
		log.Printf("failed to invalidate rule cache: %v", err)
	}
}
