package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
)

// RuleCache caches the active-rule list per (currency, transferType) scope.
// It is an optimization only: every mutation path must call Invalidate or
// InvalidateAll, because stale pricing is a correctness defect, not a
// staleness tolerance. The TTL is a backstop, not the invalidation strategy.
type RuleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRuleCache(client *redis.Client, ttl time.Duration) *RuleCache {
	return &RuleCache{
		client: client,
		ttl:    ttl,
	}
}

func ruleKey(currency models.Currency, transferType models.TransferType) string {
	return fmt.Sprintf("commission:rules:%s:%s", currency, transferType)
}

// GetRules returns the cached rule list for the scope. The second return
// value is false on a cache miss.
func (c *RuleCache) GetRules(ctx context.Context, currency models.Currency, transferType models.TransferType) ([]models.CommissionRule, bool, error) {
	data, err := c.client.Get(ctx, ruleKey(currency, transferType)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached rules: %w", err)
	}

	var rules []models.CommissionRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached rules: %w", err)
	}
	return rules, true, nil
}

// SetRules stores the rule list for the scope with the configured TTL.
func (c *RuleCache) SetRules(ctx context.Context, currency models.Currency, transferType models.TransferType, rules []models.CommissionRule) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	return c.client.Set(ctx, ruleKey(currency, transferType), data, c.ttl).Err()
}

// Invalidate drops the cached rule list for a single scope.
func (c *RuleCache) Invalidate(ctx context.Context, currency models.Currency, transferType models.TransferType) error {
	return c.client.Del(ctx, ruleKey(currency, transferType)).Err()
}

// InvalidateAll drops every cached rule list.
func (c *RuleCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "commission:rules:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the underlying Redis connection.
func (c *RuleCache) Close() error {
	return c.client.Close()
}
