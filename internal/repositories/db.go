// Package repositories provides the data access layer for commission rules
// and the commission ledger.
package repositories

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
	"github.com/m2m2d0u/commisions-ms-payments/internal/models"
	"github.com/m2m2d0u/commisions-ms-payments/internal/repositories/cache"
)

// DB is the global database instance used across the application.
var DB *gorm.DB

// RuleCache is the global read-through cache for active commission rules.
var RuleCache *cache.RuleCache

// InitDB initializes the PostgreSQL connection, runs migrations and sets up
// the Redis rule cache.
func InitDB() error {
	dsn := "host=" + config.GetEnv("DB_HOST", "localhost") +
		" user=" + config.GetEnv("DB_USER", "postgres") +
		" password=" + config.GetEnv("DB_PASSWORD", "postgres") +
		" dbname=" + config.GetEnv("DB_NAME", "commission") +
		" port=" + config.GetEnv("DB_PORT", "5432") +
		" sslmode=" + config.GetEnv("DB_SSLMODE", "disable")

	logLevel := logger.Warn
	if !config.IsProduction() {
		logLevel = logger.Info
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // map unique violations to gorm.ErrDuplicatedKey
	})
	if err != nil {
		return err
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(config.GetIntEnv("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetMaxOpenConns(config.GetIntEnv("DB_MAX_OPEN_CONNS", 100))
	sqlDB.SetConnMaxLifetime(config.GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour))
	sqlDB.SetConnMaxIdleTime(config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute))

	if err := DB.AutoMigrate(
		&models.CommissionRule{},
		&models.CommissionTransaction{},
	); err != nil {
		return err
	}

	redisCfg := &cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	}
	redisClient, err := cache.NewRedisClient(redisCfg)
	if err != nil {
		return err
	}
	RuleCache = cache.NewRuleCache(redisClient, config.GetDurationEnv("RULE_CACHE_TTL", time.Hour))

	log.Println("database and rule cache initialized")
	return nil
}
