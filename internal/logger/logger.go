// Package logger configures the application-wide structured logger.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/m2m2d0u/commisions-ms-payments/internal/config"
)

// New builds a logrus logger configured from the environment.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if config.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
