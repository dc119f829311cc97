package configs

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger: JSON in production, text in development, level from LOG_LEVEL.
func NewLogger(appEnv, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if strings.EqualFold(appEnv, EnvProduction) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
