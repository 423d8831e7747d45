package logging

import (
	"os"

	"go.uber.org/zap"
)

// Setup builds the process-wide zap logger and installs it as the global,
// so handlers can log through zap.S(). LOG_MODE=development switches to the
// human-readable console encoder for local runs.
func Setup() *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if os.Getenv("LOG_MODE") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)
	return logger.Sugar()
}
