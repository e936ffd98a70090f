package telemetry

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap logger. Set LOG_MODE=dev for the
// human-readable development encoder.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("LOG_MODE") == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
