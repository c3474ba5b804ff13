package services

import (
	"testing"

	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

func newTestLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}
