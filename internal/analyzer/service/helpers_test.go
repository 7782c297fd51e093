package service

import (
	"testing"

	"macrodesk/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}
