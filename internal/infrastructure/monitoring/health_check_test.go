package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rtcdiag/internal/core/domain"
	"rtcdiag/internal/infrastructure/statsdump"
)

type brokenParser struct{}

func (brokenParser) Detect(string) (domain.DumpFormat, error) {
	return "", domain.ErrUnrecognizedFormat
}

func (brokenParser) Parse(string) (*domain.Session, error) {
	return nil, errors.New("unreachable")
}

func (brokenParser) ParseAs(domain.DumpFormat, string) (*domain.Session, error) {
	return nil, errors.New("unreachable")
}

func TestHealthChecker_ParserCheckHealthy(t *testing.T) {
	h := NewHealthChecker()
	h.AddParserCheck(statsdump.NewDefaultRegistry(), time.Second)

	status := h.CheckAll(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["parsers"])
}

func TestHealthChecker_ParserCheckUnhealthy(t *testing.T) {
	h := NewHealthChecker()
	h.AddParserCheck(brokenParser{}, time.Second)

	status := h.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Contains(t, status.Checks["parsers"], "unrecognized")
}

func TestHealthChecker_FailedCheckWithoutError(t *testing.T) {
	h := NewHealthChecker()
	h.AddCheck("always-false", func(context.Context) (bool, error) { return false, nil }, 0)

	status := h.CheckAll(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "check failed", status.Checks["always-false"])
}
