package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"rtcdiag/internal/core/domain"
)

// ValidateDump checks that raw dump text is worth handing to the parsers.
// maxBytes <= 0 disables the size check.
func ValidateDump(content string, maxBytes int) error {
	if strings.TrimSpace(content) == "" {
		return domain.ErrEmptyDump
	}
	if maxBytes > 0 && len(content) > maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", domain.ErrDumpTooLarge, len(content), maxBytes)
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: dump is not valid UTF-8", domain.ErrUnrecognizedFormat)
	}
	return nil
}

// ValidateFormat accepts the names of the supported dump formats.
func ValidateFormat(name string) (domain.DumpFormat, error) {
	switch f := domain.DumpFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case domain.FormatEventLog, domain.FormatSnapshot:
		return f, nil
	}
	return "", fmt.Errorf("unsupported dump format %q (expected %s or %s)", name, domain.FormatEventLog, domain.FormatSnapshot)
}

// ValidateRequestID accepts client-supplied request ids in UUID form
func ValidateRequestID(id string) error {
	if id == "" {
		return fmt.Errorf("request ID is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid request ID format")
	}
	return nil
}
