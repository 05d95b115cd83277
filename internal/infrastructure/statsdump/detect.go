package statsdump

import (
	"encoding/json"
	"fmt"
	"strings"

	"rtcdiag/internal/core/domain"
)

const (
	// EventLogHeader opens every event-log dump.
	EventLogHeader = "RTCStatsDump"
	// SnapshotRootKey names the peer-connection mapping of a snapshot dump.
	SnapshotRootKey = "PeerConnections"
)

// Detect inspects raw dump text and reports its format. A snapshot candidate
// is fully parsed here; parsers parse it again on their own.
func Detect(content string) (domain.DumpFormat, error) {
	trimmed := trimLeading(content)
	if strings.HasPrefix(trimmed, EventLogHeader) {
		return domain.FormatEventLog, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var root map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &root); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUnrecognizedFormat, err)
		}
		if _, ok := root[SnapshotRootKey]; ok {
			return domain.FormatSnapshot, nil
		}
	}

	return "", domain.ErrUnrecognizedFormat
}
