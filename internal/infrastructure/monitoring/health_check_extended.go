package monitoring

import (
	"context"
	"fmt"
	"time"

	"rtcdiag/internal/core/domain"
	"rtcdiag/internal/core/ports"
)

const selfCheckEventLog = `RTCStatsDump
["getStats","pc-self",{"in":{"type":"inbound-rtp","kind":"audio","ssrc":1,"timestamp":1000,"bytesReceived":0}}]
`

const selfCheckSnapshot = `{"PeerConnections":{"pc-self":{"stats":{"in-type":{"values":["inbound-rtp"]},"in-kind":{"values":["audio"]}}}}}`

// AddParserCheck verifies that every supported format is still detected and
// parsed into one track.
func (h *HealthChecker) AddParserCheck(parser ports.SessionParser, timeout time.Duration) {
	h.AddCheck("parsers", func(ctx context.Context) (bool, error) {
		samples := map[domain.DumpFormat]string{
			domain.FormatEventLog: selfCheckEventLog,
			domain.FormatSnapshot: selfCheckSnapshot,
		}
		for want, content := range samples {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			got, err := parser.Detect(content)
			if err != nil {
				return false, fmt.Errorf("%s: %w", want, err)
			}
			if got != want {
				return false, fmt.Errorf("%s sample detected as %s", want, got)
			}
			session, err := parser.Parse(content)
			if err != nil {
				return false, fmt.Errorf("%s: %w", want, err)
			}
			if session.TrackCount() != 1 {
				return false, fmt.Errorf("%s sample produced %d tracks", want, session.TrackCount())
			}
		}
		return true, nil
	}, timeout)
}
