package domain

import "time"

type DumpFormat string

const (
	FormatEventLog DumpFormat = "event-log"
	FormatSnapshot DumpFormat = "snapshot"
)

type TrackKind string

const (
	KindAudio TrackKind = "audio"
	KindVideo TrackKind = "video"
)

type TrackDirection string

const (
	DirectionInbound  TrackDirection = "inbound"
	DirectionOutbound TrackDirection = "outbound"
)

type MetricName string

const (
	MetricBitrateKbps   MetricName = "bitrate-kbps"
	MetricJitterMs      MetricName = "jitter-ms"
	MetricRoundTripMs   MetricName = "round-trip-time-ms"
	MetricPacketLossPct MetricName = "packet-loss-pct"
	MetricFPS           MetricName = "frames-per-second"
	MetricFrameWidth    MetricName = "frame-width"
	MetricFrameHeight   MetricName = "frame-height"
	MetricFreezeCount   MetricName = "freeze-count"
)

// AllMetrics lists every series a track carries, in display order.
var AllMetrics = []MetricName{
	MetricBitrateKbps,
	MetricJitterMs,
	MetricRoundTripMs,
	MetricPacketLossPct,
	MetricFPS,
	MetricFrameWidth,
	MetricFrameHeight,
	MetricFreezeCount,
}

// MetricSeries holds samples keyed by relative milliseconds.
// Timestamps and Values always have the same length; an empty series means
// the metric was never observed.
type MetricSeries struct {
	Timestamps []float64 `json:"timestamps"`
	Values     []float64 `json:"values"`
}

// Append adds one sample.
func (s *MetricSeries) Append(at, value float64) {
	s.Timestamps = append(s.Timestamps, at)
	s.Values = append(s.Values, value)
}

func (s MetricSeries) Len() int {
	return len(s.Values)
}

func (s MetricSeries) Empty() bool {
	return len(s.Values) == 0
}

type TrackMetrics struct {
	BitrateKbps   MetricSeries `json:"bitrate-kbps"`
	JitterMs      MetricSeries `json:"jitter-ms"`
	RoundTripMs   MetricSeries `json:"round-trip-time-ms"`
	PacketLossPct MetricSeries `json:"packet-loss-pct"`
	FPS           MetricSeries `json:"frames-per-second"`
	FrameWidth    MetricSeries `json:"frame-width"`
	FrameHeight   MetricSeries `json:"frame-height"`
	FreezeCount   MetricSeries `json:"freeze-count"`
}

// Series returns the series stored under name, or nil for an unknown name.
func (m *TrackMetrics) Series(name MetricName) *MetricSeries {
	switch name {
	case MetricBitrateKbps:
		return &m.BitrateKbps
	case MetricJitterMs:
		return &m.JitterMs
	case MetricRoundTripMs:
		return &m.RoundTripMs
	case MetricPacketLossPct:
		return &m.PacketLossPct
	case MetricFPS:
		return &m.FPS
	case MetricFrameWidth:
		return &m.FrameWidth
	case MetricFrameHeight:
		return &m.FrameHeight
	case MetricFreezeCount:
		return &m.FreezeCount
	}
	return nil
}

type Track struct {
	ID        string         `json:"id"`
	Kind      TrackKind      `json:"kind"`
	Direction TrackDirection `json:"direction"`
	Metrics   TrackMetrics   `json:"metrics"`
}

type PeerConnection struct {
	ID     string   `json:"id"`
	Tracks []*Track `json:"tracks"`
}

// Track returns the track with the given id, or nil.
func (pc *PeerConnection) Track(id string) *Track {
	for _, t := range pc.Tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Session is the canonical model produced by a parser. It is not modified
// after the parser returns it.
type Session struct {
	Format          DumpFormat        `json:"format"`
	PeerConnections []*PeerConnection `json:"peerConnections"`
}

// TrackCount returns the number of tracks across all peer connections.
func (s *Session) TrackCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, pc := range s.PeerConnections {
		n += len(pc.Tracks)
	}
	return n
}

type AnalysisID string

// Analysis is one processed dump as returned to callers of the analysis service.
type Analysis struct {
	ID         AnalysisID     `json:"id"`
	Format     DumpFormat     `json:"format"`
	Session    *Session       `json:"session"`
	Summary    SessionSummary `json:"summary"`
	SizeBytes  int            `json:"sizeBytes"`
	AnalyzedAt time.Time      `json:"analyzedAt"`
}
