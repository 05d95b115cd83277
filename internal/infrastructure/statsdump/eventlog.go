package statsdump

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rtcdiag/internal/core/domain"
)

const getStatsEvent = "getStats"

// EventLogParser reads RTCStatsDump event logs: a header line followed by
// one JSON array per event. Lines that are not well-formed events are skipped.
type EventLogParser struct{}

func NewEventLogParser() *EventLogParser {
	return &EventLogParser{}
}

func (p *EventLogParser) Format() domain.DumpFormat {
	return domain.FormatEventLog
}

func (p *EventLogParser) Parse(content string) (*domain.Session, error) {
	trimmed := trimLeading(content)
	if !strings.HasPrefix(trimmed, EventLogHeader) {
		return nil, fmt.Errorf("%w: not an event-log dump", domain.ErrNotExpectedFormat)
	}

	b := newEventLogBuilder()
	for _, line := range strings.Split(trimmed, "\n") {
		b.consume(strings.TrimSpace(line))
	}
	return b.session(), nil
}

// trackAccumulator is the per-track state needed while reading one dump.
type trackAccumulator struct {
	track    *domain.Track
	hasFirst bool
	first    float64
	counter  byteCounter
}

// relative rebases an absolute timestamp onto the first one seen for the track.
func (a *trackAccumulator) relative(at float64) float64 {
	if !a.hasFirst {
		a.first = at
		a.hasFirst = true
	}
	return at - a.first
}

type connectionState struct {
	pc     *domain.PeerConnection
	tracks map[string]*trackAccumulator
}

func (c *connectionState) track(id string, kind domain.TrackKind, direction domain.TrackDirection) *trackAccumulator {
	if acc, ok := c.tracks[id]; ok {
		return acc
	}
	acc := &trackAccumulator{track: newTrack(id, kind, direction)}
	c.pc.Tracks = append(c.pc.Tracks, acc.track)
	c.tracks[id] = acc
	return acc
}

type eventLogBuilder struct {
	connections map[string]*connectionState
	order       []*connectionState
}

func newEventLogBuilder() *eventLogBuilder {
	return &eventLogBuilder{connections: make(map[string]*connectionState)}
}

func (b *eventLogBuilder) connection(id string) *connectionState {
	if c, ok := b.connections[id]; ok {
		return c
	}
	c := &connectionState{
		pc:     &domain.PeerConnection{ID: id, Tracks: []*domain.Track{}},
		tracks: make(map[string]*trackAccumulator),
	}
	b.connections[id] = c
	b.order = append(b.order, c)
	return c
}

func (b *eventLogBuilder) session() *domain.Session {
	s := &domain.Session{
		Format:          domain.FormatEventLog,
		PeerConnections: make([]*domain.PeerConnection, 0, len(b.order)),
	}
	for _, c := range b.order {
		s.PeerConnections = append(s.PeerConnections, c.pc)
	}
	return s
}

// consume processes one line of the dump.
func (b *eventLogBuilder) consume(line string) {
	if !strings.HasPrefix(line, "[") {
		return
	}
	var event []json.RawMessage
	if err := json.Unmarshal([]byte(line), &event); err != nil || len(event) < 3 {
		return
	}

	var eventType, pcID string
	if err := json.Unmarshal(event[0], &eventType); err != nil || eventType != getStatsEvent {
		return
	}
	if isNull(event[1]) {
		return
	}
	if err := json.Unmarshal(event[1], &pcID); err != nil {
		return
	}
	stats, err := decodeObject(event[2])
	if err != nil {
		return
	}

	conn := b.connection(pcID)
	for _, m := range stats {
		var rec record
		if err := json.Unmarshal(m.Value, &rec); err != nil || rec == nil {
			continue
		}
		conn.apply(m.Key, rec)
	}
}

func (c *connectionState) apply(statKey string, rec record) {
	statType, _ := rec.str("type")
	kindName, _ := rec.str("kind")
	kind, hasKind := trackKind(kindName)

	if direction, ok := trackDirection(statType); ok {
		if !hasKind {
			return
		}
		acc := c.track(eventLogTrackID(rec, statKey, direction), kind, direction)
		if direction == domain.DirectionInbound {
			addInbound(acc, rec)
		} else {
			addOutbound(acc, rec)
		}
		return
	}

	if isRemoteInbound(statType) && hasKind {
		c.broadcastRoundTrip(kind, rec)
	}
}

// eventLogTrackID derives a stable id so samples from successive events of
// the same physical track accumulate into one track.
func eventLogTrackID(rec record, statKey string, direction domain.TrackDirection) string {
	identity := statKey
	if id, ok := rec.str("trackIdentifier"); ok && id != "" {
		identity = id
	} else if ssrc, ok := rec.number("ssrc"); ok {
		identity = strconv.FormatFloat(ssrc, 'f', -1, 64)
	} else if id, ok := rec.str("id"); ok && id != "" {
		identity = id
	}
	return "track:" + string(direction) + ":" + identity
}

func sampleTime(rec record) (float64, bool) {
	at, ok := rec.number("timestamp")
	if !ok || at == 0 {
		return 0, false
	}
	return at, true
}

func addInbound(acc *trackAccumulator, rec record) {
	at, ok := sampleTime(rec)
	if !ok {
		return
	}
	t := acc.relative(at)
	m := &acc.track.Metrics

	if jitter, ok := rec.number("jitter"); ok {
		m.JitterMs.Append(t, jitter*1000)
	}
	lost, okLost := rec.number("packetsLost")
	received, okReceived := rec.number("packetsReceived")
	if okLost && okReceived {
		if pct, ok := lossPercent(lost, received); ok {
			m.PacketLossPct.Append(t, pct)
		}
	}
	addVideoMetrics(m, rec, t)
	if freezes, ok := rec.number("freezeCount"); ok {
		m.FreezeCount.Append(t, freezes)
	}
	if received, ok := rec.number("bytesReceived"); ok {
		if kbps, ok := acc.counter.observe(received, at); ok {
			m.BitrateKbps.Append(t, kbps)
		}
	}
}

func addOutbound(acc *trackAccumulator, rec record) {
	at, ok := sampleTime(rec)
	if !ok {
		return
	}
	t := acc.relative(at)
	m := &acc.track.Metrics

	addVideoMetrics(m, rec, t)
	if sent, ok := rec.number("bytesSent"); ok {
		if kbps, ok := acc.counter.observe(sent, at); ok {
			m.BitrateKbps.Append(t, kbps)
		}
	}
}

func addVideoMetrics(m *domain.TrackMetrics, rec record, t float64) {
	if fps, ok := rec.number("framesPerSecond"); ok {
		m.FPS.Append(t, fps)
	}
	if width, ok := rec.number("frameWidth", "width"); ok {
		m.FrameWidth.Append(t, width)
	}
	if height, ok := rec.number("frameHeight", "height"); ok {
		m.FrameHeight.Append(t, height)
	}
}

// broadcastRoundTrip appends a remote-inbound round-trip time to every inbound
// track of the same kind known so far. Without a target the sample is lost.
func (c *connectionState) broadcastRoundTrip(kind domain.TrackKind, rec record) {
	at, okAt := rec.number("timestamp")
	rtt, okRTT := rec.number("roundTripTime")
	if !okAt || !okRTT {
		return
	}
	for _, t := range broadcastTargets(c.pc.Tracks, kind) {
		acc := c.tracks[t.ID]
		acc.track.Metrics.RoundTripMs.Append(acc.relative(at), rtt*1000)
	}
}
