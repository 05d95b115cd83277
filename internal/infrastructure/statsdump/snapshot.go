package statsdump

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"rtcdiag/internal/core/domain"
)

// SnapshotParser reads webrtc-internals exports, where every stat field is
// stored as its own pre-aggregated series under "<statId>-<field>".
// The document is rejected as a whole if it is not valid JSON.
type SnapshotParser struct{}

func NewSnapshotParser() *SnapshotParser {
	return &SnapshotParser{}
}

func (p *SnapshotParser) Format() domain.DumpFormat {
	return domain.FormatSnapshot
}

type snapshotDocument struct {
	PeerConnections json.RawMessage `json:"PeerConnections"`
}

type snapshotConnection struct {
	Stats json.RawMessage `json:"stats"`
}

type snapshotSeries struct {
	StartTime any             `json:"startTime"`
	EndTime   any             `json:"endTime"`
	StatsType any             `json:"statsType"`
	Values    json.RawMessage `json:"values"`
}

func (s *snapshotSeries) bounds() (string, string) {
	start, _ := s.StartTime.(string)
	end, _ := s.EndTime.(string)
	return start, end
}

func (p *SnapshotParser) Parse(content string) (*domain.Session, error) {
	var doc snapshotDocument
	if err := json.Unmarshal([]byte(trimLeading(content)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}

	session := &domain.Session{
		Format:          domain.FormatSnapshot,
		PeerConnections: []*domain.PeerConnection{},
	}
	if isNull(doc.PeerConnections) {
		return session, nil
	}
	connections, err := decodeObject(doc.PeerConnections)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, SnapshotRootKey, err)
	}

	for _, m := range connections {
		pc, err := parseSnapshotConnection(m.Key, m.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: peer connection %q: %v", domain.ErrMalformedDocument, m.Key, err)
		}
		session.PeerConnections = append(session.PeerConnections, pc)
	}
	return session, nil
}

func parseSnapshotConnection(id string, raw json.RawMessage) (*domain.PeerConnection, error) {
	if isNull(raw) {
		return nil, errNotObject
	}
	var conn snapshotConnection
	if err := json.Unmarshal(raw, &conn); err != nil {
		return nil, err
	}

	pc := &domain.PeerConnection{ID: id, Tracks: []*domain.Track{}}
	if isNull(conn.Stats) {
		return pc, nil
	}
	members, err := decodeObject(conn.Stats)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	groups := groupStats(members)
	origin := timeOrigin(groups)
	for _, g := range groups {
		g.apply(pc, origin)
	}
	return pc, nil
}

// statGroup collects the series that belong to one stat id.
type statGroup struct {
	id     string
	series map[string]*snapshotSeries
}

// groupStats regroups the flat "<statId>-<field>" keyspace by stat id,
// keeping the order in which stat ids first appear.
func groupStats(members []member) []*statGroup {
	index := make(map[string]*statGroup)
	var groups []*statGroup
	for _, m := range members {
		split := strings.LastIndex(m.Key, "-")
		if split <= 0 {
			continue
		}
		statID, field := m.Key[:split], m.Key[split+1:]

		var s snapshotSeries
		if err := json.Unmarshal(m.Value, &s); err != nil {
			continue
		}
		g, ok := index[statID]
		if !ok {
			g = &statGroup{id: statID, series: make(map[string]*snapshotSeries)}
			index[statID] = g
			groups = append(groups, g)
		}
		g.series[field] = &s
	}
	return groups
}

// timeOrigin is the earliest parseable start time across all series, so
// that interpolated timestamps within a connection share one origin.
func timeOrigin(groups []*statGroup) float64 {
	var (
		origin float64
		found  bool
	)
	for _, g := range groups {
		for _, s := range g.series {
			start, _ := s.bounds()
			if ms, ok := parseCalendarTime(start); ok && (!found || ms < origin) {
				origin = ms
				found = true
			}
		}
	}
	return origin
}

func (g *statGroup) statType() (string, bool) {
	if s, ok := g.series["type"]; ok {
		if t, ok := firstString(s.Values); ok {
			return t, true
		}
	}
	fields := make([]string, 0, len(g.series))
	for field := range g.series {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if t, ok := g.series[field].StatsType.(string); ok && t != "" {
			return t, true
		}
	}
	return "", false
}

func (g *statGroup) kind() (domain.TrackKind, bool) {
	s, ok := g.series["kind"]
	if !ok {
		return "", false
	}
	name, ok := firstString(s.Values)
	if !ok {
		return "", false
	}
	return trackKind(name)
}

// numbers returns the numeric values of a field with their reconstructed
// timestamps. ok is false when the field or its values are absent.
func (g *statGroup) numbers(field string, origin float64) (values, timestamps []float64, ok bool) {
	s, found := g.series[field]
	if !found || isNull(s.Values) {
		return nil, nil, false
	}
	values = numericValues(s.Values)
	start, end := s.bounds()
	return values, buildTimestamps(start, end, len(values), origin), true
}

func (g *statGroup) appendField(series *domain.MetricSeries, field string, scale, origin float64) {
	values, timestamps, ok := g.numbers(field, origin)
	if !ok {
		return
	}
	for i, v := range values {
		series.Append(timestamps[i], v*scale)
	}
}

func (g *statGroup) apply(pc *domain.PeerConnection, origin float64) {
	statType, okType := g.statType()
	kind, okKind := g.kind()
	if !okType || !okKind {
		return
	}

	if direction, ok := trackDirection(statType); ok {
		g.applyTrack(pc, kind, direction, origin)
		return
	}
	if isRemoteInbound(statType) {
		g.applyRoundTrip(pc, kind, origin)
	}
}

func (g *statGroup) applyTrack(pc *domain.PeerConnection, kind domain.TrackKind, direction domain.TrackDirection, origin float64) {
	id := g.id + ":" + string(direction)
	track := pc.Track(id)
	if track == nil {
		track = newTrack(id, kind, direction)
		pc.Tracks = append(pc.Tracks, track)
	}
	m := &track.Metrics

	counterField := "bytesReceived"
	if direction == domain.DirectionOutbound {
		counterField = "bytesSent"
	}
	if counter, timestamps, ok := g.numbers(counterField, origin); ok && len(counter) > 1 {
		m.BitrateKbps = bitrateSeries(counter, timestamps)
	}

	g.appendField(&m.JitterMs, "jitter", 1000, origin)

	lost, lossTimes, okLost := g.numbers("packetsLost", origin)
	received, _, okReceived := g.numbers("packetsReceived", origin)
	if okLost && okReceived {
		m.PacketLossPct = lossSeries(lost, received, lossTimes)
	}

	g.appendField(&m.FPS, "framesPerSecond", 1, origin)
	g.appendField(&m.FrameWidth, "frameWidth", 1, origin)
	g.appendField(&m.FrameHeight, "frameHeight", 1, origin)
	g.appendField(&m.FreezeCount, "freezeCount", 1, origin)
}

// applyRoundTrip copies a remote-inbound round-trip series onto every inbound
// track of the same kind created so far.
func (g *statGroup) applyRoundTrip(pc *domain.PeerConnection, kind domain.TrackKind, origin float64) {
	rtt, timestamps, ok := g.numbers("roundTripTime", origin)
	if !ok {
		return
	}
	for _, t := range broadcastTargets(pc.Tracks, kind) {
		for i, v := range rtt {
			t.Metrics.RoundTripMs.Append(timestamps[i], v*1000)
		}
	}
}
