package statsdump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtcdiag/internal/core/domain"
)

func eventLog(lines ...string) string {
	return EventLogHeader + "\n" + strings.Join(lines, "\n") + "\n"
}

func parseEventLog(t *testing.T, content string) *domain.Session {
	t.Helper()
	session, err := NewEventLogParser().Parse(content)
	require.NoError(t, err)
	require.Equal(t, domain.FormatEventLog, session.Format)
	return session
}

func TestEventLogParser_RejectsOtherFormats(t *testing.T) {
	_, err := NewEventLogParser().Parse(`{"PeerConnections":{}}`)
	assert.ErrorIs(t, err, domain.ErrNotExpectedFormat)
}

func TestEventLogParser_HeaderOnly(t *testing.T) {
	session := parseEventLog(t, EventLogHeader)
	assert.Empty(t, session.PeerConnections)
	assert.Equal(t, 0, session.TrackCount())
}

func TestEventLogParser_BitrateFromByteCounter(t *testing.T) {
	session := parseEventLog(t, eventLog(
		`["getStats","pc1",{"in":{"type":"inbound-rtp","kind":"video","ssrc":42,"timestamp":1000,"bytesReceived":0}}]`,
		`["getStats","pc1",{"in":{"type":"inbound-rtp","kind":"video","ssrc":42,"timestamp":2000,"bytesReceived":1000}}]`,
		`["getStats","pc1",{"in":{"type":"inbound-rtp","kind":"video","ssrc":42,"timestamp":3000,"bytesReceived":3000}}]`,
	))

	require.Len(t, session.PeerConnections, 1)
	pc := session.PeerConnections[0]
	assert.Equal(t, "pc1", pc.ID)
	require.Len(t, pc.Tracks, 1)

	track := pc.Tracks[0]
	assert.Equal(t, "track:inbound:42", track.ID)
	assert.Equal(t, domain.KindVideo, track.Kind)
	assert.Equal(t, domain.DirectionInbound, track.Direction)
	assert.Equal(t, []float64{8, 16}, track.Metrics.BitrateKbps.Values)
	assert.Equal(t, []float64{1000, 2000}, track.Metrics.BitrateKbps.Timestamps)
}

func TestEventLogParser_CounterResetAndStalledClock(t *testing.T) {
	session := parseEventLog(t, eventLog(
		`["getStats","pc1",{"out":{"type":"outbound-rtp","kind":"audio","ssrc":7,"timestamp":1000,"bytesSent":5000}}]`,
		`["getStats","pc1",{"out":{"type":"outbound-rtp","kind":"audio","ssrc":7,"timestamp":2000,"bytesSent":1000}}]`,
		`["getStats","pc1",{"out":{"type":"outbound-rtp","kind":"audio","ssrc":7,"timestamp":2000,"bytesSent":2000}}]`,
		`["getStats","pc1",{"out":{"type":"outbound-rtp","kind":"audio","ssrc":7,"timestamp":3000,"bytesSent":3000}}]`,
	))

	track := session.PeerConnections[0].Tracks[0]
	assert.Equal(t, "track:outbound:7", track.ID)
	assert.Equal(t, []float64{8}, track.Metrics.BitrateKbps.Values)
	assert.Equal(t, []float64{2000}, track.Metrics.BitrateKbps.Timestamps)
}

func TestEventLogParser_PacketLossAndJitter(t *testing.T) {
	session := parseEventLog(t, eventLog(
		`["getStats","pc1",{"in":{"type":"inbound-rtp","kind":"audio","trackIdentifier":"mic","timestamp":1000,"packetsLost":1,"packetsReceived":99,"jitter":0.015}}]`,
		`["getStats","pc1",{"in":{"type":"inbound-rtp","kind":"audio","trackIdentifier":"mic","timestamp":2000,"packetsLost":2,"packetsReceived":198,"jitter":0.02}}]`,
		`["getStats","pc1",{"in":{"type":"inbound-rtp","kind":"audio","trackIdentifier":"mic","timestamp":3000,"packetsLost":0,"packetsReceived":0}}]`,
	))

	track := session.PeerConnections[0].Tracks[0]
	assert.Equal(t, "track:inbound:mic", track.ID)
	require.Equal(t, 2, track.Metrics.PacketLossPct.Len())
	assert.InDelta(t, 1.0, track.Metrics.PacketLossPct.Values[0], 1e-9)
	assert.InDelta(t, 1.0, track.Metrics.PacketLossPct.Values[1], 1e-9)
	require.Equal(t, 2, track.Metrics.JitterMs.Len())
	assert.InDelta(t, 15.0, track.Metrics.JitterMs.Values[0], 1e-9)
	assert.InDelta(t, 20.0, track.Metrics.JitterMs.Values[1], 1e-9)
}

func TestEventLogParser_RoundTripBroadcastToSameKind(t *testing.T) {
	session := parseEventLog(t, eventLog(
		`["getStats","pc1",{"rv":{"type":"remote-inbound-rtp","kind":"video","timestamp":500,"roundTripTime":0.5}}]`,
		`["getStats","pc1",{"v1":{"type":"inbound-rtp","kind":"video","ssrc":1,"timestamp":1000},"v2":{"type":"inbound-rtp","kind":"video","ssrc":2,"timestamp":1000},"a1":{"type":"inbound-rtp","kind":"audio","ssrc":3,"timestamp":1000},"o1":{"type":"outbound-rtp","kind":"video","ssrc":4,"timestamp":1000},"rv":{"type":"remote-inbound-rtp","kind":"video","timestamp":2000,"roundTripTime":0.12}}]`,
	))

	pc := session.PeerConnections[0]
	require.Len(t, pc.Tracks, 4)
	for _, id := range []string{"track:inbound:1", "track:inbound:2"} {
		track := pc.Track(id)
		require.NotNil(t, track, id)
		require.Equal(t, 1, track.Metrics.RoundTripMs.Len(), id)
		assert.InDelta(t, 120.0, track.Metrics.RoundTripMs.Values[0], 1e-9)
		assert.Equal(t, 1000.0, track.Metrics.RoundTripMs.Timestamps[0])
	}
	assert.True(t, pc.Track("track:inbound:3").Metrics.RoundTripMs.Empty())
	assert.True(t, pc.Track("track:outbound:4").Metrics.RoundTripMs.Empty())
}

func TestEventLogParser_VideoDimensions(t *testing.T) {
	session := parseEventLog(t, eventLog(
		`["getStats","pc1",{"out":{"type":"outbound-rtp","kind":"video","id":"OT01","timestamp":1000,"framesPerSecond":30,"width":1280,"height":720}}]`,
		`["getStats","pc1",{"in":{"type":"inbound-rtp","kind":"video","timestamp":1000,"frameWidth":640,"frameHeight":360,"freezeCount":2}}]`,
	))

	pc := session.PeerConnections[0]
	out := pc.Track("track:outbound:OT01")
	require.NotNil(t, out)
	assert.Equal(t, []float64{30}, out.Metrics.FPS.Values)
	assert.Equal(t, []float64{1280}, out.Metrics.FrameWidth.Values)
	assert.Equal(t, []float64{720}, out.Metrics.FrameHeight.Values)

	in := pc.Track("track:inbound:in")
	require.NotNil(t, in)
	assert.Equal(t, []float64{640}, in.Metrics.FrameWidth.Values)
	assert.Equal(t, []float64{2}, in.Metrics.FreezeCount.Values)
}

func TestEventLogParser_SkipsUnusableLines(t *testing.T) {
	session := parseEventLog(t, eventLog(
		`not json at all`,
		`["getStats","pc1"`,
		`["getStats","pc1"]`,
		`["addIceCandidate","pc1",{"in":{"type":"inbound-rtp","kind":"audio","ssrc":1,"timestamp":1000}}]`,
		`["getStats",null,{"in":{"type":"inbound-rtp","kind":"audio","ssrc":1,"timestamp":1000}}]`,
		`["getStats","pc1","not an object"]`,
		`["getStats","pc2",{"bad":5,"nokind":{"type":"inbound-rtp","ssrc":1,"timestamp":1000},"data":{"type":"inbound-rtp","kind":"data","timestamp":1000}}]`,
		`["getStats","pc3",{"in":{"type":"inbound-rtp","kind":"audio","ssrc":9,"bytesReceived":10}}]`,
	))

	require.Len(t, session.PeerConnections, 2)
	assert.Equal(t, "pc2", session.PeerConnections[0].ID)
	assert.Empty(t, session.PeerConnections[0].Tracks)

	pc3 := session.PeerConnections[1]
	require.Len(t, pc3.Tracks, 1)
	assert.True(t, pc3.Tracks[0].Metrics.BitrateKbps.Empty())
}

func TestEventLogParser_KeepsPeerConnectionOrder(t *testing.T) {
	session := parseEventLog(t, eventLog(
		`["getStats","b",{}]`,
		`["getStats","a",{}]`,
		`["getStats","b",{}]`,
	))

	require.Len(t, session.PeerConnections, 2)
	assert.Equal(t, "b", session.PeerConnections[0].ID)
	assert.Equal(t, "a", session.PeerConnections[1].ID)
}
