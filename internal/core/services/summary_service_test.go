package services

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtcdiag/internal/core/domain"
)

func sessionOf(tracks ...*domain.Track) *domain.Session {
	return &domain.Session{
		Format: domain.FormatEventLog,
		PeerConnections: []*domain.PeerConnection{
			{ID: "pc-1", Tracks: tracks},
		},
	}
}

func newTestSummaryService() *SummaryService {
	return NewSummaryService(NewDefaultScoringService())
}

func TestSummaryService_EmptySession(t *testing.T) {
	s := newTestSummaryService()

	for _, session := range []*domain.Session{nil, {}, sessionOf()} {
		summary := s.Summarize(session)
		assert.Equal(t, 0, summary.OverallScore)
		assert.NotNil(t, summary.Issues)
		assert.NotNil(t, summary.TrackSummaries)
		assert.Empty(t, summary.Issues)
		assert.Empty(t, summary.TrackSummaries)
	}
}

func TestSummaryService_PerfectSession(t *testing.T) {
	video := trackWith(domain.KindVideo, func(m *domain.TrackMetrics) {
		m.FPS = series(30, 30)
		m.JitterMs = series(5)
		m.BitrateKbps = series(2000)
		m.FrameWidth = series(1280)
		m.FrameHeight = series(720)
	})
	audio := trackWith(domain.KindAudio, func(m *domain.TrackMetrics) {
		m.JitterMs = series(5)
		m.PacketLossPct = series(0)
	})

	summary := newTestSummaryService().Summarize(sessionOf(video, audio))
	assert.Equal(t, 100, summary.OverallScore)
	require.Len(t, summary.TrackSummaries, 2)
	assert.Equal(t, 100, summary.TrackSummaries[0].Score)
	assert.Equal(t, "pc-1", summary.TrackSummaries[0].PeerConnectionID)
	assert.Same(t, video, summary.TrackSummaries[0].Track)
}

func TestSummaryService_WeightsVideoAndAudio(t *testing.T) {
	goodAudio := trackWith(domain.KindAudio, func(m *domain.TrackMetrics) {
		m.JitterMs = series(1)
	})
	badVideo := trackWith(domain.KindVideo, func(m *domain.TrackMetrics) {
		m.FPS = series(1)
	})

	s := newTestSummaryService()
	assert.Equal(t, 30, s.Summarize(sessionOf(goodAudio)).OverallScore)
	assert.Equal(t, 30, s.Summarize(sessionOf(goodAudio, badVideo)).OverallScore)

	goodVideo := trackWith(domain.KindVideo, func(m *domain.TrackMetrics) {
		m.FPS = series(30)
	})
	assert.Equal(t, 70, s.Summarize(sessionOf(goodVideo)).OverallScore)
}

func TestSummaryService_IssuesRankedAndCapped(t *testing.T) {
	video := trackWith(domain.KindVideo, func(m *domain.TrackMetrics) {
		m.JitterMs = series(65)
		m.RoundTripMs = series(600)
		m.PacketLossPct = series(3.5)
		m.FPS = series(12)
	})
	audio := trackWith(domain.KindAudio, func(m *domain.TrackMetrics) {
		m.JitterMs = series(100)
		m.FreezeCount = series(1)
	})

	summary := newTestSummaryService().Summarize(sessionOf(video, audio))
	require.Len(t, summary.Issues, maxIssues)
	assert.True(t, sort.SliceIsSorted(summary.Issues, func(i, j int) bool {
		return summary.Issues[i].Score < summary.Issues[j].Score
	}))

	// Ties keep track order, then metric order.
	assert.Equal(t, domain.MetricRoundTripMs, summary.Issues[0].Metric)
	assert.Equal(t, video.ID, summary.Issues[0].TrackID)
	assert.Equal(t, domain.MetricJitterMs, summary.Issues[1].Metric)
	assert.Equal(t, audio.ID, summary.Issues[1].TrackID)
	assert.Equal(t, "round-trip-time-ms score 0 (aggregate 600.00)", summary.Issues[0].Detail)

	for _, issue := range summary.Issues {
		assert.NotEqual(t, 100, issue.Score)
	}
}

func TestSummaryService_MetricSummaries(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}
	track := trackWith(domain.KindAudio, func(m *domain.TrackMetrics) {
		m.JitterMs = series(values...)
	})

	summary := newTestSummaryService().Summarize(sessionOf(track))
	require.Len(t, summary.TrackSummaries, 1)
	metrics := summary.TrackSummaries[0].Metrics
	assert.Len(t, metrics, len(domain.AllMetrics))

	jitter := metrics[domain.MetricJitterMs]
	require.NotNil(t, jitter.Average)
	assert.Equal(t, 10.5, *jitter.Average)
	assert.Equal(t, 10.0, *jitter.P50)
	assert.Equal(t, 19.0, *jitter.P95)

	fps := metrics[domain.MetricFPS]
	assert.Nil(t, fps.Average)
	assert.Nil(t, fps.P50)
	assert.Nil(t, fps.P95)
}

func TestSummaryService_DoesNotMutateSession(t *testing.T) {
	track := trackWith(domain.KindAudio, func(m *domain.TrackMetrics) {
		m.JitterMs = series(50, 10, 30)
	})
	newTestSummaryService().Summarize(sessionOf(track))
	assert.Equal(t, []float64{50, 10, 30}, track.Metrics.JitterMs.Values)
}
