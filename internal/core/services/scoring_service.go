package services

import (
	"rtcdiag/internal/core/domain"
)

// ScoringService maps observed track metrics onto 0-100 scores.
type ScoringService struct {
	thresholds domain.Thresholds
}

func NewScoringService(thresholds domain.Thresholds) *ScoringService {
	return &ScoringService{thresholds: thresholds.Clone()}
}

func NewDefaultScoringService() *ScoringService {
	return NewScoringService(domain.DefaultThresholds())
}

// GetThresholds returns a copy of the thresholds in use.
func (s *ScoringService) GetThresholds() domain.Thresholds {
	return s.thresholds.Clone()
}

// ScoreLowerIsBetter scores value on a descending ramp: 100 at or below good,
// 0 at or above bad.
func ScoreLowerIsBetter(value, good, bad float64) int {
	if value <= good {
		return 100
	}
	if value >= bad {
		return 0
	}
	return roundHalfUp((bad - value) / (bad - good) * 100)
}

// ScoreHigherIsBetter scores value on an ascending ramp: 0 at or below bad,
// 100 at or above good.
func ScoreHigherIsBetter(value, bad, good float64) int {
	if value <= bad {
		return 0
	}
	if value >= good {
		return 100
	}
	return roundHalfUp((value - bad) / (good - bad) * 100)
}

// MetricScores returns one sub-score per observed metric, in the order
// jitter, round-trip time, packet loss, frame rate, bitrate, freezes.
// Unobserved metrics are left out.
func (s *ScoringService) MetricScores(track *domain.Track) []domain.MetricScore {
	if track == nil {
		return nil
	}
	m := &track.Metrics
	t := s.thresholds
	var scores []domain.MetricScore

	add := func(metric domain.MetricName, aggregate float64, score int) {
		scores = append(scores, domain.MetricScore{Metric: metric, Aggregate: aggregate, Score: score})
	}

	if avg, ok := mean(m.JitterMs.Values); ok {
		add(domain.MetricJitterMs, avg, ScoreLowerIsBetter(avg, t.JitterMs.Good, t.JitterMs.Bad))
	}
	if avg, ok := mean(m.RoundTripMs.Values); ok {
		add(domain.MetricRoundTripMs, avg, ScoreLowerIsBetter(avg, t.RoundTripMs.Good, t.RoundTripMs.Bad))
	}
	if avg, ok := mean(m.PacketLossPct.Values); ok {
		add(domain.MetricPacketLossPct, avg, ScoreLowerIsBetter(avg, t.PacketLossPct.Good, t.PacketLossPct.Bad))
	}
	if avg, ok := mean(m.FPS.Values); ok {
		add(domain.MetricFPS, avg, ScoreHigherIsBetter(avg, t.FPS.Bad, t.FPS.Good))
	}
	if avg, ok := mean(m.BitrateKbps.Values); ok {
		width, _ := mean(m.FrameWidth.Values)
		height, _ := mean(m.FrameHeight.Values)
		target := t.TargetKbps(width, height)
		add(domain.MetricBitrateKbps, avg, ScoreHigherIsBetter(avg, target*t.BitrateBadRatio, target))
	}
	// A single freeze matters, so the worst observation is scored.
	if worst, ok := maxOf(m.FreezeCount.Values); ok {
		add(domain.MetricFreezeCount, worst, ScoreLowerIsBetter(worst, t.FreezeCount.Good, t.FreezeCount.Bad))
	}
	return scores
}

// ScoreTrack is the rounded mean of the track's sub-scores, or 0 when no
// metric was observed.
func (s *ScoringService) ScoreTrack(track *domain.Track) int {
	return combineScores(s.MetricScores(track))
}

func combineScores(scores []domain.MetricScore) int {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, sc := range scores {
		total += sc.Score
	}
	return roundHalfUp(float64(total) / float64(len(scores)))
}
