package services

import (
	"fmt"
	"sort"

	"rtcdiag/internal/core/domain"
	"rtcdiag/internal/core/ports"
)

const (
	maxIssues   = 5
	videoWeight = 0.7
	audioWeight = 0.3
)

type SummaryService struct {
	scoring ports.ScoringService
}

func NewSummaryService(scoring ports.ScoringService) *SummaryService {
	return &SummaryService{scoring: scoring}
}

// Summarize scores every track of session, weights video and audio into an
// overall score and ranks the worst sub-scores. The session is only read.
func (s *SummaryService) Summarize(session *domain.Session) domain.SessionSummary {
	summary := domain.SessionSummary{
		Issues:         []domain.Issue{},
		TrackSummaries: []domain.TrackSummary{},
	}
	if session == nil {
		return summary
	}

	var videoScores, audioScores []float64
	var issues []domain.Issue

	for _, pc := range session.PeerConnections {
		for _, track := range pc.Tracks {
			score := s.scoring.ScoreTrack(track)
			summary.TrackSummaries = append(summary.TrackSummaries, domain.TrackSummary{
				PeerConnectionID: pc.ID,
				TrackID:          track.ID,
				Kind:             track.Kind,
				Direction:        track.Direction,
				Score:            score,
				Metrics:          summarizeMetrics(track),
				Track:            track,
			})

			switch track.Kind {
			case domain.KindVideo:
				videoScores = append(videoScores, float64(score))
			case domain.KindAudio:
				audioScores = append(audioScores, float64(score))
			}

			for _, ms := range s.scoring.MetricScores(track) {
				issues = append(issues, domain.Issue{
					PeerConnectionID: pc.ID,
					TrackID:          track.ID,
					Kind:             track.Kind,
					Direction:        track.Direction,
					Metric:           ms.Metric,
					Score:            ms.Score,
					Detail:           fmt.Sprintf("%s score %d (aggregate %.2f)", ms.Metric, ms.Score, ms.Aggregate),
				})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Score < issues[j].Score
	})
	if len(issues) > maxIssues {
		issues = issues[:maxIssues]
	}
	summary.Issues = append(summary.Issues, issues...)

	video, _ := mean(videoScores)
	audio, _ := mean(audioScores)
	summary.OverallScore = roundHalfUp(video*videoWeight + audio*audioWeight)
	return summary
}

func summarizeMetrics(track *domain.Track) map[domain.MetricName]domain.MetricSummary {
	out := make(map[domain.MetricName]domain.MetricSummary, len(domain.AllMetrics))
	for _, name := range domain.AllMetrics {
		values := track.Metrics.Series(name).Values
		out[name] = domain.MetricSummary{
			Average: optional(mean(values)),
			P50:     optional(percentile(values, 50)),
			P95:     optional(percentile(values, 95)),
		}
	}
	return out
}
