package ports

import (
	"context"
	"time"

	"rtcdiag/internal/core/domain"
)

type ScoringService interface {
	ScoreTrack(track *domain.Track) int
	MetricScores(track *domain.Track) []domain.MetricScore
}

type SummaryService interface {
	Summarize(session *domain.Session) domain.SessionSummary
}

type AnalysisService interface {
	Analyze(ctx context.Context, content string) (*domain.Analysis, error)
	AnalyzeAs(ctx context.Context, content string, format domain.DumpFormat) (*domain.Analysis, error)
	Detect(ctx context.Context, content string) (domain.DumpFormat, error)
}

// AnalysisRecorder receives the outcome of every analysis.
type AnalysisRecorder interface {
	RecordAnalysis(analysis *domain.Analysis, duration time.Duration)
	RecordFailure(reason string)
}
