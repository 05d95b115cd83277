package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rtcdiag/internal/core/domain"
	"rtcdiag/internal/core/ports"
	"rtcdiag/pkg/logger"
	"rtcdiag/pkg/tracing"
	"rtcdiag/pkg/validation"
)

// Failure reasons reported to the AnalysisRecorder.
const (
	ReasonUnrecognizedFormat = "unrecognized_format"
	ReasonMalformedDocument  = "malformed_document"
	ReasonNotExpectedFormat  = "not_expected_format"
	ReasonEmptyDump          = "empty_dump"
	ReasonDumpTooLarge       = "dump_too_large"
	ReasonInternal           = "internal"
)

type AnalysisService struct {
	parser   ports.SessionParser
	summary  ports.SummaryService
	recorder ports.AnalysisRecorder
	log      *logger.ContextLogger
	maxBytes int
	now      func() time.Time
}

type AnalysisOption func(*AnalysisService)

// WithRecorder reports every analysis outcome to r.
func WithRecorder(r ports.AnalysisRecorder) AnalysisOption {
	return func(s *AnalysisService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithMaxDumpBytes rejects dumps larger than n bytes. n <= 0 disables the limit.
func WithMaxDumpBytes(n int) AnalysisOption {
	return func(s *AnalysisService) {
		s.maxBytes = n
	}
}

func WithLogger(l *zap.Logger) AnalysisOption {
	return func(s *AnalysisService) {
		s.log = logger.NewContextLogger(l)
	}
}

func NewAnalysisService(parser ports.SessionParser, summary ports.SummaryService, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		parser:   parser,
		summary:  summary,
		recorder: noopRecorder{},
		log:      logger.NewContextLogger(nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect validates content and reports its dump format without parsing it.
func (s *AnalysisService) Detect(ctx context.Context, content string) (domain.DumpFormat, error) {
	if err := validation.ValidateDump(content, s.maxBytes); err != nil {
		return "", err
	}

	_, span := tracing.TraceAnalysis(ctx, "detect")
	defer span.End()

	format, err := s.parser.Detect(content)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(tracing.FormatKey.String(string(format)))
	return format, nil
}

// Analyze validates, detects, parses and summarizes one dump. Each call works
// on its own session, so concurrent calls share no state.
func (s *AnalysisService) Analyze(ctx context.Context, content string) (*domain.Analysis, error) {
	return s.AnalyzeAs(ctx, content, "")
}

// AnalyzeAs is Analyze with the dump format fixed by the caller. An empty
// format detects it.
func (s *AnalysisService) AnalyzeAs(ctx context.Context, content string, format domain.DumpFormat) (*domain.Analysis, error) {
	start := s.now()
	id := domain.AnalysisID(uuid.New().String())
	ctx = logger.WithAnalysisID(ctx, string(id))

	analysis, err := s.analyze(ctx, id, content, format)
	if err != nil {
		reason := failureReason(err)
		s.recorder.RecordFailure(reason)
		s.log.LogWarn(ctx, "dump analysis failed",
			zap.String("reason", reason),
			zap.String("requested_format", string(format)),
			zap.Int("size_bytes", len(content)),
			zap.Error(err),
		)
		return nil, err
	}

	duration := s.now().Sub(start)
	s.recorder.RecordAnalysis(analysis, duration)
	s.log.LogInfo(ctx, "dump analyzed",
		zap.String("format", string(analysis.Format)),
		zap.Int("peer_connections", len(analysis.Session.PeerConnections)),
		zap.Int("tracks", analysis.Session.TrackCount()),
		zap.Int("overall_score", analysis.Summary.OverallScore),
		zap.Int("issues", len(analysis.Summary.Issues)),
		zap.Duration("duration", duration),
	)
	return analysis, nil
}

func (s *AnalysisService) analyze(ctx context.Context, id domain.AnalysisID, content string, format domain.DumpFormat) (*domain.Analysis, error) {
	ctx, span := tracing.StartSpan(ctx, "analysis.analyze")
	defer span.End()
	tracing.AddSpanAttributes(ctx,
		tracing.AnalysisIDKey.String(string(id)),
		tracing.DumpSizeKey.Int(len(content)),
	)

	if format == "" {
		detected, err := s.Detect(ctx, content)
		if err != nil {
			tracing.RecordError(ctx, err)
			return nil, err
		}
		format = detected
	} else if err := validation.ValidateDump(content, s.maxBytes); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	session, err := s.parse(ctx, content, format)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	_, summarizeSpan := tracing.TraceAnalysis(ctx, "summarize")
	summary := s.summary.Summarize(session)
	summarizeSpan.End()

	tracing.AddSpanAttributes(ctx,
		tracing.FormatKey.String(string(session.Format)),
		tracing.TrackCountKey.Int(session.TrackCount()),
		tracing.ScoreKey.Int(summary.OverallScore),
	)

	return &domain.Analysis{
		ID:         id,
		Format:     session.Format,
		Session:    session,
		Summary:    summary,
		SizeBytes:  len(content),
		AnalyzedAt: s.now().UTC(),
	}, nil
}

func (s *AnalysisService) parse(ctx context.Context, content string, format domain.DumpFormat) (*domain.Session, error) {
	_, span := tracing.TraceAnalysis(ctx, "parse")
	defer span.End()

	session, err := s.parser.ParseAs(format, content)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return session, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyDump):
		return ReasonEmptyDump
	case errors.Is(err, domain.ErrDumpTooLarge):
		return ReasonDumpTooLarge
	case errors.Is(err, domain.ErrUnrecognizedFormat):
		return ReasonUnrecognizedFormat
	case errors.Is(err, domain.ErrMalformedDocument):
		return ReasonMalformedDocument
	case errors.Is(err, domain.ErrNotExpectedFormat):
		return ReasonNotExpectedFormat
	}
	return ReasonInternal
}

type noopRecorder struct{}

func (noopRecorder) RecordAnalysis(*domain.Analysis, time.Duration) {}
func (noopRecorder) RecordFailure(string)                          {}
