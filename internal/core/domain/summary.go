package domain

// MetricSummary carries statistics over the raw values of one series.
// Nil fields mean the series was empty.
type MetricSummary struct {
	Average *float64 `json:"average,omitempty"`
	P50     *float64 `json:"p50,omitempty"`
	P95     *float64 `json:"p95,omitempty"`
}

type TrackSummary struct {
	PeerConnectionID string                       `json:"peerConnectionId"`
	TrackID          string                       `json:"trackId"`
	Kind             TrackKind                    `json:"kind"`
	Direction        TrackDirection               `json:"direction"`
	Score            int                          `json:"score"`
	Metrics          map[MetricName]MetricSummary `json:"metrics"`
	Track            *Track                       `json:"-"`
}

// MetricScore is the 0-100 sub-score of one observed metric of a track.
type MetricScore struct {
	Metric    MetricName `json:"metric"`
	Aggregate float64    `json:"aggregate"`
	Score     int        `json:"score"`
}

type Issue struct {
	PeerConnectionID string         `json:"peerConnectionId"`
	TrackID          string         `json:"trackId"`
	Kind             TrackKind      `json:"kind"`
	Direction        TrackDirection `json:"direction"`
	Metric           MetricName     `json:"metric"`
	Score            int            `json:"score"`
	Detail           string         `json:"detail"`
}

type SessionSummary struct {
	OverallScore   int            `json:"overallScore"`
	Issues         []Issue        `json:"issues"`
	TrackSummaries []TrackSummary `json:"trackSummaries"`
}
