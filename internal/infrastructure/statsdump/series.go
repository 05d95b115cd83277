package statsdump

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"rtcdiag/internal/core/domain"
)

// asNumber accepts only finite JSON numbers.
func asNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceNumber accepts finite numbers and strings that parse as one.
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return asNumber(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return asNumber(f)
	}
	return 0, false
}

// record is one loosely-typed stat object.
type record map[string]any

// number returns the first of names holding a finite number.
func (r record) number(names ...string) (float64, bool) {
	for _, name := range names {
		if f, ok := asNumber(r[name]); ok {
			return f, true
		}
	}
	return 0, false
}

func (r record) str(name string) (string, bool) {
	s, ok := r[name].(string)
	return s, ok
}

// bitrateKbps converts the growth of a cumulative byte counter into kbps.
// A shrinking counter (reset) or a non-advancing clock yields no sample.
func bitrateKbps(prevBytes, bytes, prevMs, ms float64) (float64, bool) {
	deltaBytes := bytes - prevBytes
	deltaMs := ms - prevMs
	if deltaMs <= 0 || deltaBytes < 0 {
		return 0, false
	}
	return deltaBytes * 8 / deltaMs, true
}

// byteCounter remembers the previous sample of a cumulative byte counter.
type byteCounter struct {
	seen  bool
	bytes float64
	at    float64
}

// observe records a counter sample taken at absolute time at and returns the
// bitrate since the previous one, when it can be derived.
func (c *byteCounter) observe(bytes, at float64) (float64, bool) {
	var (
		kbps float64
		ok   bool
	)
	if c.seen {
		kbps, ok = bitrateKbps(c.bytes, bytes, c.at, at)
	}
	c.seen = true
	c.bytes = bytes
	c.at = at
	return kbps, ok
}

// bitrateSeries derives a bitrate series from a full counter sequence. Each
// sample is keyed at the later of the two timestamps it was derived from.
func bitrateSeries(counter, timestamps []float64) domain.MetricSeries {
	var series domain.MetricSeries
	n := min(len(counter), len(timestamps))
	for i := 1; i < n; i++ {
		if kbps, ok := bitrateKbps(counter[i-1], counter[i], timestamps[i-1], timestamps[i]); ok {
			series.Append(timestamps[i], kbps)
		}
	}
	return series
}

// lossPercent returns lost/(lost+received) as a percentage.
func lossPercent(lost, received float64) (float64, bool) {
	total := lost + received
	if total <= 0 {
		return 0, false
	}
	return lost / total * 100, true
}

// lossSeries pairs lost and received counters, truncating to the shortest input.
func lossSeries(lost, received, timestamps []float64) domain.MetricSeries {
	var series domain.MetricSeries
	n := min(len(lost), len(received), len(timestamps))
	for i := 0; i < n; i++ {
		if pct, ok := lossPercent(lost[i], received[i]); ok {
			series.Append(timestamps[i], pct)
		}
	}
	return series
}

var calendarLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
}

// parseCalendarTime returns s as epoch milliseconds.
func parseCalendarTime(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Date.toString appends a zone name, e.g. "GMT+0100 (Central European Standard Time)".
	if i := strings.Index(s, " ("); i > 0 {
		s = s[:i]
	}
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixNano()) / float64(time.Millisecond), true
		}
	}
	return 0, false
}

// buildTimestamps reconstructs n sample times from optional series bounds.
// Interpolated times are expressed relative to origin. When the bounds are
// missing, unparseable or reversed the sample index is used instead.
func buildTimestamps(start, end string, n int, origin float64) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}
	timestamps := make([]float64, n)
	startMs, okStart := parseCalendarTime(start)
	endMs, okEnd := parseCalendarTime(end)
	if okStart && okEnd && endMs >= startMs {
		step := (endMs - startMs) / float64(n-1)
		for i := range timestamps {
			timestamps[i] = startMs - origin + step*float64(i)
		}
		return timestamps
	}
	for i := range timestamps {
		timestamps[i] = float64(i)
	}
	return timestamps
}

// rawValues unpacks a values payload that is either a JSON array or a
// string holding one. Anything else yields nothing.
func rawValues(raw json.RawMessage) []any {
	if isNull(raw) {
		return nil
	}
	var direct []any
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	encoded = strings.TrimSpace(encoded)
	if !strings.HasPrefix(encoded, "[") {
		return nil
	}
	var nested []any
	if err := json.Unmarshal([]byte(encoded), &nested); err != nil {
		return nil
	}
	return nested
}

// numericValues returns the finite numeric entries of a values payload.
func numericValues(raw json.RawMessage) []float64 {
	values := rawValues(raw)
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := coerceNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// firstString returns the first entry of a values payload when it is a string.
func firstString(raw json.RawMessage) (string, bool) {
	values := rawValues(raw)
	if len(values) == 0 {
		return "", false
	}
	s, ok := values[0].(string)
	return s, ok
}

const leadingSpace = " \t\r\n\uFEFF"

// trimLeading drops leading whitespace and a byte order mark.
func trimLeading(content string) string {
	return strings.TrimLeft(content, leadingSpace)
}
