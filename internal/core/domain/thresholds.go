package domain

// Range is a good/bad threshold pair for one metric. For lower-is-better
// metrics Good < Bad; for higher-is-better metrics Bad < Good.
type Range struct {
	Good float64
	Bad  float64
}

// BitrateTier maps a minimum resolution to a target bitrate. A track
// qualifies when its average width or height reaches the tier minimum.
type BitrateTier struct {
	MinWidth   float64
	MinHeight  float64
	TargetKbps float64
}

type Thresholds struct {
	JitterMs      Range
	RoundTripMs   Range
	PacketLossPct Range
	FPS           Range
	FreezeCount   Range

	// BitrateTiers are checked in order; the first match wins.
	BitrateTiers    []BitrateTier
	FallbackKbps    float64
	BitrateBadRatio float64
}

// DefaultThresholds returns a fresh copy of the built-in threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		JitterMs:      Range{Good: 30, Bad: 100},
		RoundTripMs:   Range{Good: 300, Bad: 600},
		PacketLossPct: Range{Good: 2, Bad: 5},
		FPS:           Range{Good: 30, Bad: 10},
		FreezeCount:   Range{Good: 0, Bad: 3},
		BitrateTiers: []BitrateTier{
			{MinWidth: 1280, MinHeight: 720, TargetKbps: 1500},
			{MinWidth: 640, MinHeight: 480, TargetKbps: 600},
		},
		FallbackKbps:    300,
		BitrateBadRatio: 0.5,
	}
}

// Clone returns a deep copy so callers can adjust thresholds without
// touching shared values.
func (t Thresholds) Clone() Thresholds {
	c := t
	c.BitrateTiers = append([]BitrateTier(nil), t.BitrateTiers...)
	return c
}

// TargetKbps returns the bitrate target for the given average frame size.
func (t Thresholds) TargetKbps(width, height float64) float64 {
	for _, tier := range t.BitrateTiers {
		if width >= tier.MinWidth || height >= tier.MinHeight {
			return tier.TargetKbps
		}
	}
	return t.FallbackKbps
}
