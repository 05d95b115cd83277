package statsdump

import (
	"github.com/pion/webrtc/v3"

	"rtcdiag/internal/core/domain"
)

// trackDirection maps an RTP stream stat type to the direction of the track
// it describes. Only inbound-rtp and outbound-rtp stats own a track.
func trackDirection(statType string) (domain.TrackDirection, bool) {
	switch webrtc.StatsType(statType) {
	case webrtc.StatsTypeInboundRTP:
		return domain.DirectionInbound, true
	case webrtc.StatsTypeOutboundRTP:
		return domain.DirectionOutbound, true
	}
	return "", false
}

func isRemoteInbound(statType string) bool {
	return webrtc.StatsType(statType) == webrtc.StatsTypeRemoteInboundRTP
}

// trackKind accepts the media kinds a track can have.
func trackKind(kind string) (domain.TrackKind, bool) {
	switch webrtc.NewRTPCodecType(kind) {
	case webrtc.RTPCodecTypeAudio:
		return domain.KindAudio, true
	case webrtc.RTPCodecTypeVideo:
		return domain.KindVideo, true
	}
	return "", false
}

func newTrack(id string, kind domain.TrackKind, direction domain.TrackDirection) *domain.Track {
	return &domain.Track{ID: id, Kind: kind, Direction: direction}
}

// broadcastTargets returns the inbound tracks of pc with the given kind.
func broadcastTargets(tracks []*domain.Track, kind domain.TrackKind) []*domain.Track {
	var targets []*domain.Track
	for _, t := range tracks {
		if t.Kind == kind && t.Direction == domain.DirectionInbound {
			targets = append(targets, t)
		}
	}
	return targets
}
