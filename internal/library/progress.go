package library

// Thresholds carries the duration fractions that drive the watch state
// machine.
type Thresholds struct {
	// Watched is the fraction of an item's duration that must play in
	// one pass before the pass counts as a full watch.
	Watched float64
	// Credits is the fraction of the duration past which playback
	// counts as finished.
	Credits float64
}

// DefaultThresholds returns the fractions the Stremio apps use.
func DefaultThresholds() Thresholds {
	return Thresholds{Watched: 0.7, Credits: 0.9}
}

// UpdateProgress folds one playback tick into the state machine.
//
// Switching videos rolls the per-pass watch time into the overall
// counter and starts a fresh pass. Staying on the same video accrues
// the forward delta since the last tick; seeking backward earns
// nothing. Crossing the watched threshold flags the pass once, bumps
// the watch count, and marks the video in the bitfield when one is
// attached. Temporary items that never completed a watch fall back to
// removed, and removed items always stay temporary.
func (it *Item) UpdateProgress(offset, duration int64, videoID string, th Thresholds) error {
	s := &it.State
	it.Touch(true)

	if s.VideoID != videoID {
		s.VideoID = videoID
		s.OverallTimeWatched += s.TimeWatched
		s.TimeWatched = 0
		s.FlaggedWatched = 0
	} else {
		delta := offset - s.TimeOffset
		if delta < 0 {
			delta = 0
		}
		s.TimeWatched += delta
		s.OverallTimeWatched += delta
	}

	s.TimeOffset = offset
	s.Duration = duration

	if s.FlaggedWatched == 0 && s.Duration > 0 && float64(s.TimeWatched) >= float64(s.Duration)*th.Watched {
		s.FlaggedWatched = 1
		s.TimesWatched++
		if s.bits != nil {
			s.bits.SetVideo(videoID, true)
			serialized, err := s.bits.Serialize()
			if err != nil {
				return err
			}
			s.Watched = serialized
		}
	}

	if it.Temp && s.TimesWatched == 0 {
		it.Removed = true
	}
	if it.Removed {
		it.Temp = true
	}
	return nil
}

// FinishPlayback applies the credits rule when playback stops. Past the
// credits threshold the resume position resets, and a supplied next
// video id moves the state onto that episode with the pass counters
// rolled, leaving the actual autoplay decision to the caller. It
// reports whether playback was considered finished.
func (it *Item) FinishPlayback(nextVideoID string, th Thresholds) bool {
	s := &it.State
	if float64(s.TimeOffset) <= float64(s.Duration)*th.Credits {
		return false
	}
	s.TimeOffset = 0
	if nextVideoID != "" {
		s.VideoID = nextVideoID
		s.OverallTimeWatched += s.TimeWatched
		s.TimeWatched = 0
		s.FlaggedWatched = 0
		s.TimeOffset = 1
	}
	return true
}
