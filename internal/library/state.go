package library

import (
	"stremsync/internal/bitfield"
)

// State is the playback half of a library item. Counters are seconds;
// FlaggedWatched is 0 or 1 so it serializes the way the remote
// datastore stores it.
type State struct {
	LastWatched        Timestamp `json:"lastWatched"`
	TimeWatched        int64     `json:"timeWatched"`
	TimeOffset         int64     `json:"timeOffset"`
	OverallTimeWatched int64     `json:"overallTimeWatched"`
	TimesWatched       int       `json:"timesWatched"`
	FlaggedWatched     int       `json:"flaggedWatched"`
	Duration           int64     `json:"duration"`
	VideoID            string    `json:"video_id,omitempty"`
	Watched            string    `json:"watched,omitempty"`
	NoNotif            bool      `json:"noNotif"`

	// bits is the decoded form of Watched. It stays nil until
	// AttachVideoIDs supplies the item's video list, which is not known
	// without external metadata.
	bits *bitfield.Watched
}

// AttachVideoIDs materializes the watched bitfield for the given video
// list, decoding any serialized history the state carries. A malformed
// Watched string surfaces as bitfield.ErrFormat; the caller decides
// whether to treat that as "no history".
func (s *State) AttachVideoIDs(ids []string) error {
	if s.Watched == "" {
		s.bits = bitfield.FromArray(nil, ids)
		return nil
	}
	bits, err := bitfield.Parse(s.Watched, ids)
	if err != nil {
		return err
	}
	s.bits = bits
	return nil
}

// HasBitfield reports whether AttachVideoIDs has run.
func (s *State) HasBitfield() bool {
	return s.bits != nil
}

// VideoWatched reports whether the bitfield marks the given video id.
// It reads false when no bitfield is attached.
func (s *State) VideoWatched(id string) bool {
	if s.bits == nil {
		return false
	}
	return s.bits.GetVideo(id)
}
