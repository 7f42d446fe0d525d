package library

import (
	"fmt"
)

// Item is one media item's library record. The field names and JSON
// layout mirror the datastore's libraryItem collection.
type Item struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Poster      string    `json:"poster,omitempty"`
	PosterShape string    `json:"posterShape,omitempty"`
	Removed     bool      `json:"removed"`
	Temp        bool      `json:"temp"`
	CTime       Timestamp `json:"_ctime"`
	MTime       Timestamp `json:"_mtime"`
	State       State     `json:"state"`
}

// NewItem synthesizes a minimal local record for an item the cache has
// never seen. It stays removed and temporary until the user acts on it.
func NewItem(id, name, mediaType, poster, posterShape string) *Item {
	return &Item{
		ID:          id,
		Name:        name,
		Type:        mediaType,
		Poster:      poster,
		PosterShape: posterShape,
		Removed:     true,
		Temp:        true,
	}
}

// Touch stamps the modification time, setting the creation time on the
// first touch. markLastWatched also refreshes State.LastWatched, which
// is additionally set whenever it is still empty.
func (it *Item) Touch(markLastWatched bool) {
	ts := now()
	it.MTime = ts
	if it.CTime.IsZero() {
		it.CTime = ts
	}
	if markLastWatched || it.State.LastWatched.IsZero() {
		it.State.LastWatched = ts
	}
}

// SetInLibrary adds the item to or removes it from the user's library.
// Either way the item stops being temporary: the user has acted on it.
func (it *Item) SetInLibrary(present bool) {
	it.Removed = !present
	it.Temp = false
}

// MarkWatched overrides watched state by hand. With a video id it flips
// that video's bit and re-serializes the bitfield, which must have been
// attached first. Without one it sets the whole item's watch count to
// one or zero.
func (it *Item) MarkWatched(watched bool, videoID string) error {
	s := &it.State
	if videoID == "" {
		if watched {
			s.TimesWatched = 1
		} else {
			s.TimesWatched = 0
		}
		return nil
	}
	if s.bits == nil {
		return fmt.Errorf("mark %s watched: no video list attached", videoID)
	}
	s.bits.SetVideo(videoID, watched)
	serialized, err := s.bits.Serialize()
	if err != nil {
		return err
	}
	s.Watched = serialized
	return nil
}

// ClearProgress resets the resume position without touching watch
// counters or history.
func (it *Item) ClearProgress() {
	it.State.TimeOffset = 0
}

// DismissNotification records that the user has seen the item's new
// episodes, by refreshing the last-watched stamp they are compared to.
func (it *Item) DismissNotification() {
	it.Touch(true)
}
