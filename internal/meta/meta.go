package meta

import (
	"encoding/json"

	"stremsync/internal/library"
)

// Meta is one catalog object as served by a meta addon. Only the
// fields stremsync consumes are modelled; addons ship plenty more.
type Meta struct {
	ID          string   `json:"id"`
	Type        string   `json:"type,omitempty"`
	Name        string   `json:"name,omitempty"`
	Poster      string   `json:"poster,omitempty"`
	PosterShape string   `json:"posterShape,omitempty"`
	Background  string   `json:"background,omitempty"`
	Logo        string   `json:"logo,omitempty"`
	Description string   `json:"description,omitempty"`
	ReleaseInfo string   `json:"releaseInfo,omitempty"`
	IMDBRating  string   `json:"imdbRating,omitempty"`
	Runtime     string   `json:"runtime,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Videos      []Video  `json:"videos,omitempty"`
}

// Video is one entry of a series meta's episode list. The list order
// is authoritative: watched-state bit positions refer to it.
type Video struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	Season    int               `json:"season,omitempty"`
	Episode   int               `json:"episode,omitempty"`
	Released  library.Timestamp `json:"released"`
	Thumbnail string            `json:"thumbnail,omitempty"`
	Overview  string            `json:"overview,omitempty"`
}

// UnmarshalJSON tolerates the two field spellings found in the wild:
// newer addons ship "name"/"number" where older ones ship
// "title"/"episode".
func (v *Video) UnmarshalJSON(data []byte) error {
	type video Video
	aux := struct {
		*video
		Name   string `json:"name"`
		Number int    `json:"number"`
	}{video: (*video)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if v.Title == "" {
		v.Title = aux.Name
	}
	if v.Episode == 0 {
		v.Episode = aux.Number
	}
	return nil
}

// VideoIDs returns the episode ids in list order, the exact order the
// watched bitfield indexes.
func (m *Meta) VideoIDs() []string {
	ids := make([]string, len(m.Videos))
	for i, v := range m.Videos {
		ids[i] = v.ID
	}
	return ids
}

// NextEpisode returns the video following videoID in list order, or
// nil when videoID is the last entry or not part of the list.
func (m *Meta) NextEpisode(videoID string) *Video {
	for i := range m.Videos {
		if m.Videos[i].ID == videoID && i+1 < len(m.Videos) {
			return &m.Videos[i+1]
		}
	}
	return nil
}

// fillFrom copies fields the receiver is missing from a lower-priority
// response. Populated fields are never overwritten, and the episode
// list is taken wholesale from whichever response supplied it first.
func (m *Meta) fillFrom(other *Meta) {
	if m.ID == "" {
		m.ID = other.ID
	}
	if m.Type == "" {
		m.Type = other.Type
	}
	if m.Name == "" {
		m.Name = other.Name
	}
	if m.Poster == "" {
		m.Poster = other.Poster
	}
	if m.PosterShape == "" {
		m.PosterShape = other.PosterShape
	}
	if m.Background == "" {
		m.Background = other.Background
	}
	if m.Logo == "" {
		m.Logo = other.Logo
	}
	if m.Description == "" {
		m.Description = other.Description
	}
	if m.ReleaseInfo == "" {
		m.ReleaseInfo = other.ReleaseInfo
	}
	if m.IMDBRating == "" {
		m.IMDBRating = other.IMDBRating
	}
	if m.Runtime == "" {
		m.Runtime = other.Runtime
	}
	if len(m.Genres) == 0 {
		m.Genres = other.Genres
	}
	if len(m.Videos) == 0 {
		m.Videos = other.Videos
	}
}
