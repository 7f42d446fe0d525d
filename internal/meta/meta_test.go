package meta

import (
	"encoding/json"
	"testing"
)

func TestVideoUnmarshalAcceptsBothSpellings(t *testing.T) {
	cases := []struct {
		name        string
		payload     string
		wantTitle   string
		wantEpisode int
	}{
		{
			name:        "modern name and number",
			payload:     `{"id": "tt0903747:1:1", "name": "Pilot", "season": 1, "number": 1}`,
			wantTitle:   "Pilot",
			wantEpisode: 1,
		},
		{
			name:        "legacy title and episode",
			payload:     `{"id": "tt0903747:1:2", "title": "Cat's in the Bag...", "season": 1, "episode": 2}`,
			wantTitle:   "Cat's in the Bag...",
			wantEpisode: 2,
		},
		{
			name:        "both spellings prefer the canonical one",
			payload:     `{"id": "tt0903747:1:3", "title": "Canonical", "name": "Alias", "episode": 3, "number": 9}`,
			wantTitle:   "Canonical",
			wantEpisode: 3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v Video
			if err := json.Unmarshal([]byte(tc.payload), &v); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if v.Title != tc.wantTitle {
				t.Errorf("Title = %q, want %q", v.Title, tc.wantTitle)
			}
			if v.Episode != tc.wantEpisode {
				t.Errorf("Episode = %d, want %d", v.Episode, tc.wantEpisode)
			}
		})
	}
}

func TestVideoIDsPreserveListOrder(t *testing.T) {
	m := &Meta{Videos: []Video{
		{ID: "tt0903747:0:1"},
		{ID: "tt0903747:1:1"},
		{ID: "tt0903747:1:2"},
	}}
	ids := m.VideoIDs()
	want := []string{"tt0903747:0:1", "tt0903747:1:1", "tt0903747:1:2"}
	if len(ids) != len(want) {
		t.Fatalf("len = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestNextEpisode(t *testing.T) {
	m := &Meta{Videos: []Video{
		{ID: "s1e1", Title: "Pilot"},
		{ID: "s1e2", Title: "Two"},
		{ID: "s1e3", Title: "Three"},
	}}
	if next := m.NextEpisode("s1e1"); next == nil || next.ID != "s1e2" {
		t.Fatalf("NextEpisode(s1e1) = %+v, want s1e2", next)
	}
	if next := m.NextEpisode("s1e3"); next != nil {
		t.Fatalf("NextEpisode on the final entry = %+v, want nil", next)
	}
	if next := m.NextEpisode("unknown"); next != nil {
		t.Fatalf("NextEpisode(unknown) = %+v, want nil", next)
	}
}

func TestFillFromKeepsReceiverFields(t *testing.T) {
	m := &Meta{ID: "tt1", Name: "Primary", Videos: []Video{{ID: "tt1:1:1"}}}
	m.fillFrom(&Meta{Name: "Secondary", Poster: "https://img.example/p.jpg", Videos: []Video{{ID: "other"}}})
	if m.Name != "Primary" {
		t.Fatalf("Name = %q, want Primary", m.Name)
	}
	if m.Poster != "https://img.example/p.jpg" {
		t.Fatalf("Poster = %q, want filled from the secondary response", m.Poster)
	}
	if len(m.Videos) != 1 || m.Videos[0].ID != "tt1:1:1" {
		t.Fatalf("Videos = %+v, want the primary list kept wholesale", m.Videos)
	}
}

func TestMergeResponsesSkipsFailures(t *testing.T) {
	merged := mergeResponses([]*Meta{
		nil,
		{ID: "tt1", Name: "First"},
		{ID: "tt1", Name: "Second", Description: "only here"},
	})
	if merged == nil {
		t.Fatal("merged = nil")
	}
	if merged.Name != "First" {
		t.Fatalf("Name = %q, want the earliest successful response to win", merged.Name)
	}
	if merged.Description != "only here" {
		t.Fatalf("Description = %q, want gap filled from the later response", merged.Description)
	}
	if mergeResponses([]*Meta{nil, nil}) != nil {
		t.Fatal("merging only failures should yield nil")
	}
}
