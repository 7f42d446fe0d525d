package addon

import "testing"

func testCollection() []*Addon {
	return []*Addon{
		{
			TransportURL: "https://cinemeta.example/manifest.json",
			Manifest: Manifest{
				ID:         "com.example.cinemeta",
				Name:       "Cinemeta",
				Resources:  []Resource{{Name: "catalog"}, {Name: "meta"}},
				Types:      []string{"movie", "series"},
				IDPrefixes: []string{"tt"},
			},
		},
		{
			TransportURL: "https://kitsu.example/manifest.json",
			Manifest: Manifest{
				ID:   "com.example.anime",
				Name: "Anime",
				Resources: []Resource{
					{Name: "meta", Types: []string{"anime"}, IDPrefixes: []string{"kitsu:"}},
				},
				Types: []string{"anime"},
			},
		},
		{
			TransportURL: "https://streams.example/manifest.json",
			Manifest: Manifest{
				ID:        "com.example.streams",
				Name:      "Streams",
				Resources: []Resource{{Name: "stream"}},
				Types:     []string{"movie", "series", "anime"},
			},
		},
	}
}

func TestFilter(t *testing.T) {
	addons := testCollection()

	tests := []struct {
		name      string
		resource  string
		mediaType string
		id        string
		want      []string
	}{
		{"meta for imdb series", "meta", "series", "tt0903747:1:1", []string{"com.example.cinemeta"}},
		{"meta for kitsu id", "meta", "anime", "kitsu:44042", []string{"com.example.anime"}},
		{"meta wrong prefix", "meta", "anime", "tt0903747", nil},
		{"stream unconstrained prefixes", "stream", "movie", "tt0133093", []string{"com.example.streams"}},
		{"unknown resource", "subtitles", "movie", "tt0133093", nil},
		{"type mismatch", "meta", "channel", "tt0903747", nil},
		{"empty media type matches all", "meta", "", "tt0903747", []string{"com.example.cinemeta"}},
		{"empty id skips prefix check", "meta", "series", "", []string{"com.example.cinemeta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(addons, tt.resource, tt.mediaType, tt.id)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() matched %d addons, want %d", len(got), len(tt.want))
			}
			for i, a := range got {
				if a.Manifest.ID != tt.want[i] {
					t.Errorf("match[%d] = %s, want %s", i, a.Manifest.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterEmptyPrefixListNeverMatches(t *testing.T) {
	addons := []*Addon{{
		Manifest: Manifest{
			ID:         "com.example.closed",
			Resources:  []Resource{{Name: "meta"}},
			Types:      []string{"movie"},
			IDPrefixes: []string{},
		},
	}}
	// A declared-but-empty prefix list matches no id, unlike an absent
	// one.
	if got := Filter(addons, "meta", "movie", "tt1"); len(got) != 0 {
		t.Fatalf("Filter() = %d matches, want 0", len(got))
	}
	if got := Filter(addons, "meta", "movie", ""); len(got) != 1 {
		t.Fatalf("Filter() with empty id = %d matches, want 1", len(got))
	}
}
