package main

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stremsync/internal/library"
)

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// mediaTypeFor picks the metadata catalog type for an item. A cached
// record knows its own type; otherwise an explicit flag wins, and
// failing that the video id decides, since episode ids carry
// season and episode segments.
func mediaTypeFor(item *library.Item, videoID, flagValue string) string {
	if item != nil && item.Type != "" {
		return item.Type
	}
	if flagValue != "" {
		return flagValue
	}
	if strings.Contains(videoID, ":") {
		return "series"
	}
	return "movie"
}

// parseSeconds reads a non-negative whole number of seconds.
func parseSeconds(arg string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid seconds value %q", arg)
	}
	return v, nil
}

func formatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatTimestamp(ts library.Timestamp) string {
	if ts.IsZero() {
		return "never"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func formatDate(ts library.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02")
}

func displayName(item *library.Item) string {
	if item.Name != "" {
		return item.Name
	}
	return item.ID
}

func maskAuthKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
