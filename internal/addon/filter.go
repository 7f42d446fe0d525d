package addon

import (
	"slices"
	"strings"
)

// Filter returns the addons able to serve a resource request. An addon
// matches when its manifest lists the resource, the media type fits
// (an empty mediaType matches anything), and the id carries one of the
// declared prefixes. Absent prefix declarations, or an empty id, leave
// the prefix check open.
func Filter(addons []*Addon, resource, mediaType, id string) []*Addon {
	var matched []*Addon
	for _, a := range addons {
		if a.serves(resource, mediaType, id) {
			matched = append(matched, a)
		}
	}
	return matched
}

func (a *Addon) serves(resource, mediaType, id string) bool {
	m := a.Manifest
	for _, r := range m.Resources {
		if r.Name != resource {
			continue
		}
		types, prefixes := r.Types, r.IDPrefixes
		if types == nil && prefixes == nil {
			// Bare-name resources constrain through the manifest level.
			types, prefixes = m.Types, m.IDPrefixes
		}
		if !typeMatches(types, mediaType) {
			continue
		}
		if !prefixMatches(prefixes, id) {
			continue
		}
		return true
	}
	return false
}

func typeMatches(types []string, mediaType string) bool {
	if mediaType == "" {
		return true
	}
	return slices.Contains(types, mediaType)
}

func prefixMatches(prefixes []string, id string) bool {
	if prefixes == nil || id == "" {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
