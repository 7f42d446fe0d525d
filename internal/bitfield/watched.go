package bitfield

import (
	"encoding/base64"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Watched maps an ordered list of video ids onto a Field: ids[k]
// corresponds to bit k, and the field's logical length always equals
// the id count.
type Watched struct {
	flags *Field
	ids   []string
}

// FromArray builds a bitfield sized to ids, seeding bit k from
// values[k]. A shorter values slice leaves the tail false; values
// beyond the id list are dropped because the id list is the source of
// truth for positions.
func FromArray(values []bool, ids []string) *Watched {
	flags := New(len(ids))
	for k := 0; k < len(values) && k < len(ids); k++ {
		flags.set(k, values[k])
	}
	return &Watched{flags: flags, ids: slices.Clone(ids)}
}

// Parse decodes a serialized watched string against the current video
// id list, realigning bit positions when the list has changed since the
// string was produced.
//
// The string splits from the right: the last two fields are the anchor
// length and the base64 payload, everything before them (rejoined on
// ':') is the anchor video id. An unknown anchor yields a fresh
// all-false bitfield sized to ids, since old positions cannot be
// remapped safely. A known anchor at its recorded position decodes
// directly; a drifted anchor shifts every old position by the drift
// before copying it into the new index space.
func Parse(serialized string, ids []string) (*Watched, error) {
	parts := strings.Split(serialized, ":")
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q needs anchor id, anchor length, and payload", ErrFormat, serialized)
	}

	payload := parts[len(parts)-1]
	anchorLength, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return nil, fmt.Errorf("%w: anchor length %q is not an integer", ErrFormat, parts[len(parts)-2])
	}
	if anchorLength < 1 {
		return nil, fmt.Errorf("%w: anchor length %d", ErrFormat, anchorLength)
	}
	anchorID := strings.Join(parts[:len(parts)-2], ":")

	anchorIdx := slices.Index(ids, anchorID)
	if anchorIdx == -1 {
		return &Watched{flags: New(len(ids)), ids: slices.Clone(ids)}, nil
	}

	packed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload base64: %w", ErrFormat, err)
	}

	// How far the anchor drifted between the serialization snapshot and
	// the current id ordering.
	offset := (anchorLength - 1) - anchorIdx

	if offset == 0 {
		flags, err := FromPacked(packed, len(ids))
		if err != nil {
			return nil, err
		}
		return &Watched{flags: flags, ids: slices.Clone(ids)}, nil
	}

	prev, err := FromPacked(packed, anchorLength)
	if err != nil {
		return nil, err
	}
	flags := New(len(ids))
	for i := range ids {
		if src := i + offset; src >= 0 && src < prev.length {
			flags.set(i, prev.Get(src))
		}
	}
	return &Watched{flags: flags, ids: slices.Clone(ids)}, nil
}

// Len reports the number of video id slots.
func (w *Watched) Len() int {
	return w.flags.Len()
}

// Get reports the bit at position idx.
func (w *Watched) Get(idx int) bool {
	return w.flags.Get(idx)
}

// Set writes the bit at position idx.
func (w *Watched) Set(idx int, v bool) error {
	return w.flags.Set(idx, v)
}

// GetVideo reports whether the given video id is watched. Unknown ids
// read as false.
func (w *Watched) GetVideo(id string) bool {
	idx := slices.Index(w.ids, id)
	if idx == -1 {
		return false
	}
	return w.flags.Get(idx)
}

// SetVideo marks the given video id. Unknown ids are ignored because
// the caller's id list decides which videos exist.
func (w *Watched) SetVideo(id string, v bool) {
	idx := slices.Index(w.ids, id)
	if idx == -1 {
		return
	}
	// In range by the length invariant.
	w.flags.set(idx, v)
}

// Serialize renders the wire string, anchoring on the last watched
// position. When nothing is watched the anchor still falls back to the
// first id with length 1; remote decoders depend on that exact shape,
// so it is preserved as is.
func (w *Watched) Serialize() (string, error) {
	if len(w.ids) == 0 {
		return "", fmt.Errorf("serialize watched state: no video ids")
	}
	packed, err := w.flags.Packed()
	if err != nil {
		return "", err
	}
	lastIdx := w.flags.LastIndexOf(true)
	if lastIdx < 0 {
		lastIdx = 0
	}
	return fmt.Sprintf("%s:%d:%s", w.ids[lastIdx], lastIdx+1, base64.StdEncoding.EncodeToString(packed)), nil
}
