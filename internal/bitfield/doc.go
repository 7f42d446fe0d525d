// Package bitfield implements the compact watched-state representation
// used by the Stremio datastore: booleans packed eight per byte,
// zlib-compressed, and serialized together with an anchor video id so
// bit positions survive changes to an item's video list.
//
// # Wire format
//
// A serialized watched bitfield is a single string:
//
//	<anchorVideoId>:<anchorLength>:<base64(zlib(packed bits))>
//
// The anchor names the last watched video at serialization time and
// anchorLength is its one-based position. When the video list later
// grows or shifts, Parse realigns the old bit positions against the
// current list using the anchor as the pivot. Video ids may themselves
// contain ':' characters, so the string is split from the right.
//
// Field is the packed boolean array; Watched pairs a Field with the
// ordered video id list and carries the anchor logic.
package bitfield
