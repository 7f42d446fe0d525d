// Package library models the records stored in the Stremio datastore's
// libraryItem collection: one Item per media item, carrying identity,
// library membership flags, and a State with playback progress and the
// compact watched history.
//
// Progress tracking follows the datastore's conventions: watching past
// a fraction of an item's duration counts it as watched once per pass,
// and crossing the credits threshold finishes playback and optionally
// advances a series to its next episode. The fractions travel in a
// Thresholds value so hosts can tune them.
//
// JSON field names match the datastore wire format (_id, _ctime,
// _mtime, state.video_id, ...), so Items marshal directly into
// datastore payloads and back.
package library
