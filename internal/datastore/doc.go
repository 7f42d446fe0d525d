// Package datastore keeps the local mirror of a Stremio library
// collection: an in-memory map of items backed by a JSON file and
// reconciled against the remote datastore API.
//
// The mirror is the source the CLI reads from. Reconciliation is
// pull-based and cheap: the remote's (id, mtime) listing decides which
// items are stale, and only those are fetched. Local mutations are
// written through in order (memory, then file, then upload), so a
// failed upload never loses state that was already acknowledged
// locally.
package datastore
