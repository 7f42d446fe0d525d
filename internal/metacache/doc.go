// Package metacache persists fetched metadata payloads in a local
// SQLite database so repeated runs can answer lookups without hitting
// every meta addon again.
//
// Entries are keyed by catalog id and carry the time they were
// fetched; readers decide how much staleness they accept. A nil Store
// is a usable no-op, which keeps callers free of cache-availability
// branches.
package metacache
