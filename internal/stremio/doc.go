// Package stremio is the HTTP client for the Stremio API and for addon
// resource endpoints.
//
// API calls go through Post, which wraps the JSON-RPC-ish convention
// the service uses: POST {base}/api/{path} with the auth key injected
// into the payload, and a {"result": ...} envelope around every
// response. Typed helpers cover the datastore collection calls the
// library cache needs (DatastoreMeta, DatastoreGet, DatastorePut) and
// the installed addon collection, which is cached client-side for a
// few minutes the way the apps do.
//
// Addon resources are plain GETs against {addonBase}/{resource}/...
// via Get. Every remote failure, from network errors to non-2xx
// statuses to undecodable bodies, wraps ErrTransport; retry policy is
// the caller's business.
package stremio
