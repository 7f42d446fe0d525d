// Package meta models Stremio metadata objects and fetches them from
// the user's meta-serving addons, merging the responses in addon
// priority order.
package meta
