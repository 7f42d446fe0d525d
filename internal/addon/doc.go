// Package addon models the entries of a Stremio addon collection: the
// transport url plus the manifest describing which resources, media
// types, and id prefixes an addon serves.
//
// Filter implements the resource routing rule the apps use when they
// fan a request out to installed addons. Manifest validation is out of
// scope; whatever the collection endpoint returns is taken at face
// value.
package addon
