// Package main hosts the stremsync CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into
// operations on the local datastore cache and the Stremio API behind
// it: library listing, watched-state edits, playback progress ticks,
// metadata lookups, and configuration scaffolding. Configuration
// resolution, logging, and service wiring live in the shared command
// context so the subcommands stay declarative.
//
// Logs go to stderr; stdout carries only command output.
package main
