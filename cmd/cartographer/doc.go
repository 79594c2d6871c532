// Package main hosts the Cartographer CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the level generation pipeline in
// stages: playlist download, browser-driven generation, and archive
// normalization. It centralizes configuration resolution, run locking, and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
