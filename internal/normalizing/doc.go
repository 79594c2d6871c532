// Package normalizing turns downloaded map archives into sanitized,
// editor-ready folders.
//
// The pipeline runs two passes over the maps directory: extract every zip
// into its canonical folder, then sanitize every map folder (info metadata
// and difficulty documents). Every failure is scoped to its archive or
// file; siblings always get processed.
package normalizing
