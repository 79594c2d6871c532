// Package generation drives the remote map-generation service through its
// web UI, one audio file at a time.
//
// Machine walks a single item through the fixed interaction sequence
// (navigate, upload, personalize, trigger, await download, save).
// Pipeline enumerates the audio files, applies the already-generated skip,
// runs the machine per item, and aggregates outcomes. Per-item failures
// never escape the item; only a broken browser session aborts the run.
package generation
