// Package sanitize strips vendor-specific fields from extracted map data.
//
// Beat Sage stamps its own authorship and `_customData` blocks into the
// Info.dat metadata and every difficulty document. Sanitization rewrites
// `_levelAuthorName`, drops `_creator` and `_customData`, and leaves every
// other field untouched — including member order, which is why documents
// are edited in place as raw JSON (sjson) instead of round-tripping
// through Go maps.
package sanitize
