// Package naming canonicalizes the noisy file names produced by Beat Sage
// and upstream audio sources into stable, human-facing identifiers.
//
// The canonical name serves double duty: it is the folder name an extracted
// map lives under, and the deduplication key that lets repeated runs skip
// work that already happened. Canonicalization is a pure, deterministic,
// idempotent string transformation.
package naming
