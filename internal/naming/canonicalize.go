package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// vendorPrefix is prepended by Beat Sage to every archive it serves.
const vendorPrefix = "Beat Sage_"

var (
	// trailingParenPattern matches one final parenthesized metadata block,
	// e.g. " (v2-flow HEE+,S9,DO)" at the end of an archive stem.
	trailingParenPattern = regexp.MustCompile(`\s*\([^()]*\)$`)

	// audioExtPattern matches embedded audio extension tokens anywhere in
	// the string, e.g. "Song.mp3 - Artist".
	audioExtPattern = regexp.MustCompile(`(?i)\.(m4a|mp3|wav|ogg|flac|aac)\b`)

	// bracketTagPattern matches non-nested bracketed tags like
	// "[Official Video]".
	bracketTagPattern = regexp.MustCompile(`\s*\[[^\]]*\]`)

	// wrappedFragmentPattern matches a single-level parenthesized fragment
	// to unwrap, e.g. "(The Forgotten People)".
	wrappedFragmentPattern = regexp.MustCompile(`\(([^()]+)\)`)

	whitespaceRunPattern = regexp.MustCompile(`\s{2,}`)
)

// segmentSeparator splits "Artist - Title" style names. The spaces are part
// of the separator so hyphenated words survive.
const segmentSeparator = " - "

// Canonicalize derives the canonical name for a raw archive or track stem.
//
// The transformation steps run in a fixed order; each step consumes the
// previous step's output:
//
//  1. Unicode NFC normalization, so composed and decomposed spellings of
//     the same name produce one dedup key.
//  2. Strip the literal "Beat Sage_" vendor prefix.
//  3. Remove embedded audio extension tokens (".mp3" etc.) anywhere.
//  4. Strip one trailing parenthesized metadata block.
//  5. Remove bracketed tags anywhere.
//  6. Unwrap remaining parenthesized fragments.
//  7. Collapse "Artist - Title - Artist" to "Title - Artist".
//  8. Collapse whitespace runs and trim.
//
// Extension tokens go before the trailing metadata block: Beat Sage embeds
// the uploaded file's name verbatim, so the ".m4a" can land after the
// "(v2-flow ...)" block and mask it from the anchored pattern.
//
// Canonicalize is idempotent: applying it to its own output is a no-op.
func Canonicalize(raw string) string {
	name := norm.NFC.String(raw)

	if strings.HasPrefix(name, vendorPrefix) {
		name = strings.TrimSpace(strings.Replace(name, vendorPrefix, "", 1))
	}

	name = audioExtPattern.ReplaceAllString(name, "")
	name = strings.TrimSpace(trailingParenPattern.ReplaceAllString(name, ""))
	name = strings.TrimSpace(bracketTagPattern.ReplaceAllString(name, ""))
	name = wrappedFragmentPattern.ReplaceAllString(name, "$1")
	name = collapseDuplicatedArtist(name)

	return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(name, " "))
}

// collapseDuplicatedArtist rewrites the "Artist - Title - Artist" pattern
// many extractors emit into "Title - Artist". Any other segment count is
// rejoined unchanged, dropping empty segments.
func collapseDuplicatedArtist(name string) string {
	segments := make([]string, 0, 3)
	for _, segment := range strings.Split(name, segmentSeparator) {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) == 3 && strings.EqualFold(segments[0], segments[2]) {
		return segments[1] + segmentSeparator + segments[0]
	}
	return strings.Join(segments, segmentSeparator)
}
