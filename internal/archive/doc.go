// Package archive unpacks generated map archives into canonical folders.
//
// Each zip in the maps directory extracts into a folder named by
// naming.Canonicalize over the archive stem. An existing folder means a
// previous run already handled an archive with the same canonical name,
// so extraction is skipped rather than repeated.
package archive
