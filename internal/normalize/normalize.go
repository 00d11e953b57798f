// Package normalize provides text normalization for comic titles.
package normalize

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches a leading English article followed by whitespace.
	leadingArticle = regexp.MustCompile(`^(the|a|an)\s+`)
	// Matches runs of whitespace, underscores, and dots (filename separators).
	separatorRun = regexp.MustCompile(`[\s_.]+`)
	// Matches bracketed release-group junk like "[scan]" or "(2019)".
	bracketedJunk = regexp.MustCompile(`[\[(][^\])]*[\])]`)
)

// SortKey converts a display title into the key used for name ordering:
// diacritics folded, lowercased, leading article dropped, whitespace
// collapsed. "The Léague!" and "league" sort together.
func SortKey(title string) string {
	s := norm.NFKD.String(title)

	// Drop combining marks and other non-spacing runes left by decomposition.
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(strings.TrimSpace(s))
	s = leadingArticle.ReplaceAllString(s, "")
	s = separatorRun.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// TitleFromFilename derives a display title from a comic archive path.
// "Saga_v01 [digital].cbz" -> "Saga v01".
func TitleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	name = bracketedJunk.ReplaceAllString(name, " ")
	name = separatorRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if name == "" {
		// Degenerate filenames like "[].cbz" keep the raw base name.
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return name
}
