// Package readme replaces the generated section of a document.
package readme

import (
	"fmt"
	"strings"

	"github.com/anivanovic/codestats/pkg/statserr"
)

const DefaultMarker = "<!-- Stats -->"

// Splice puts block between the two occurrences of marker in doc. The text
// before the first marker and after the second one is kept as is.
func Splice(doc, marker, block string) (string, error) {
	if marker == "" {
		return "", fmt.Errorf("empty marker: %w", statserr.ErrSentinel)
	}
	if n := strings.Count(doc, marker); n != 2 {
		return "", fmt.Errorf("found %d occurrences of %q: %w", n, marker, statserr.ErrSentinel)
	}

	header, rest, _ := strings.Cut(doc, marker)
	_, footer, _ := strings.Cut(rest, marker)

	var b strings.Builder
	b.Grow(len(header) + len(block) + len(footer) + 2*len(marker) + 2)
	b.WriteString(header)
	b.WriteString(marker)
	b.WriteByte('\n')
	b.WriteString(block)
	b.WriteByte('\n')
	b.WriteString(marker)
	b.WriteString(footer)
	return b.String(), nil
}

// Section returns the text currently between the two markers.
func Section(doc, marker string) (string, error) {
	if marker == "" || strings.Count(doc, marker) != 2 {
		return "", statserr.ErrSentinel
	}
	_, rest, _ := strings.Cut(doc, marker)
	section, _, _ := strings.Cut(rest, marker)
	return section, nil
}
