package forms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderExport replaces labels that sanitize to nothing
const PlaceholderExport = "Option"

var nonAlnumRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

// foldAccents turns "Sí" into "Si" so accented labels keep their letters
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// SanitizeExport turns an option label into a PDF name usable as an on-state.
// Runs of characters outside [A-Za-z0-9] collapse to one underscore, edge
// underscores are trimmed, and an empty result becomes PlaceholderExport.
// used holds the names already taken in the group; the returned name is
// added to it, with a numeric suffix if needed to keep it unique.
func SanitizeExport(label string, used map[string]bool) string {
	sanitized := nonAlnumRun.ReplaceAllString(foldAccents(strings.TrimSpace(label)), "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = PlaceholderExport
	}

	candidate := sanitized
	for index := 1; used[candidate]; index++ {
		candidate = fmt.Sprintf("%s_%d", sanitized, index)
	}
	used[candidate] = true
	return candidate
}
