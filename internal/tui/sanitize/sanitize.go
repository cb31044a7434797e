// Package sanitize cleans scene-provided strings before they are drawn in
// the TUI. Node labels come from user files and may carry escape sequences
// that would move the cursor or recolour the dope sheet grid.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Precompiled regexps used by Label.
var (
	oscRe = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	csiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
)

// Label removes every escape sequence and control character from in,
// folds line breaks and tabs into single spaces and truncates the result to
// width runes, marking the cut with an ellipsis. A width of zero or less keeps
// the full length.
func Label(in string, width int) string {
	out := oscRe.ReplaceAllString(in, "")
	out = csiRe.ReplaceAllString(out, "")

	var b strings.Builder
	space := false
	for _, r := range out {
		switch {
		case r == '\n' || r == '\r' || r == '\t' || r == ' ':
			if !space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = true
			continue
		case unicode.IsControl(r) || r == utf8.RuneError:
			continue
		}
		space = false
		b.WriteRune(r)
	}
	out = strings.TrimRight(b.String(), " ")
	if width > 0 && utf8.RuneCountInString(out) > width {
		r := []rune(out)
		if width == 1 {
			return "…"
		}
		return string(r[:width-1]) + "…"
	}
	return out
}
