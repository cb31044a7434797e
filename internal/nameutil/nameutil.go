// Package nameutil checks the identifiers used in scene files.
package nameutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidName is wrapped by every validation failure.
var ErrInvalidName = errors.New("invalid name")

// ValidateID checks whether id is acceptable as a node identifier. Node ids
// prefix parameter ids as "node.param", so they may not contain a dot, and
// they may not contain whitespace or control characters. It does NOT mutate
// the input.
func ValidateID(id string) error {
	if err := validate(id); err != nil {
		return err
	}
	for _, r := range id {
		if unicode.IsSpace(r) {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, id)
		}
	}
	return nil
}

// ValidateParamName checks a parameter name. Spaces are allowed, dots are
// not.
func ValidateParamName(name string) error {
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidName, name)
	}
	return validate(name)
}

func validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: contains invalid encoding", ErrInvalidName)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: contains control character U+%04X (%q)", ErrInvalidName, r, r)
		}
		if r == '.' {
			return fmt.Errorf("%w: %q contains '.'", ErrInvalidName, name)
		}
	}
	return nil
}

// SanitizeLabel removes common invisible/control characters from a display
// label and returns the sanitized string and a boolean indicating whether
// any change was made. Zero-width characters commonly introduced by
// copy/paste (e.g., U+200B) are removed and surrounding whitespace trimmed.
func SanitizeLabel(label string) (string, bool) {
	if label == "" {
		return label, false
	}
	out := make([]rune, 0, len(label))
	for _, r := range label {
		if unicode.IsControl(r) {
			continue
		}
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF':
			continue
		}
		out = append(out, r)
	}
	res := strings.TrimSpace(string(out))
	return res, res != label
}
