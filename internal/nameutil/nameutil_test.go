package nameutil

import (
	"errors"
	"testing"
)

func TestValidateID(t *testing.T) {
	for _, id := range []string{"blur", "Read1", "grade_02", "ノード"} {
		if err := ValidateID(id); err != nil {
			t.Fatalf("unexpected error for %q: %v", id, err)
		}
	}
	for _, id := range []string{"", "  ", "blur.size", "two words", "bad\x00id", string([]byte{0xff, 0xff})} {
		if err := ValidateID(id); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName for %q, got %v", id, err)
		}
	}
}

func TestValidateParamName(t *testing.T) {
	if err := ValidateParamName("wipe angle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateParamName(" size"); err == nil {
		t.Fatalf("expected error for leading space")
	}
	if err := ValidateParamName("a.b"); err == nil {
		t.Fatalf("expected error for dot")
	}
}

func TestSanitizeLabel(t *testing.T) {
	if s, changed := SanitizeLabel("hello\x00world"); s != "helloworld" || !changed {
		t.Fatalf("expected NUL removed: got %q changed=%v", s, changed)
	}
	if s, changed := SanitizeLabel(" a \u200B b "); s != "a  b" || !changed {
		t.Fatalf("expected zero-width removed and trimmed: got %q changed=%v", s, changed)
	}
	if s, changed := SanitizeLabel("Blur"); s != "Blur" || changed {
		t.Fatalf("clean label changed: %q %v", s, changed)
	}
}
