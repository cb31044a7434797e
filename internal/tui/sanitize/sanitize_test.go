package sanitize

import "testing"

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"plain", "Read1", 0, "Read1"},
		{"sgr stripped", "\x1b[31mRead1\x1b[0m", 0, "Read1"},
		{"cursor moves stripped", "a\x1b[2Jb\x1b[10;4Hc", 0, "abc"},
		{"osc title stripped", "\x1b]0;pwned\x07blur", 0, "blur"},
		{"newlines folded", "color\n\tcorrect  ", 0, "color correct"},
		{"control chars dropped", "gr\x00a\x07de", 0, "grade"},
		{"truncated", "TimeOffset_long_name", 8, "TimeOff…"},
		{"fits exactly", "retime", 6, "retime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.in, tt.width); got != tt.want {
				t.Fatalf("Label(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}
