package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"clip.mp3", "clip.mp3"},
		{"  clip.mp3 ", "clip.mp3"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\voice.m4a`, "voice.m4a"},
		{"bad\x00name.wav", "badname.wav"},
		{"", ""},
		{"..", ""},
		{"/", ""},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := SanitizeFileName(tc.input); got != tc.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"clip.MP3":     "mp3",
		"a.b.wav":      "wav",
		"noext":        "",
		"archive.tar.": "",
	}
	for in, want := range tests {
		if got := Extension(in); got != want {
			t.Errorf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "whisper-1", "other"); got != "whisper-1" {
		t.Errorf("expected whisper-1, got %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("expected zero, got %d", got)
	}
}
