package routes

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMessagePreviewShortTextUnchanged(t *testing.T) {
	if got := messagePreview("see you at noon"); got != "see you at noon" {
		t.Fatalf("short text was altered: %q", got)
	}
}

func TestMessagePreviewTruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := messagePreview(long)
	if got != strings.Repeat("a", previewRunes)+"…" {
		t.Fatalf("unexpected preview: %q", got)
	}
}

// Multi-byte text around the cut point must stay valid UTF-8.
func TestMessagePreviewKeepsRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 100)
	got := messagePreview(long)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("é", previewRunes)+"…" {
		t.Fatalf("unexpected preview: %q", got)
	}
}
