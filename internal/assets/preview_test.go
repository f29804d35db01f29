package assets

import (
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"anim-studio/internal/domain"
)

// TestPreviewImageEmbedsDataURL verifies that image previews carry the
// file bytes as a base64 data URL.
func TestPreviewImageEmbedsDataURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	mustWriteFile(t, path, "png-bytes")

	store := NewStore(dir)
	preview, err := store.Preview(path)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if preview.Category != domain.AssetCategoryImage {
		t.Fatalf("category = %q, want %q", preview.Category, domain.AssetCategoryImage)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	if preview.DataURL != want {
		t.Fatalf("data URL = %q, want %q", preview.DataURL, want)
	}
	if preview.Text != "" {
		t.Fatalf("text = %q, want empty", preview.Text)
	}
}

// TestPreviewTextInlinesContent verifies that text previews return the
// file content directly.
func TestPreviewTextInlinesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	mustWriteFile(t, path, "scene plan")

	store := NewStore(dir)
	preview, err := store.Preview(path)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if preview.Text != "scene plan" {
		t.Fatalf("text = %q, want %q", preview.Text, "scene plan")
	}
	if preview.DataURL != "" {
		t.Fatalf("data URL = %q, want empty", preview.DataURL)
	}
	if preview.MimeType != "text/plain" {
		t.Fatalf("mime type = %q, want text/plain", preview.MimeType)
	}
}

// TestPreviewTextTruncatesLargeFiles verifies the inline content cap.
func TestPreviewTextTruncatesLargeFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	mustWriteFile(t, path, strings.Repeat("a", maxTextPreviewBytes+100))

	store := NewStore(dir)
	preview, err := store.Preview(path)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(preview.Text) != maxTextPreviewBytes {
		t.Fatalf("text length = %d, want %d", len(preview.Text), maxTextPreviewBytes)
	}
}

// TestPreviewVideoReturnsPathOnly verifies that videos are streamed by
// path instead of being inlined.
func TestPreviewVideoReturnsPathOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	mustWriteFile(t, path, "video-bytes")

	store := NewStore(dir)
	preview, err := store.Preview(path)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if preview.Category != domain.AssetCategoryVideo {
		t.Fatalf("category = %q, want %q", preview.Category, domain.AssetCategoryVideo)
	}
	if preview.DataURL != "" || preview.Text != "" {
		t.Fatalf("video preview inlined content: dataURL=%q text=%q", preview.DataURL, preview.Text)
	}
	if preview.Path != path {
		t.Fatalf("path = %q, want %q", preview.Path, path)
	}
	if preview.MimeType != "video/mp4" {
		t.Fatalf("mime type = %q, want video/mp4", preview.MimeType)
	}
	if preview.Size != int64(len("video-bytes")) {
		t.Fatalf("size = %d, want %d", preview.Size, len("video-bytes"))
	}
}

// TestPreviewRejectsOutsidePath verifies preview path containment.
func TestPreviewRejectsOutsidePath(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.png")
	mustWriteFile(t, outside, "secret")

	store := NewStore(t.TempDir())
	if _, err := store.Preview(outside); !errors.Is(err, ErrOutsideLibrary) {
		t.Fatalf("Preview() error = %v, want %v", err, ErrOutsideLibrary)
	}
}

// TestMimeTypeForName verifies the extension to MIME type mapping.
func TestMimeTypeForName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"clip.mp4", "video/mp4"},
		{"logo.PNG", "image/png"},
		{"track.mp3", "audio/mpeg"},
		{"face.woff2", "font/woff2"},
		{"subs.vtt", "text/vtt"},
		{"data.bin", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := MimeTypeForName(tc.name); got != tc.want {
			t.Fatalf("MimeTypeForName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
