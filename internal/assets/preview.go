package assets

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"anim-studio/internal/domain"
)

// maxTextPreviewBytes caps how much of a text asset the preview loads.
const maxTextPreviewBytes = 1 << 20

var mimeByExtension = map[string]string{
	".mp4": "video/mp4", ".mov": "video/quicktime", ".avi": "video/x-msvideo",
	".webm": "video/webm", ".mkv": "video/x-matroska", ".flv": "video/x-flv",
	".m4v": "video/x-m4v",

	".png": "image/png", ".jpg": "image/jpeg", ".jpeg": "image/jpeg",
	".gif": "image/gif", ".svg": "image/svg+xml", ".bmp": "image/bmp",
	".webp": "image/webp", ".ico": "image/x-icon",

	".mp3": "audio/mpeg", ".wav": "audio/wav", ".ogg": "audio/ogg",
	".m4a": "audio/mp4", ".aac": "audio/aac", ".flac": "audio/flac",
	".wma": "audio/x-ms-wma",

	".ttf": "font/ttf", ".otf": "font/otf", ".woff": "font/woff",
	".woff2": "font/woff2", ".ttc": "font/collection", ".eot": "application/vnd.ms-fontobject",

	".srt": "text/plain", ".vtt": "text/vtt",

	".txt": "text/plain", ".md": "text/markdown", ".json": "application/json",
	".csv": "text/csv", ".xml": "application/xml", ".yaml": "text/yaml",
	".yml": "text/yaml",
}

// MimeTypeForName returns the MIME type for a file name, defaulting to
// application/octet-stream for unknown extensions.
func MimeTypeForName(name string) string {
	if mimeType, ok := mimeByExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}

// Preview builds the payload for displaying one asset. The payload shape
// follows the category: images, fonts and audio embed a base64 data URL,
// videos hand back the path for streaming, text and subtitles inline the
// file content, everything else returns metadata only.
func (s *Store) Preview(path string) (domain.AssetPreview, error) {
	if !s.contains(path) {
		return domain.AssetPreview{}, ErrOutsideLibrary
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.AssetPreview{}, fmt.Errorf("stat asset: %w", err)
	}
	if info.IsDir() {
		return domain.AssetPreview{}, fmt.Errorf("asset is a directory: %s", path)
	}

	preview := domain.AssetPreview{
		Path:     path,
		Category: domain.CategoryForName(path),
		MimeType: MimeTypeForName(path),
		Size:     info.Size(),
	}

	switch preview.Category {
	case domain.AssetCategoryImage, domain.AssetCategoryFont, domain.AssetCategoryAudio:
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.AssetPreview{}, fmt.Errorf("read asset: %w", err)
		}
		preview.DataURL = fmt.Sprintf("data:%s;base64,%s", preview.MimeType, base64.StdEncoding.EncodeToString(data))
	case domain.AssetCategoryText, domain.AssetCategorySubtitle:
		text, err := readTextHead(path, maxTextPreviewBytes)
		if err != nil {
			return domain.AssetPreview{}, fmt.Errorf("read asset: %w", err)
		}
		preview.Text = text
	case domain.AssetCategoryVideo, domain.AssetCategoryOther:
		// Path and metadata only.
	}

	return preview, nil
}

// readTextHead reads at most limit bytes from the start of a file.
func readTextHead(path string, limit int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
