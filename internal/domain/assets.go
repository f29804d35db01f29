package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// AssetCategory groups library files by how the UI previews them.
type AssetCategory string

const (
	AssetCategoryVideo    AssetCategory = "video"
	AssetCategoryImage    AssetCategory = "image"
	AssetCategoryAudio    AssetCategory = "audio"
	AssetCategoryFont     AssetCategory = "font"
	AssetCategorySubtitle AssetCategory = "subtitle"
	AssetCategoryText     AssetCategory = "text"
	AssetCategoryOther    AssetCategory = "other"
)

// Asset describes one file in the asset library.
type Asset struct {
	Path         string        `json:"path"`
	Name         string        `json:"name"`
	Size         int64         `json:"size"`
	ModifiedTime time.Time     `json:"modifiedTime"`
	Category     AssetCategory `json:"category"`
}

// AssetPreview carries the payload the UI needs to display one asset.
type AssetPreview struct {
	Path     string        `json:"path"`
	Category AssetCategory `json:"category"`
	DataURL  string        `json:"dataUrl,omitempty"`
	Text     string        `json:"text,omitempty"`
	MimeType string        `json:"mimeType,omitempty"`
	Size     int64         `json:"size"`
}

var categoryByExtension = map[string]AssetCategory{
	".mp4": AssetCategoryVideo, ".mov": AssetCategoryVideo, ".avi": AssetCategoryVideo,
	".webm": AssetCategoryVideo, ".mkv": AssetCategoryVideo, ".flv": AssetCategoryVideo,
	".m4v": AssetCategoryVideo,

	".png": AssetCategoryImage, ".jpg": AssetCategoryImage, ".jpeg": AssetCategoryImage,
	".gif": AssetCategoryImage, ".svg": AssetCategoryImage, ".bmp": AssetCategoryImage,
	".webp": AssetCategoryImage, ".ico": AssetCategoryImage,

	".mp3": AssetCategoryAudio, ".wav": AssetCategoryAudio, ".ogg": AssetCategoryAudio,
	".m4a": AssetCategoryAudio, ".aac": AssetCategoryAudio, ".flac": AssetCategoryAudio,
	".wma": AssetCategoryAudio,

	".ttf": AssetCategoryFont, ".otf": AssetCategoryFont, ".woff": AssetCategoryFont,
	".woff2": AssetCategoryFont, ".ttc": AssetCategoryFont, ".eot": AssetCategoryFont,

	".srt": AssetCategorySubtitle, ".vtt": AssetCategorySubtitle, ".ass": AssetCategorySubtitle,
	".ssa": AssetCategorySubtitle, ".sub": AssetCategorySubtitle,

	".txt": AssetCategoryText, ".md": AssetCategoryText, ".json": AssetCategoryText,
	".csv": AssetCategoryText, ".xml": AssetCategoryText, ".yaml": AssetCategoryText,
	".yml": AssetCategoryText,
}

// CategoryForName maps a file name to its asset category. Every input maps
// to exactly one category; unknown extensions map to AssetCategoryOther.
func CategoryForName(name string) AssetCategory {
	ext := strings.ToLower(filepath.Ext(name))
	if cat, ok := categoryByExtension[ext]; ok {
		return cat
	}
	return AssetCategoryOther
}
