package render

import (
	"regexp"
	"strings"
)

// qualityPreset pairs a manim quality flag with its output resolution.
type qualityPreset struct {
	Flag   string
	Width  int
	Height int
}

// qualityPresets maps UI quality names onto manim CLI flags.
var qualityPresets = map[string]qualityPreset{
	"8K":    {Flag: "-qk", Width: 7680, Height: 4320},
	"4K":    {Flag: "-qk", Width: 3840, Height: 2160},
	"1440p": {Flag: "-qp", Width: 2560, Height: 1440},
	"1080p": {Flag: "-qh", Width: 1920, Height: 1080},
	"720p":  {Flag: "-qm", Width: 1280, Height: 720},
	"480p":  {Flag: "-ql", Width: 854, Height: 480},
}

var customResolutionPattern = regexp.MustCompile(`^\d{2,5}x\d{2,5}$`)

// QualityFlag converts a quality preset or WxH resolution into a manim
// flag. Unknown values fall back to the 720p preset.
func QualityFlag(quality string) string {
	if preset, ok := qualityPresets[quality]; ok {
		return preset.Flag
	}

	normalized := strings.ToLower(strings.TrimSpace(quality))
	if customResolutionPattern.MatchString(normalized) {
		// manim's -r option takes the resolution as W,H, so the UI's
		// WxH form is rewritten before it reaches the CLI.
		return "-r" + strings.Replace(normalized, "x", ",", 1)
	}

	return qualityPresets["720p"].Flag
}

// KnownQualities lists the preset names accepted by QualityFlag.
func KnownQualities() []string {
	return []string{"480p", "720p", "1080p", "1440p", "4K", "8K"}
}

// IsKnownQuality reports whether quality is a preset or WxH resolution.
func IsKnownQuality(quality string) bool {
	if _, ok := qualityPresets[quality]; ok {
		return true
	}
	return customResolutionPattern.MatchString(strings.ToLower(strings.TrimSpace(quality)))
}
