package render

import "regexp"

var sceneClassPattern = regexp.MustCompile(`class\s+(\w+)\s*\([^)]*\):`)

// ExtractSceneName returns the first scene class declared in the code,
// or an empty string when no class definition is present.
func ExtractSceneName(code string) string {
	match := sceneClassPattern.FindStringSubmatch(code)
	if match == nil {
		return ""
	}
	return match[1]
}
