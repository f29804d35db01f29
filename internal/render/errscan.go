package render

import "strings"

// errorPatterns are checked in order of specificity against process output.
var errorPatterns = []string{
	"SyntaxError:",
	"NameError:",
	"ImportError:",
	"ModuleNotFoundError:",
	"AttributeError:",
	"TypeError:",
	"ValueError:",
	"IndentationError:",
	"Traceback (most recent call last)",
	"manim.utils.module_ops.SceneNotFound",
	"FileNotFoundError:",
	"Exception:",
}

const maxErrorSummaryLen = 200

// ExtractErrorSummary scans process output for Python error markers and
// returns the matched line plus up to two following context lines. It
// returns an empty string when no known pattern is present.
func ExtractErrorSummary(output string) string {
	for _, pattern := range errorPatterns {
		if !strings.Contains(output, pattern) {
			continue
		}

		lines := strings.Split(output, "\n")
		for i, line := range lines {
			if !strings.Contains(line, pattern) {
				continue
			}

			summary := strings.TrimSpace(line)
			for j := i + 1; j < len(lines) && j <= i+2; j++ {
				next := strings.TrimSpace(lines[j])
				if next != "" {
					summary += " " + next
				}
			}
			if len(summary) > maxErrorSummaryLen {
				summary = summary[:maxErrorSummaryLen]
			}
			return summary
		}

		return "error detected: " + pattern
	}

	return ""
}
