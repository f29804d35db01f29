package render

import (
	"strings"
	"testing"
)

// TestExtractErrorSummaryFindsPattern verifies matched line plus context.
func TestExtractErrorSummaryFindsPattern(t *testing.T) {
	output := "rendering...\nNameError: name 'Circl' is not defined\nDid you mean: 'Circle'?\n\nmore output\n"
	got := ExtractErrorSummary(output)
	if !strings.HasPrefix(got, "NameError: name 'Circl' is not defined") {
		t.Fatalf("summary = %q, want NameError prefix", got)
	}
	if !strings.Contains(got, "Did you mean") {
		t.Fatalf("summary = %q, want context line included", got)
	}
}

// TestExtractErrorSummaryCapsLength verifies the 200 character limit.
func TestExtractErrorSummaryCapsLength(t *testing.T) {
	long := "ValueError: " + strings.Repeat("x", 400)
	got := ExtractErrorSummary(long)
	if len(got) != 200 {
		t.Fatalf("summary length = %d, want 200", len(got))
	}
}

// TestExtractErrorSummaryPatternPriority verifies specific errors win over
// the generic traceback marker.
func TestExtractErrorSummaryPatternPriority(t *testing.T) {
	output := "Traceback (most recent call last)\n  File \"scene.py\", line 3\nSyntaxError: invalid syntax\n"
	got := ExtractErrorSummary(output)
	if !strings.HasPrefix(got, "SyntaxError:") {
		t.Fatalf("summary = %q, want SyntaxError first", got)
	}
}

// TestExtractErrorSummaryCleanOutput verifies clean output yields empty.
func TestExtractErrorSummaryCleanOutput(t *testing.T) {
	if got := ExtractErrorSummary("100% done\nFile ready at media/videos/out.mp4\n"); got != "" {
		t.Fatalf("summary = %q, want empty", got)
	}
}
