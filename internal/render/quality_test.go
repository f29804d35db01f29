package render

import "testing"

// TestQualityFlagPresets verifies preset name to manim flag mapping.
func TestQualityFlagPresets(t *testing.T) {
	cases := []struct {
		quality string
		want    string
	}{
		{"8K", "-qk"},
		{"4K", "-qk"},
		{"1440p", "-qp"},
		{"1080p", "-qh"},
		{"720p", "-qm"},
		{"480p", "-ql"},
	}

	for _, tc := range cases {
		if got := QualityFlag(tc.quality); got != tc.want {
			t.Fatalf("QualityFlag(%q) = %q, want %q", tc.quality, got, tc.want)
		}
	}
}

// TestQualityFlagCustomResolution verifies WxH values produce -r flags
// in manim's comma form.
func TestQualityFlagCustomResolution(t *testing.T) {
	if got := QualityFlag("1920x804"); got != "-r1920,804" {
		t.Fatalf("QualityFlag(custom) = %q, want -r1920,804", got)
	}
	if got := QualityFlag("3440X1440"); got != "-r3440,1440" {
		t.Fatalf("QualityFlag(uppercase custom) = %q, want -r3440,1440", got)
	}
}

// TestQualityFlagFallback verifies unknown values fall back to 720p.
func TestQualityFlagFallback(t *testing.T) {
	for _, quality := range []string{"", "ultra", "108Op", "x1080", "1920x"} {
		if got := QualityFlag(quality); got != "-qm" {
			t.Fatalf("QualityFlag(%q) = %q, want -qm fallback", quality, got)
		}
	}
}

// TestIsKnownQuality verifies preset and custom resolution acceptance.
func TestIsKnownQuality(t *testing.T) {
	if !IsKnownQuality("1080p") {
		t.Fatal("1080p should be known")
	}
	if !IsKnownQuality("1280x720") {
		t.Fatal("custom resolution should be known")
	}
	if IsKnownQuality("potato") {
		t.Fatal("potato should not be known")
	}
}
