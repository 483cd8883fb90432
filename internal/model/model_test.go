package model

import (
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"S052-0042", "S052-0042"},
		{"frame:with:colons", "frame_with_colons"},
		{"frame<with>brackets", "frame_with_brackets"},
		{"frame/with\\slashes", "frame_with_slashes"},
		{"frame|with|pipes", "frame_with_pipes"},
		{"frame?with*wildcards", "frame_with_wildcards"},
		{"frame\"with\"quotes", "frame_with_quotes"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFrame_FITSPath(t *testing.T) {
	frame := Frame{Name: "S052-0042", FITSLink: "https://example.com/S052-0042.fits"}

	want := filepath.Join("/data/fits", "S052-0042.fits")
	if got := frame.FITSPath("/data/fits"); got != want {
		t.Errorf("FITSPath = %q, want %q", got, want)
	}
}

func TestFrame_FITSPathSanitized(t *testing.T) {
	// A frame name with a path separator must not escape the output dir.
	frame := Frame{Name: "S052/0042"}

	got := frame.FITSPath("/data/fits")
	if filepath.Dir(got) != "/data/fits" {
		t.Errorf("FITSPath %q escaped the output directory", got)
	}
}

func TestFrame_HasLink(t *testing.T) {
	withLink := Frame{Name: "a", FITSLink: "https://example.com/a.fits"}
	withoutLink := Frame{Name: "b"}

	if !withLink.HasLink() {
		t.Error("HasLink() should be true for a frame with a link")
	}
	if withoutLink.HasLink() {
		t.Error("HasLink() should be false for a frame without a link")
	}
}

func TestFrames_WithLinks(t *testing.T) {
	frames := Frames{
		{Name: "a", FITSLink: "https://example.com/a.fits"},
		{Name: "b"},
		{Name: "c", FITSLink: "https://example.com/c.fits"},
	}

	linked := frames.WithLinks()
	if len(linked) != 2 {
		t.Fatalf("WithLinks() returned %d frames, want 2", len(linked))
	}
	if linked[0].Name != "a" || linked[1].Name != "c" {
		t.Errorf("WithLinks() = %v, want frames a and c", linked.Names())
	}
}

func TestFrames_Empty(t *testing.T) {
	var frames Frames
	if !frames.Empty() {
		t.Error("nil Frames should be empty")
	}

	frames = Frames{{Name: "a"}}
	if frames.Empty() {
		t.Error("non-empty Frames reported empty")
	}
}

func TestFrames_Names(t *testing.T) {
	frames := Frames{{Name: "a"}, {Name: "b"}}
	names := frames.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v, want [a b]", names)
	}
}
