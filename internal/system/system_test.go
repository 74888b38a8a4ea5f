package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestImagePoolClearsOnPut(t *testing.T) {
	p := NewImagePool()
	rect := image.Rect(0, 0, 4, 4)

	img := p.Get(rect)
	if img.Bounds() != rect {
		t.Fatalf("Expected bounds %v, got %v", rect, img.Bounds())
	}
	img.Pix[0] = 255
	p.Put(img)

	// sync.Pool may or may not hand back the same buffer; either way it must be zeroed.
	again := p.Get(rect)
	for i, v := range again.Pix {
		if v != 0 {
			t.Fatalf("Expected zeroed buffer, Pix[%d]=%d", i, v)
		}
	}
}

func TestImagePoolIgnoresUnknownBounds(t *testing.T) {
	p := NewImagePool()
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	p.Put(nil)
	if len(p.pools) != 0 {
		t.Errorf("Put should not create pools, got %d", len(p.pools))
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.zip", "b.ZIP", "c.txt"}
	for i, name := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(path, mod, mod)
	}

	latest, err := FindLatest(dir, ".zip")
	if err != nil {
		t.Fatalf("FindLatest failed: %v", err)
	}
	if filepath.Base(latest) != "b.ZIP" {
		t.Errorf("Expected b.ZIP, got %s", latest)
	}

	if _, err := FindLatest(dir, ".pdf"); err == nil {
		t.Error("Expected error when nothing matches")
	}
}

func TestDefaultQuality(t *testing.T) {
	tests := map[string]int{
		"h264_videotoolbox": 75,
		"h264_nvenc":        28,
		"libx264":           23,
	}
	for enc, want := range tests {
		if got := DefaultQuality(enc); got != want {
			t.Errorf("%s: expected %d, got %d", enc, want, got)
		}
	}
}
