package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "images"), Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("Saved file is not a JPEG: %v", err)
	}
	return img
}

func TestSaveDownscalesLongerSide(t *testing.T) {
	s := newTestStore(t)

	filename, ok := s.Save(solid(3000, 1500))
	if !ok {
		t.Fatal("Expected save to succeed")
	}
	if !strings.HasSuffix(filename, ".jpg") {
		t.Errorf("Expected .jpg filename, got %q", filename)
	}

	b := decodeFile(t, s.Path(filename)).Bounds()
	if b.Dx() != DefaultMaxDimension || b.Dy() != DefaultMaxDimension/2 {
		t.Errorf("Expected %dx%d, got %dx%d", DefaultMaxDimension, DefaultMaxDimension/2, b.Dx(), b.Dy())
	}
}

func TestSaveKeepsSmallImageSize(t *testing.T) {
	s := newTestStore(t)

	filename, ok := s.Save(solid(40, 90))
	if !ok {
		t.Fatal("Expected save to succeed")
	}

	b := decodeFile(t, s.Path(filename)).Bounds()
	if b.Dx() != 40 || b.Dy() != 90 {
		t.Errorf("Expected 40x90, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveGeneratesUniqueFilenames(t *testing.T) {
	s := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		filename, ok := s.Save(solid(4, 4))
		if !ok {
			t.Fatal("Expected save to succeed")
		}
		if seen[filename] {
			t.Fatalf("Duplicate filename %q", filename)
		}
		seen[filename] = true
	}
}

func TestSaveReaderAcceptsPNG(t *testing.T) {
	s := newTestStore(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(10, 10)); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}

	filename, ok := s.SaveReader(&buf)
	if !ok {
		t.Fatal("Expected save to succeed")
	}
	if !s.Exists(filename) {
		t.Errorf("Expected %q to exist", filename)
	}
}

func TestSaveFailuresReturnNoResult(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.SaveReader(strings.NewReader("not an image")); ok {
		t.Error("Expected undecodable input to fail")
	}
	if _, ok := s.SaveFile(filepath.Join(t.TempDir(), "missing.png")); ok {
		t.Error("Expected missing file to fail")
	}
	if _, ok := s.Save(nil); ok {
		t.Error("Expected nil image to fail")
	}

	// A regular file where the directory should be makes every write fail
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	bad, err := New(blocked, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := bad.Save(solid(4, 4)); ok {
		t.Error("Expected write into a non-directory to fail")
	}
}

func TestThumbnailIsBoundedAndCached(t *testing.T) {
	s := newTestStore(t)

	filename, ok := s.Save(solid(800, 400))
	if !ok {
		t.Fatal("Expected save to succeed")
	}

	thumb, ok := s.Thumbnail(filename, 32)
	if !ok {
		t.Fatal("Expected thumbnail")
	}
	b := thumb.Bounds()
	if b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("Expected 64x32 thumbnail, got %dx%d", b.Dx(), b.Dy())
	}

	// Cached copy survives the file disappearing behind the store's back
	if err := os.Remove(s.Path(filename)); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	again, ok := s.Thumbnail(filename, 32)
	if !ok {
		t.Fatal("Expected cached thumbnail")
	}
	if again != thumb {
		t.Error("Expected the cached raster to be returned")
	}

	// A different size is a different cache key
	if _, ok := s.Thumbnail(filename, 16); ok {
		t.Error("Expected uncached size to miss once the file is gone")
	}
}

func TestThumbnailMissingFile(t *testing.T) {
	s := newTestStore(t)

	if _, ok := s.Thumbnail("nope.jpg", 32); ok {
		t.Error("Expected missing file to return no result")
	}
	if _, ok := s.Thumbnail("", 32); ok {
		t.Error("Expected empty filename to return no result")
	}
}

func TestDeleteRemovesFileAndThumbnails(t *testing.T) {
	s := newTestStore(t)

	filename, ok := s.Save(solid(100, 100))
	if !ok {
		t.Fatal("Expected save to succeed")
	}
	if _, ok := s.Thumbnail(filename, 10); !ok {
		t.Fatal("Expected thumbnail")
	}

	s.Delete(filename)

	if s.Exists(filename) {
		t.Error("Expected file to be removed")
	}
	if _, ok := s.Thumbnail(filename, 10); ok {
		t.Error("Expected cached thumbnail to be dropped")
	}

	// Second delete is harmless
	s.Delete(filename)
}

func TestPathIsPure(t *testing.T) {
	s, err := New("/nonexistent/images", Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := s.Path("a.jpg"); got != filepath.Join("/nonexistent/images", "a.jpg") {
		t.Errorf("Unexpected path %q", got)
	}
	if got := s.Path("../escape.jpg"); got != filepath.Join("/nonexistent/images", "escape.jpg") {
		t.Errorf("Expected path to stay inside the directory, got %q", got)
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, limit int
		wantW       int
		wantH       int
	}{
		{3000, 1500, 1200, 1200, 600},
		{1500, 3000, 1200, 600, 1200},
		{1200, 1200, 1200, 1200, 1200},
		{10, 5, 1200, 10, 5},
		{5000, 1, 100, 100, 1},
	}

	for _, tt := range tests {
		w, h := fitSize(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitSize(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}
