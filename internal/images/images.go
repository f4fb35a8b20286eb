// Package images persists downscaled task images and serves cached thumbnails.
//
// Files are named by a random UUID and live in a single directory owned by
// the store. Nothing indexes them: a task's image filename is the only
// reference.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension       = 1200
	DefaultQuality            = 85
	DefaultThumbnailCacheSize = 128

	extension = ".jpg"
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	MaxDimension       int
	Quality            int
	ThumbnailCacheSize int
	Logger             *slog.Logger
}

type thumbKey struct {
	filename string
	size     int
}

// Store writes images into dir and keeps decoded thumbnails in memory
type Store struct {
	dir          string
	maxDimension int
	quality      int
	thumbs       *lru.Cache[thumbKey, image.Image]
	logger       *slog.Logger
}

// New creates a store rooted at dir. The directory is created on first save.
func New(dir string, opts Options) (*Store, error) {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.ThumbnailCacheSize <= 0 {
		opts.ThumbnailCacheSize = DefaultThumbnailCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	thumbs, err := lru.New[thumbKey, image.Image](opts.ThumbnailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache: %w", err)
	}

	return &Store{
		dir:          dir,
		maxDimension: opts.MaxDimension,
		quality:      opts.Quality,
		thumbs:       thumbs,
		logger:       opts.Logger,
	}, nil
}

// Dir returns the directory the store owns
func (s *Store) Dir() string {
	return s.dir
}

// Path maps a filename to its location inside the store directory.
// It performs no I/O.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// Exists reports whether the backing file for filename is present
func (s *Store) Exists(filename string) bool {
	if filename == "" {
		return false
	}
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// Save downscales img so its longer side fits MaxDimension, encodes it as
// JPEG and writes it under a fresh filename. ok is false on any failure.
func (s *Store) Save(img image.Image) (filename string, ok bool) {
	if img == nil || img.Bounds().Empty() {
		s.logger.Debug("refusing to save empty image")
		return "", false
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img, s.maxDimension), &jpeg.Options{Quality: s.quality}); err != nil {
		s.logger.Warn("failed to encode image", "err", err)
		return "", false
	}

	return s.write(buf.Bytes())
}

// SaveReader decodes an image from r and saves it
func (s *Store) SaveReader(r io.Reader) (filename string, ok bool) {
	img, format, err := image.Decode(r)
	if err != nil {
		s.logger.Debug("failed to decode image", "err", err)
		return "", false
	}
	s.logger.Debug("decoded image", "format", format, "bounds", img.Bounds().String())
	return s.Save(img)
}

// SaveFile decodes the image at path and saves it
func (s *Store) SaveFile(path string) (filename string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Debug("failed to open image", "path", path, "err", err)
		return "", false
	}
	defer f.Close()
	return s.SaveReader(f)
}

// Thumbnail returns a raster whose longer side is at most 2*size pixels, so
// it stays crisp when drawn at size logical units on a high density display.
// Results are cached per (filename, size).
func (s *Store) Thumbnail(filename string, size int) (image.Image, bool) {
	if filename == "" || size <= 0 {
		return nil, false
	}

	key := thumbKey{filename: filename, size: size}
	if img, ok := s.thumbs.Get(key); ok {
		return img, true
	}

	f, err := os.Open(s.Path(filename))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		s.logger.Debug("failed to decode thumbnail source", "filename", filename, "err", err)
		return nil, false
	}

	thumb := downsample(img, 2*size)
	s.thumbs.Add(key, thumb)
	return thumb, true
}

// Delete removes the backing file and every cached thumbnail for filename.
// Errors are logged and otherwise ignored.
func (s *Store) Delete(filename string) {
	if filename == "" {
		return
	}
	if err := os.Remove(s.Path(filename)); err != nil && !os.IsNotExist(err) {
		s.logger.Debug("failed to delete image", "filename", filename, "err", err)
	}
	s.purge(filename)
}

func (s *Store) write(data []byte) (string, bool) {
	filename := uuid.NewString() + extension

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Warn("failed to create image directory", "dir", s.dir, "err", err)
		return "", false
	}

	// Write to a temp file and rename so a crash never leaves a torn image
	tmp, err := os.CreateTemp(s.dir, ".incoming-*")
	if err != nil {
		s.logger.Warn("failed to create temp image", "err", err)
		return "", false
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.logger.Warn("failed to write image", "err", err)
		return "", false
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.logger.Warn("failed to close image", "err", err)
		return "", false
	}
	if err := os.Rename(tmpName, s.Path(filename)); err != nil {
		os.Remove(tmpName)
		s.logger.Warn("failed to move image into place", "err", err)
		return "", false
	}

	s.purge(filename)
	s.logger.Debug("saved image", "filename", filename, "bytes", len(data))
	return filename, true
}

func (s *Store) purge(filename string) {
	for _, key := range s.thumbs.Keys() {
		if key.filename == filename {
			s.thumbs.Remove(key)
		}
	}
}

// fitSize scales (w, h) so the longer side is at most limit, keeping the
// aspect ratio and never upscaling.
func fitSize(w, h, limit int) (int, int) {
	longest := max(w, h)
	if longest <= limit || longest == 0 {
		return w, h
	}
	return max(1, w*limit/longest), max(1, h*limit/longest)
}

// flatten scales img to fit limit and composites it over white, since JPEG
// has no alpha channel.
func flatten(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), limit)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func downsample(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), limit)
	if w == b.Dx() && h == b.Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
