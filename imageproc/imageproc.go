// Package imageproc decodes, resizes and re-encodes raster images.
//
// Two backends implement Processor: Native, written in pure Go, and the
// libvips backend in the vips subpackage. The optimizer only talks to the
// interface, so either backend (or a test double) can drive a batch.
package imageproc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when a backend cannot encode or
	// recognise the requested format.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrDecode is returned when a source file cannot be decoded.
	ErrDecode = errors.New("cannot decode image")
)

// Format identifies an image encoding
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	WebP Format = "webp"
	AVIF Format = "avif"
	ICO  Format = "ico"
)

// FormatFromExt maps a file extension (with or without the dot) to a Format
func FormatFromExt(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "gif":
		return GIF, nil
	case "webp":
		return WebP, nil
	case "avif":
		return AVIF, nil
	case "ico":
		return ICO, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// FormatOf returns the Format implied by a file path's extension
func FormatOf(path string) (Format, error) {
	return FormatFromExt(filepath.Ext(path))
}

// ParseFormat maps a configured format name to a Format
func ParseFormat(name string) (Format, error) {
	return FormatFromExt(name)
}

// Metadata describes a source image
type Metadata struct {
	Width  int
	Height int
	Format Format
	Size   int64
}

// Options controls a single Render call.
type Options struct {
	// Width and Height are target pixel sizes. Zero Height keeps the aspect
	// ratio; zero Width and Height keep the native size. Both set crops to
	// fill the box from the centre.
	Width  int
	Height int

	Format Format

	// Quality 0 means the encoder's default.
	Quality int

	// Effort is the compression effort on the libvips WebP scale, 0..6.
	Effort int

	// Blur is a Gaussian sigma; 0 disables blurring.
	Blur float64

	// Optimize enables mozjpeg-style JPEG settings and maximum PNG compression.
	Optimize bool
}

// Processor probes and renders image files
type Processor interface {
	Probe(path string) (Metadata, error)
	Render(src, dst string, opts Options) error
}
