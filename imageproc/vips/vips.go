// Package vips implements imageproc.Processor on top of libvips.
//
// This is the production backend: it supports mozjpeg-style JPEG settings
// and real WebP/AVIF effort levels. Call Startup once before use and
// Shutdown at exit.
package vips

import (
	"bytes"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ico "github.com/biessek/golang-ico"
	"github.com/davidbyttow/govips/v2/vips"

	"mindscape/imageproc"
)

// Startup initialises libvips with a single worker thread; the optimizer
// processes one file at a time.
func Startup() {
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024,
	})
	slog.Debug("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources
func Shutdown() {
	vips.Shutdown()
}

// Processor renders images through libvips
type Processor struct{}

// New returns a libvips-backed processor
func New() *Processor {
	return &Processor{}
}

// Probe loads the image and reports its dimensions
func (p *Processor) Probe(path string) (imageproc.Metadata, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return imageproc.Metadata{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	img, err := load(path)
	if err != nil {
		return imageproc.Metadata{}, err
	}
	defer img.Close()

	format, ok := formatOf(img.Format())
	if !ok || isICO(path) {
		// ICO arrives re-encoded as PNG; trust the extension instead
		format, err = imageproc.FormatOf(path)
		if err != nil {
			return imageproc.Metadata{}, err
		}
	}

	return imageproc.Metadata{
		Width:  img.Width(),
		Height: img.Height(),
		Format: format,
		Size:   fi.Size(),
	}, nil
}

// Render loads src, applies resize and blur, and exports dst
func (p *Processor) Render(src, dst string, opts imageproc.Options) error {
	img, err := load(src)
	if err != nil {
		return err
	}
	defer img.Close()

	switch {
	case opts.Width > 0 && opts.Height > 0:
		if err := img.Thumbnail(opts.Width, opts.Height, vips.InterestingCentre); err != nil {
			return fmt.Errorf("failed to resize %s: %w", src, err)
		}
	case opts.Width > 0:
		scale := float64(opts.Width) / float64(img.Width())
		if err := img.Resize(scale, vips.KernelLanczos3); err != nil {
			return fmt.Errorf("failed to resize %s: %w", src, err)
		}
	}

	if opts.Blur > 0 {
		if err := img.GaussianBlur(opts.Blur); err != nil {
			return fmt.Errorf("failed to blur %s: %w", src, err)
		}
	}

	data, err := export(img, opts)
	if err != nil {
		return fmt.Errorf("failed to encode %s as %s: %w", src, opts.Format, err)
	}

	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return nil
}

func export(img *vips.ImageRef, opts imageproc.Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch opts.Format {
	case imageproc.JPEG:
		params := vips.NewJpegExportParams()
		if opts.Quality > 0 {
			params.Quality = opts.Quality
		}
		if opts.Optimize {
			params.Interlace = true
			params.OptimizeCoding = true
			params.TrellisQuant = true
			params.OvershootDeringing = true
			params.OptimizeScans = true
			params.QuantTable = 3
		}
		data, _, err = img.ExportJpeg(params)
	case imageproc.PNG:
		params := vips.NewPngExportParams()
		if opts.Optimize {
			params.Compression = 9
		}
		data, _, err = img.ExportPng(params)
	case imageproc.GIF:
		data, _, err = img.ExportGIF(vips.NewGifExportParams())
	case imageproc.WebP:
		params := vips.NewWebpExportParams()
		if opts.Quality > 0 {
			params.Quality = opts.Quality
		}
		params.ReductionEffort = opts.Effort
		data, _, err = img.ExportWebp(params)
	case imageproc.AVIF:
		params := vips.NewAvifExportParams()
		if opts.Quality > 0 {
			params.Quality = opts.Quality
		}
		params.Effort = opts.Effort
		data, _, err = img.ExportAvif(params)
	default:
		return nil, fmt.Errorf("%w: %s", imageproc.ErrUnsupportedFormat, opts.Format)
	}

	return data, err
}

// load opens path with libvips. libvips builds without ImageMagick cannot
// read .ico, so those are decoded in Go and handed over as PNG.
func load(path string) (*vips.ImageRef, error) {
	if isICO(path) {
		return loadICO(path)
	}

	img, err := vips.NewImageFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", imageproc.ErrDecode, path, err)
	}
	return img, nil
}

func loadICO(path string) (*vips.ImageRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ico.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", imageproc.ErrDecode, path, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		return nil, fmt.Errorf("failed to re-encode %s: %w", path, err)
	}

	img, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", imageproc.ErrDecode, path, err)
	}
	return img, nil
}

func isICO(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ico")
}

func formatOf(t vips.ImageType) (imageproc.Format, bool) {
	switch t {
	case vips.ImageTypeJPEG:
		return imageproc.JPEG, true
	case vips.ImageTypePNG:
		return imageproc.PNG, true
	case vips.ImageTypeGIF:
		return imageproc.GIF, true
	case vips.ImageTypeWEBP:
		return imageproc.WebP, true
	case vips.ImageTypeAVIF:
		return imageproc.AVIF, true
	default:
		return "", false
	}
}
