package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	_ "github.com/biessek/golang-ico"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/webp"
)

// EncodeFunc writes img to w in one format
type EncodeFunc func(w io.Writer, img image.Image, opts Options) error

// Native is a pure Go Processor. It needs no system libraries, at the cost
// of slower WebP/AVIF encoding and no mozjpeg tuning.
type Native struct {
	Encoders map[Format]EncodeFunc
}

// NewNative returns a Native processor with encoders for every output format
func NewNative() *Native {
	return &Native{
		Encoders: map[Format]EncodeFunc{
			JPEG: encodeJPEG,
			PNG:  encodePNG,
			GIF:  encodeGIF,
			WebP: encodeWebP,
			AVIF: encodeAVIF,
		},
	}
}

// Probe reads only the image header
func (n *Native) Probe(path string) (Metadata, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	format, err := FormatFromExt(name)
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Size:   fi.Size(),
	}, nil
}

// Render decodes src, applies resize and blur, and writes dst.
// The output is fully encoded in memory before dst is touched.
func (n *Native) Render(src, dst string, opts Options) error {
	encode, ok := n.Encoders[opts.Format]
	if !ok {
		return fmt.Errorf("%w: no native encoder for %s", ErrUnsupportedFormat, opts.Format)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, src, err)
	}

	switch {
	case opts.Width > 0 && opts.Height > 0:
		img = imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)
	case opts.Width > 0 || opts.Height > 0:
		img = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	}

	if opts.Blur > 0 {
		img = imaging.Blur(img, opts.Blur)
	}

	var buf bytes.Buffer
	if err := encode(&buf, img, opts); err != nil {
		return fmt.Errorf("failed to encode %s as %s: %w", src, opts.Format, err)
	}

	if err := os.WriteFile(dst, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return nil
}

// The standard library JPEG encoder has no trellis or progressive mode,
// so Optimize only affects the libvips backend.
func encodeJPEG(w io.Writer, img image.Image, opts Options) error {
	quality := opts.Quality
	if quality == 0 {
		quality = 80
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

func encodePNG(w io.Writer, img image.Image, opts Options) error {
	level := png.DefaultCompression
	if opts.Optimize {
		level = png.BestCompression
	}
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level))
}

func encodeGIF(w io.Writer, img image.Image, opts Options) error {
	return imaging.Encode(w, img, imaging.GIF)
}

func encodeWebP(w io.Writer, img image.Image, opts Options) error {
	quality := opts.Quality
	if quality == 0 {
		quality = 80
	}
	return webp.Encode(w, img, webp.Options{
		Quality: quality,
		Method:  opts.Effort,
	})
}

// libaom speed runs 0 (slowest) to 10; higher effort means lower speed
func encodeAVIF(w io.Writer, img image.Image, opts Options) error {
	quality := opts.Quality
	if quality == 0 {
		quality = 50
	}
	speed := 10 - opts.Effort
	if speed < 0 {
		speed = 0
	}
	return avif.Encode(w, img, avif.Options{
		Quality: quality,
		Speed:   speed,
	})
}
