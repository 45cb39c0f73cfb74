// Package imagetest provides fixture images and fast processors for tests.
package imagetest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"mindscape/imageproc"
)

// Gradient returns a w×h image with a simple colour gradient
func Gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// WritePNG writes a w×h PNG to path, creating parent directories
func WritePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Gradient(w, h)); err != nil {
		t.Fatalf("failed to encode png fixture: %v", err)
	}
	write(t, path, buf.Bytes(), 0)
}

// WriteICO writes a single-entry w×h ICO with an embedded PNG to path.
// The container is built by hand so tests do not register an ICO decoder
// themselves.
func WriteICO(t *testing.T, path string, w, h int) {
	t.Helper()
	var payload bytes.Buffer
	if err := png.Encode(&payload, Gradient(w, h)); err != nil {
		t.Fatalf("failed to encode ico payload: %v", err)
	}

	dim := func(n int) uint8 {
		if n >= 256 {
			return 0
		}
		return uint8(n)
	}

	var buf bytes.Buffer
	header := []any{
		uint16(0), uint16(1), uint16(1), // reserved, type icon, one image
		dim(w), dim(h), uint8(0), uint8(0), // size, palette, reserved
		uint16(1), uint16(32), // planes, bits per pixel
		uint32(payload.Len()), uint32(6 + 16),
	}
	for _, v := range header {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("failed to write ico header: %v", err)
		}
	}
	buf.Write(payload.Bytes())
	write(t, path, buf.Bytes(), 0)
}

// WriteJPEG writes a w×h JPEG to path. When size is larger than the encoded
// image the file is padded after the end-of-image marker, which decoders
// ignore, so tests can produce multi-megabyte files cheaply.
func WriteJPEG(t *testing.T, path string, w, h int, size int64) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg fixture: %v", err)
	}
	write(t, path, buf.Bytes(), size)
}

// WriteFile writes raw bytes to path, creating parent directories
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	write(t, path, data, 0)
}

func write(t *testing.T, path string, data []byte, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if pad := size - int64(len(data)); pad > 0 {
		data = append(data, make([]byte, pad)...)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

// Width decodes the header of path and returns its pixel width
func Width(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return cfg.Width
}

// FastNative returns a Native processor whose WebP and AVIF encoders emit
// PNG data. Output files keep their names, decode quickly, and report
// their real dimensions.
func FastNative() *imageproc.Native {
	n := imageproc.NewNative()
	pngEncoder := func(w io.Writer, img image.Image, _ imageproc.Options) error {
		return png.Encode(w, img)
	}
	n.Encoders[imageproc.WebP] = pngEncoder
	n.Encoders[imageproc.AVIF] = pngEncoder
	return n
}
