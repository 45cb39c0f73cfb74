package optimizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"mindscape/imageproc"
)

// ImageFile is a discovered source image. It is only ever read.
type ImageFile struct {
	Path   string
	Size   int64
	Width  int
	Height int
	Format imageproc.Format
}

// Ext returns the extension as written on disk, including the dot
func (f ImageFile) Ext() string {
	return filepath.Ext(f.Path)
}

// Name returns the base name without extension
func (f ImageFile) Name() string {
	return strings.TrimSuffix(filepath.Base(f.Path), f.Ext())
}

// OutputFormat is the encoder for copies that keep the source extension.
// The extension wins over the sniffed content, which is only used for
// unknown extensions.
func (f ImageFile) OutputFormat() imageproc.Format {
	if format, err := imageproc.FormatOf(f.Path); err == nil {
		return format
	}
	return f.Format
}

// Dir returns the directory that holds the file
func (f ImageFile) Dir() string {
	return filepath.Dir(f.Path)
}

// Variant is one derived output file
type Variant struct {
	Source   string
	Dest     string
	Width    int
	Height   int
	Format   imageproc.Format
	Quality  int
	Effort   int
	Blur     float64
	Optimize bool
}

// Options converts the variant into backend render options
func (v Variant) Options() imageproc.Options {
	return imageproc.Options{
		Width:    v.Width,
		Height:   v.Height,
		Format:   v.Format,
		Quality:  v.Quality,
		Effort:   v.Effort,
		Blur:     v.Blur,
		Optimize: v.Optimize,
	}
}

func (v Variant) String() string {
	return fmt.Sprintf("%s (%s, %dpx, q%d)", filepath.Base(v.Dest), v.Format, v.Width, v.Quality)
}

// outputName builds "{name}-{suffix}{ext}"
func outputName(dir, name, suffix, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", name, suffix, ext))
}
