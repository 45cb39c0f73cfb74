package optimizer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"mindscape/imageproc"
)

// CopySVGs copies every SVG byte-for-byte into the optimized directory
// beside it. It returns copied and failed counts; the error is only set when
// discovery itself fails.
func (o *Optimizer) CopySVGs() (copied, failed int, err error) {
	svgs, err := o.DiscoverSVGs()
	if err != nil {
		return 0, 0, err
	}

	for _, src := range svgs {
		if err := o.CopySVG(src); err != nil {
			failed++
			slog.Warn("svg copy failed", "path", src, "error", err)
			o.reporter.Error("%s: %v", src, err)
			continue
		}

		copied++
		o.reporter.Success("%s (copied)", src)
	}

	return copied, failed, nil
}

// CopySVG copies one SVG into the optimized directory beside it
func (o *Optimizer) CopySVG(src string) error {
	dst := filepath.Join(filepath.Dir(src), o.cfg.OptimizedDir, filepath.Base(src))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return copyFile(src, dst)
}

// copyFile copies a single file, truncating any previous copy
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// EmitFavicons renders a square WebP for each configured favicon size into
// the shared favicon output directory. Sizes are independent: one failing
// size does not stop the others. A missing favicon is not an error.
func (o *Optimizer) EmitFavicons() (written, failed int) {
	src := o.cfg.FaviconPath()
	if _, err := os.Stat(src); err != nil {
		slog.Debug("favicon not found, skipping", "path", src)
		return 0, 0
	}

	outDir := o.cfg.FaviconOutputDir()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		slog.Warn("favicon output directory", "dir", outDir, "error", err)
		o.reporter.Error("favicons: %v", err)
		return 0, len(o.cfg.Favicon.Sizes)
	}

	name := ImageFile{Path: src}.Name()
	for _, size := range o.cfg.Favicon.Sizes {
		dst := outputName(outDir, name, fmt.Sprint(size), ".webp")
		opts := imageproc.Options{
			Width:   size,
			Height:  size,
			Format:  imageproc.WebP,
			Quality: o.cfg.Quality.Favicon,
		}

		if err := o.proc.Render(src, dst, opts); err != nil {
			failed++
			slog.Warn("favicon size failed", "size", size, "error", err)
			o.reporter.Error("%s: %v", filepath.Base(dst), err)
			continue
		}

		written++
		o.reporter.Success("%s", dst)
	}

	return written, failed
}
