package optimizer

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"mindscape/imageproc"
)

// PlanVariants lists the responsive outputs for file. Widths above the
// native width are skipped, never upscaled. Each remaining width yields one
// copy in the source format at encoder defaults followed by one copy per
// modern format at quality.
func (o *Optimizer) PlanVariants(file ImageFile, outDir string, widths []int, formats []imageproc.Format, quality int) []Variant {
	var variants []Variant

	for _, width := range widths {
		if width > file.Width {
			continue
		}

		suffix := fmt.Sprint(width)
		variants = append(variants, Variant{
			Source: file.Path,
			Dest:   outputName(outDir, file.Name(), suffix, file.Ext()),
			Width:  width,
			Format: file.OutputFormat(),
		})

		for _, format := range formats {
			variants = append(variants, Variant{
				Source:  file.Path,
				Dest:    outputName(outDir, file.Name(), suffix, "."+string(format)),
				Width:   width,
				Format:  format,
				Quality: quality,
				Effort:  o.cfg.Effort.Modern,
			})
		}
	}

	return variants
}

// EmitVariants renders the planned responsive outputs. Every variant is
// attempted; any failure is returned so the file is counted as failed.
func (o *Optimizer) EmitVariants(file ImageFile, outDir string, widths []int, formats []imageproc.Format, quality int) ([]string, error) {
	variants := o.PlanVariants(file, outDir, widths, formats, quality)
	if len(variants) == 0 {
		slog.Debug("no responsive widths fit source", "path", file.Path, "width", file.Width)
		return nil, nil
	}
	return o.render(variants)
}

// MakePlaceholder writes a tiny blurred WebP preview of src to dst. It
// reports failure instead of returning it so the caller can carry on.
func (o *Optimizer) MakePlaceholder(src, dst string) bool {
	opts := imageproc.Options{
		Width:   o.cfg.Placeholder.Width,
		Blur:    o.cfg.Placeholder.Blur,
		Format:  imageproc.WebP,
		Quality: o.cfg.Quality.Placeholder,
	}

	if err := o.proc.Render(src, dst, opts); err != nil {
		slog.Warn("placeholder failed", "path", src, "error", err)
		return false
	}

	slog.Debug("placeholder written", "path", filepath.Base(dst))
	return true
}
