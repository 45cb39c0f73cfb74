package optimizer

import "mindscape/imageproc"

// PlanCritical lists the extra outputs for an allow-listed file:
// a full-resolution high-quality WebP always, and for very large sources a
// recompressed original, a max-effort WebP and any named derivatives.
func (o *Optimizer) PlanCritical(file ImageFile, outDir string) []Variant {
	name := file.Name()
	veryLow := o.cfg.Quality.VeryLarge

	variants := []Variant{{
		Source:  file.Path,
		Dest:    outputName(outDir, name, "original", ".webp"),
		Format:  imageproc.WebP,
		Quality: o.cfg.Quality.High,
		Effort:  o.cfg.Effort.Modern,
	}}

	if !o.selector.IsVeryLarge(file.Size) {
		return variants
	}

	variants = append(variants,
		Variant{
			Source:   file.Path,
			Dest:     outputName(outDir, name, "optimized", file.Ext()),
			Format:   file.OutputFormat(),
			Quality:  veryLow,
			Optimize: true,
		},
		Variant{
			Source:  file.Path,
			Dest:    outputName(outDir, name, "optimized", ".webp"),
			Format:  imageproc.WebP,
			Quality: veryLow,
			Effort:  o.cfg.Effort.Max,
		},
	)

	for _, d := range o.cfg.Derivatives {
		if d.Name != name {
			continue
		}
		width := d.Width
		if width > file.Width {
			width = 0
		}
		variants = append(variants, Variant{
			Source:  file.Path,
			Dest:    outputName(outDir, name, d.Suffix, ".webp"),
			Width:   width,
			Format:  imageproc.WebP,
			Quality: veryLow,
			Effort:  o.cfg.Effort.Modern,
		})
	}

	return variants
}

// EmitCritical renders the critical-file extras for file
func (o *Optimizer) EmitCritical(file ImageFile, outDir string) ([]string, error) {
	return o.render(o.PlanCritical(file, outDir))
}
