// Package optimizer implements the batch image pipeline for the website:
// quality selection, placeholders, responsive variants, critical-image
// extras, SVG pass-through and favicon renditions.
package optimizer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mindscape/config"
	"mindscape/imageproc"
)

// Reporter receives the human-readable progress lines
type Reporter interface {
	Success(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type nopReporter struct{}

func (nopReporter) Success(string, ...interface{}) {}
func (nopReporter) Error(string, ...interface{})   {}

// Optimizer runs the pipeline against one configuration
type Optimizer struct {
	cfg      *config.Config
	proc     imageproc.Processor
	selector *Selector
	formats  []imageproc.Format
	reporter Reporter
}

// New creates an optimizer. A nil reporter discards progress lines.
func New(cfg *config.Config, proc imageproc.Processor, reporter Reporter) (*Optimizer, error) {
	formats := make([]imageproc.Format, 0, len(cfg.Formats))
	for _, name := range cfg.Formats {
		f, err := imageproc.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("invalid output format: %w", err)
		}
		formats = append(formats, f)
	}

	if reporter == nil {
		reporter = nopReporter{}
	}

	return &Optimizer{
		cfg:      cfg,
		proc:     proc,
		selector: NewSelector(cfg),
		formats:  formats,
		reporter: reporter,
	}, nil
}

// Selector exposes the quality selector built from the configuration
func (o *Optimizer) Selector() *Selector {
	return o.selector
}

// Run processes every discovered image, critical files first, then copies
// SVGs and renders favicons. Per-file failures are counted, never returned;
// the error is reserved for failures that make the batch meaningless, such
// as an unreadable source tree.
func (o *Optimizer) Run() (Summary, error) {
	var summary Summary

	images, err := o.DiscoverImages()
	if err != nil {
		return summary, fmt.Errorf("failed to discover images: %w", err)
	}

	critical, remaining := o.Partition(images)

	var queue Queue
	for _, group := range [][]string{critical, remaining} {
		for _, path := range group {
			queue.Push(path, func() Result { return o.ProcessFile(path) })
		}
	}
	slog.Info("discovered images", "critical", len(critical), "remaining", len(remaining), "queued", queue.Len())
	queue.Drain(func(r Result) {
		summary.Add(r)
		o.report(r)
	})

	summary.SVGCopied, summary.SVGFailed, err = o.CopySVGs()
	if err != nil {
		return summary, fmt.Errorf("failed to discover svg files: %w", err)
	}

	summary.FaviconsDone, summary.FaviconFailed = o.EmitFavicons()

	return summary, nil
}

func (o *Optimizer) report(r Result) {
	if r.OK() {
		o.reporter.Success("%s (%s, quality %d, %d files)", r.Path, r.Tier, r.Quality, len(r.Outputs))
		return
	}
	o.reporter.Error("%s: %v", r.Path, r.Err)
}

// ProcessFile runs the single-file pipeline: probe, quality selection,
// placeholder, critical extras, then the width/format fan-out. Variants
// written before a failure stay on disk.
func (o *Optimizer) ProcessFile(path string) Result {
	result := Result{Path: path}

	meta, err := o.proc.Probe(path)
	if err != nil {
		result.Err = fmt.Errorf("failed to read metadata: %w", err)
		return result
	}

	file := ImageFile{
		Path:   path,
		Size:   meta.Size,
		Width:  meta.Width,
		Height: meta.Height,
		Format: meta.Format,
	}

	result.Tier = o.selector.Tier(path, file.Size)
	result.Quality = o.selector.Quality(result.Tier)

	slog.Debug("processing image",
		"path", path,
		"size", file.Size,
		"width", file.Width,
		"tier", result.Tier.String(),
		"quality", result.Quality,
	)

	outDir := filepath.Join(file.Dir(), o.cfg.OptimizedDir)
	placeholderDir := filepath.Join(file.Dir(), o.cfg.PlaceholderDir)
	for _, dir := range []string{outDir, placeholderDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			result.Err = fmt.Errorf("failed to create output directory: %w", err)
			return result
		}
	}

	placeholder := filepath.Join(placeholderDir, file.Name()+".webp")
	if o.MakePlaceholder(path, placeholder) {
		result.Outputs = append(result.Outputs, placeholder)
	}

	if o.selector.IsCritical(path) {
		outputs, err := o.EmitCritical(file, outDir)
		result.Outputs = append(result.Outputs, outputs...)
		if err != nil {
			result.Err = fmt.Errorf("critical variants: %w", err)
			return result
		}
	}

	outputs, err := o.EmitVariants(file, outDir, o.cfg.Widths, o.formats, result.Quality)
	result.Outputs = append(result.Outputs, outputs...)
	if err != nil {
		result.Err = fmt.Errorf("responsive variants: %w", err)
	}

	return result
}

// render writes every variant, attempting all of them, and returns the
// destinations that were written plus the joined errors
func (o *Optimizer) render(variants []Variant) ([]string, error) {
	var (
		written []string
		errs    []error
	)

	for _, v := range variants {
		if err := o.proc.Render(v.Source, v.Dest, v.Options()); err != nil {
			slog.Warn("variant failed", "variant", v.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(v.Dest), err))
			continue
		}
		written = append(written, v.Dest)
	}

	return written, errors.Join(errs...)
}
