package optimizer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// scan walks dirs recursively and returns files whose lowercase extension
// is in exts. Paths are deduplicated and keep first-seen order. Missing
// directories are skipped; the output directories are never entered.
func (o *Optimizer) scan(dirs []string, exts map[string]bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Debug("source directory missing, skipping", "dir", dir)
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			slog.Debug("source path is not a directory, skipping", "dir", dir)
			continue
		}

		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			name := d.Name()
			if d.IsDir() {
				if path != dir && (o.isOutputDir(name) || strings.HasPrefix(name, ".")) {
					return filepath.SkipDir
				}
				return nil
			}

			if strings.HasPrefix(name, ".") {
				return nil
			}
			if !exts[strings.ToLower(filepath.Ext(name))] {
				return nil
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("absolute path for %s: %w", path, err)
			}
			if seen[abs] {
				return nil
			}
			seen[abs] = true
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	}

	return files, nil
}

func (o *Optimizer) isOutputDir(name string) bool {
	return name == o.cfg.OptimizedDir || name == o.cfg.PlaceholderDir
}

// DiscoverImages returns every raster image under the configured directories
func (o *Optimizer) DiscoverImages() ([]string, error) {
	exts := make(map[string]bool, len(o.cfg.RasterExtensions))
	for _, ext := range o.cfg.RasterExtensions {
		exts[strings.ToLower(ext)] = true
	}
	return o.scan(o.cfg.SourcePaths(), exts)
}

// DiscoverSVGs returns every .svg under the configured directories
func (o *Optimizer) DiscoverSVGs() ([]string, error) {
	return o.scan(o.cfg.SourcePaths(), map[string]bool{".svg": true})
}

// Partition splits paths into critical and remaining, keeping order
func (o *Optimizer) Partition(paths []string) (critical, remaining []string) {
	for _, p := range paths {
		if o.selector.IsCritical(p) {
			critical = append(critical, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	return critical, remaining
}
