package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mindscape/config"
	"mindscape/imageproc"
	"mindscape/imageproc/vips"
	"mindscape/optimizer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/probe <image-file>...")
		fmt.Println("Set MINDSCAPE_BACKEND=native to skip libvips")
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var proc imageproc.Processor
	if cfg.Backend == "native" {
		proc = imageproc.NewNative()
	} else {
		vips.Startup()
		defer vips.Shutdown()
		proc = vips.New()
	}

	selector := optimizer.NewSelector(cfg)

	for _, path := range os.Args[1:] {
		meta, err := proc.Probe(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			continue
		}

		tier := selector.Tier(path, meta.Size)
		fmt.Printf("%s\n", filepath.Base(path))
		fmt.Printf("  format:   %s\n", meta.Format)
		fmt.Printf("  size:     %d bytes\n", meta.Size)
		fmt.Printf("  pixels:   %dx%d\n", meta.Width, meta.Height)
		fmt.Printf("  critical: %v\n", selector.IsCritical(path))
		fmt.Printf("  tier:     %s (quality %d)\n", tier, selector.Quality(tier))
	}
}
