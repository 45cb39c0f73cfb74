package optimizer

import (
	"path/filepath"

	"mindscape/config"
)

// Tier is the compression policy chosen for a source image
type Tier int

const (
	TierDefault Tier = iota
	TierHigh
	TierLarge
	TierVeryLarge
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierLarge:
		return "large-file-reduced"
	case TierVeryLarge:
		return "very-large-file-reduced"
	default:
		return "default"
	}
}

// Selector maps a file name and byte size to a quality tier
type Selector struct {
	critical  map[string]bool
	large     int64
	veryLarge int64
	quality   map[Tier]int
}

// NewSelector builds a Selector from the thresholds, qualities and
// critical allow-list in cfg
func NewSelector(cfg *config.Config) *Selector {
	critical := make(map[string]bool, len(cfg.Critical))
	for _, name := range cfg.Critical {
		critical[name] = true
	}

	return &Selector{
		critical:  critical,
		large:     cfg.Thresholds.LargeBytes,
		veryLarge: cfg.Thresholds.VeryLargeBytes,
		quality: map[Tier]int{
			TierHigh:      cfg.Quality.High,
			TierDefault:   cfg.Quality.Default,
			TierLarge:     cfg.Quality.Large,
			TierVeryLarge: cfg.Quality.VeryLarge,
		},
	}
}

// IsCritical reports whether the base name of path is on the allow-list
func (s *Selector) IsCritical(path string) bool {
	return s.critical[filepath.Base(path)]
}

// IsVeryLarge reports whether size exceeds the very-large threshold
func (s *Selector) IsVeryLarge(size int64) bool {
	return size > s.veryLarge
}

// Tier applies the rules in order; the first match wins. The critical
// exemption only covers files under the large threshold, so an oversized
// critical image still gets aggressive compression.
func (s *Selector) Tier(path string, size int64) Tier {
	switch {
	case s.IsCritical(path) && size < s.large:
		return TierHigh
	case size > s.veryLarge:
		return TierVeryLarge
	case size > s.large:
		return TierLarge
	default:
		return TierDefault
	}
}

// Quality returns the encoder quality for a tier
func (s *Selector) Quality(t Tier) int {
	return s.quality[t]
}

// SelectQuality returns the encoder quality for a file of the given size
func (s *Selector) SelectQuality(path string, size int64) int {
	return s.Quality(s.Tier(path, size))
}
