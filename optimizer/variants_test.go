package optimizer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscape/config"
	"mindscape/imageproc"
)

func destNames(variants []Variant) []string {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = filepath.Base(v.Dest)
	}
	return names
}

func TestPlanVariants_SkipsWidthsAboveNative(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "/site/public/images/hero.jpg", Width: 2000, Format: imageproc.JPEG}

	variants := o.PlanVariants(file, "/site/public/images/optimized",
		[]int{320, 1920, 3840}, []imageproc.Format{imageproc.WebP, imageproc.AVIF}, 65)

	assert.Equal(t, []string{
		"hero-320.jpg", "hero-320.webp", "hero-320.avif",
		"hero-1920.jpg", "hero-1920.webp", "hero-1920.avif",
	}, destNames(variants))

	for _, v := range variants {
		assert.LessOrEqual(t, v.Width, file.Width)
		assert.Equal(t, "/site/public/images/optimized", filepath.Dir(v.Dest))
		switch v.Format {
		case imageproc.JPEG:
			assert.Zero(t, v.Quality, "source format keeps encoder defaults")
		default:
			assert.Equal(t, 65, v.Quality)
			assert.Equal(t, config.Default().Effort.Modern, v.Effort)
		}
	}
}

func TestPlanVariants_ExactWidthIsKept(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "team.PNG", Width: 640, Format: imageproc.PNG}

	variants := o.PlanVariants(file, "out", []int{640, 750}, []imageproc.Format{imageproc.WebP}, 80)

	assert.Equal(t, []string{"team-640.PNG", "team-640.webp"}, destNames(variants))
}

func TestPlanVariants_TinySourceYieldsNothing(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "icon.png", Width: 16, Format: imageproc.PNG}

	assert.Empty(t, o.PlanVariants(file, "out", config.Default().Widths, nil, 80))
}

func TestPlanCritical_SmallFileOnlyOriginal(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "logo.png", Size: 200 * config.KiB, Width: 512, Format: imageproc.PNG}

	variants := o.PlanCritical(file, "out")

	require.Len(t, variants, 1)
	assert.Equal(t, "logo-original.webp", filepath.Base(variants[0].Dest))
	assert.Equal(t, 85, variants[0].Quality)
	assert.Zero(t, variants[0].Width, "original keeps full resolution")
}

func TestPlanCritical_VeryLargeFounder(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "founder.jpg", Size: 6 * config.MiB, Width: 3000, Format: imageproc.JPEG}

	variants := o.PlanCritical(file, "out")

	assert.Equal(t, []string{
		"founder-original.webp",
		"founder-optimized.jpg",
		"founder-optimized.webp",
		"founder-reduced.webp",
	}, destNames(variants))

	recompressed := variants[1]
	assert.Equal(t, imageproc.JPEG, recompressed.Format)
	assert.Equal(t, 65, recompressed.Quality)
	assert.True(t, recompressed.Optimize)

	assert.Equal(t, config.Default().Effort.Max, variants[2].Effort)
	assert.Equal(t, 1200, variants[3].Width)
	assert.Equal(t, 65, variants[3].Quality)
}

func TestPlanCritical_FounderNarrowerThanDerivative(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "founder.jpg", Size: 6 * config.MiB, Width: 900, Format: imageproc.JPEG}

	variants := o.PlanCritical(file, "out")

	require.Len(t, variants, 4)
	assert.Zero(t, variants[3].Width, "derivative must not upscale")
}

func TestPlanCritical_VeryLargeWithoutDerivative(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "hero-background.jpg", Size: 5 * config.MiB, Width: 2400, Format: imageproc.JPEG}

	variants := o.PlanCritical(file, "out")

	assert.Equal(t, []string{
		"hero-background-original.webp",
		"hero-background-optimized.jpg",
		"hero-background-optimized.webp",
	}, destNames(variants))
}

func TestPlanVariants_FormatFollowsExtension(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())
	file := ImageFile{Path: "team.jpg", Size: 6 * config.MiB, Width: 64, Format: imageproc.PNG}

	variants := o.PlanVariants(file, "out", []int{32}, nil, 80)
	require.Len(t, variants, 1)
	assert.Equal(t, "team-32.jpg", filepath.Base(variants[0].Dest))
	assert.Equal(t, imageproc.JPEG, variants[0].Format)

	file.Path = "founder.jpg"
	critical := o.PlanCritical(file, "out")
	require.Len(t, critical, 4)
	assert.Equal(t, "founder-optimized.jpg", filepath.Base(critical[1].Dest))
	assert.Equal(t, imageproc.JPEG, critical[1].Format)
}

func TestImageFile_OutputFormatUnknownExtension(t *testing.T) {
	file := ImageFile{Path: "scan.jfif", Format: imageproc.JPEG}
	assert.Equal(t, imageproc.JPEG, file.OutputFormat())
}
