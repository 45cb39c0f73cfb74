package optimizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscape/imageproc/imagetest"
)

func TestDiscoverImages_DedupesOverlappingDirs(t *testing.T) {
	root := t.TempDir()
	imagetest.WritePNG(t, filepath.Join(root, "public/images/team.png"), 8, 8)
	imagetest.WritePNG(t, filepath.Join(root, "public/images/blog/post.PNG"), 8, 8)
	imagetest.WritePNG(t, filepath.Join(root, "public/banner.png"), 8, 8)
	imagetest.WriteFile(t, filepath.Join(root, "public/robots.txt"), []byte("User-agent: *"))
	imagetest.WriteFile(t, filepath.Join(root, "public/logo.svg"), []byte("<svg/>"))

	o, _ := newOptimizer(t, testConfig(root), newRecorder())

	images, err := o.DiscoverImages()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "public/images/blog/post.PNG"),
		filepath.Join(root, "public/images/team.png"),
		filepath.Join(root, "public/banner.png"),
	}, images)
}

func TestDiscoverImages_SkipsOutputAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	imagetest.WritePNG(t, filepath.Join(root, "public/images/team.png"), 8, 8)
	imagetest.WritePNG(t, filepath.Join(root, "public/images/optimized/team-32.png"), 8, 8)
	imagetest.WritePNG(t, filepath.Join(root, "public/images/placeholders/team.webp"), 8, 8)
	imagetest.WritePNG(t, filepath.Join(root, "public/.cache/old.png"), 8, 8)
	imagetest.WritePNG(t, filepath.Join(root, "public/images/.draft.png"), 8, 8)

	o, _ := newOptimizer(t, testConfig(root), newRecorder())

	images, err := o.DiscoverImages()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "public/images/team.png")}, images)
}

func TestDiscoverImages_MissingDirsAreSkipped(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.SourceDirs = []string{"public/does-not-exist", "public/icons"}

	o, _ := newOptimizer(t, cfg, newRecorder())

	images, err := o.DiscoverImages()
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestDiscoverImages_UnreadableTreeIsFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "public/images/locked")
	imagetest.WritePNG(t, filepath.Join(locked, "secret.png"), 8, 8)
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	o, _ := newOptimizer(t, testConfig(root), newRecorder())

	_, err := o.DiscoverImages()
	assert.Error(t, err)

	_, err = o.Run()
	assert.Error(t, err)
}

func TestPartition_KeepsOrder(t *testing.T) {
	o, _ := newOptimizer(t, testConfig(t.TempDir()), newRecorder())

	critical, remaining := o.Partition([]string{
		"public/images/team.jpg",
		"public/logo.png",
		"public/images/blog.jpg",
		"public/images/founder.jpg",
	})

	assert.Equal(t, []string{"public/logo.png", "public/images/founder.jpg"}, critical)
	assert.Equal(t, []string{"public/images/team.jpg", "public/images/blog.jpg"}, remaining)
}
