package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscape/imageproc/imagetest"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{"MINDSCAPE_ROOT", "MINDSCAPE_BACKEND", "MINDSCAPE_NTFY_TOPIC"} {
		t.Setenv(key, "")
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mindscape dev\n", out)
}

func TestSnippetCommand(t *testing.T) {
	out, _, err := execute(t, "snippet", "--color", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "deviceSizes: [640, 750, 828, 1080, 1200, 1920, 2048, 3840],")
	assert.Contains(t, out, "formats: ['image/avif', 'image/webp'],")
}

func TestQualityCommand(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	imagetest.WriteFile(t, logo, make([]byte, 2048))

	out, stderr, err := execute(t, "quality", "--color", "never", logo, filepath.Join(dir, "missing.jpg"))
	require.NoError(t, err)
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "85")
	assert.Contains(t, stderr, "✗")
}

func TestQualityCommand_NoReadableFiles(t *testing.T) {
	_, _, err := execute(t, "quality", filepath.Join(t.TempDir(), "missing.jpg"))

	var ee *exitErr
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 1, ee.code)
}

func TestOptimizeCommand_Native(t *testing.T) {
	root := t.TempDir()
	imagetest.WritePNG(t, filepath.Join(root, "public/images/team.png"), 8, 8)
	imagetest.WriteFile(t, filepath.Join(root, "public/logo.svg"), []byte("<svg/>"))

	out, _, err := execute(t, "--root", root, "--backend", "native", "--color", "never")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ "+filepath.Join(root, "public/images/team.png"))
	assert.Contains(t, out, "STEP")
	assert.Contains(t, out, "module.exports")
	assert.FileExists(t, filepath.Join(root, "public/images/placeholders/team.webp"))
	assert.FileExists(t, filepath.Join(root, "public/optimized/logo.svg"))
}

func TestOptimizeCommand_NoSnippet(t *testing.T) {
	root := t.TempDir()

	out, _, err := execute(t, "optimize", "--root", root, "--backend", "native", "--color", "never", "--no-snippet")
	require.NoError(t, err)
	assert.NotContains(t, out, "module.exports")
}

func TestOptimizeCommand_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindscape.yaml")
	require.NoError(t, os.WriteFile(path, []byte("widths: [0]\n"), 0644))

	out, _, err := execute(t, "--config", path, "--backend", "native")

	var ee *exitErr
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 1, ee.code)
	assert.NotContains(t, out, "Summary")
}

func TestOptimizeCommand_BadBackendFlag(t *testing.T) {
	_, _, err := execute(t, "--root", t.TempDir(), "--backend", "imagemagick")

	var ee *exitErr
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.code)
}
