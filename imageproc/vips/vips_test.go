package vips

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscape/imageproc"
	"mindscape/imageproc/imagetest"
)

func TestMain(m *testing.M) {
	Startup()
	code := m.Run()
	Shutdown()
	os.Exit(code)
}

func TestProcessor_ICO(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "favicon.ico")
	imagetest.WriteICO(t, src, 64, 64)

	p := New()
	meta, err := p.Probe(src)
	require.NoError(t, err)
	assert.Equal(t, 64, meta.Width)
	assert.Equal(t, imageproc.ICO, meta.Format)

	dst := filepath.Join(dir, "favicon-16.png")
	require.NoError(t, p.Render(src, dst, imageproc.Options{Width: 16, Height: 16, Format: imageproc.PNG}))
	assert.Equal(t, 16, imagetest.Width(t, dst))
}

func TestIsICO(t *testing.T) {
	assert.True(t, isICO("public/favicon.ico"))
	assert.True(t, isICO("public/FAVICON.ICO"))
	assert.False(t, isICO("public/favicon.png"))
	assert.False(t, isICO("public/ico"))
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		in   vips.ImageType
		want imageproc.Format
		ok   bool
	}{
		{vips.ImageTypeJPEG, imageproc.JPEG, true},
		{vips.ImageTypePNG, imageproc.PNG, true},
		{vips.ImageTypeGIF, imageproc.GIF, true},
		{vips.ImageTypeWEBP, imageproc.WebP, true},
		{vips.ImageTypeAVIF, imageproc.AVIF, true},
		{vips.ImageTypeTIFF, "", false},
	}

	for _, tt := range tests {
		got, ok := formatOf(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
