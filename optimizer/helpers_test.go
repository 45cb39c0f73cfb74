package optimizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"mindscape/config"
	"mindscape/imageproc"
	"mindscape/imageproc/imagetest"
)

var errInjected = errors.New("injected fault")

// testConfig returns a small configuration rooted at root
func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.SourceDirs = []string{"public/images", "public"}
	cfg.Widths = []int{32, 64, 128}
	cfg.Backend = "native"
	return cfg
}

// recordingProcessor wraps a processor, records every render and can fail
// selected renders
type recordingProcessor struct {
	imageproc.Processor

	mu      sync.Mutex
	renders []render
	fail    func(src, dst string, opts imageproc.Options) bool
}

type render struct {
	src, dst string
	opts     imageproc.Options
}

func newRecorder() *recordingProcessor {
	return &recordingProcessor{Processor: imagetest.FastNative()}
}

func (p *recordingProcessor) Render(src, dst string, opts imageproc.Options) error {
	p.mu.Lock()
	p.renders = append(p.renders, render{src: src, dst: dst, opts: opts})
	p.mu.Unlock()

	if p.fail != nil && p.fail(src, dst, opts) {
		return errInjected
	}
	return p.Processor.Render(src, dst, opts)
}

func (p *recordingProcessor) rendersTo(dir string) []render {
	var out []render
	for _, r := range p.renders {
		if filepath.Dir(r.dst) == dir {
			out = append(out, r)
		}
	}
	return out
}

type lineReporter struct {
	ok  []string
	bad []string
}

func (r *lineReporter) Success(format string, args ...interface{}) {
	r.ok = append(r.ok, fmt.Sprintf(format, args...))
}

func (r *lineReporter) Error(format string, args ...interface{}) {
	r.bad = append(r.bad, fmt.Sprintf(format, args...))
}

func newOptimizer(t *testing.T, cfg *config.Config, proc imageproc.Processor) (*Optimizer, *lineReporter) {
	t.Helper()
	rep := &lineReporter{}
	o, err := New(cfg, proc, rep)
	require.NoError(t, err)
	return o, rep
}

// listDir returns the sorted file names in dir, or nil if it does not exist
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
