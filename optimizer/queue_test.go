package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DrainsInPushOrder(t *testing.T) {
	var q Queue
	var ran []string

	for _, p := range []string{"logo.png", "hero.jpg", "team.jpg"} {
		q.Push(p, func() Result {
			ran = append(ran, p)
			return Result{Path: p}
		})
	}
	require.Equal(t, 3, q.Len())

	var got []string
	q.Drain(func(r Result) { got = append(got, r.Path) })

	assert.Equal(t, []string{"logo.png", "hero.jpg", "team.jpg"}, ran)
	assert.Equal(t, ran, got)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_FailureAndPanicDoNotStopDrain(t *testing.T) {
	var q Queue
	q.Push("a.jpg", func() Result { return Result{Path: "a.jpg", Err: errors.New("corrupt")} })
	q.Push("b.jpg", func() Result { panic("decoder exploded") })
	q.Push("c.jpg", func() Result { return Result{Path: "c.jpg"} })

	var summary Summary
	q.Drain(summary.Add)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "b.jpg", summary.Failures[1].Path)
	assert.Contains(t, summary.Failures[1].Err.Error(), "decoder exploded")
}

func TestSummaryRows(t *testing.T) {
	s := Summary{Succeeded: 4, Failed: 1, SVGCopied: 2, FaviconsDone: 3, FaviconFailed: 1}
	assert.Equal(t, [][]string{
		{"images", "4", "1"},
		{"svg", "2", "0"},
		{"favicons", "3", "1"},
	}, s.Rows())
}
