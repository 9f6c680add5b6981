package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClock(p *Profiler) *time.Time {
	t := time.Unix(0, 0)
	p.now = func() time.Time { return t }
	return &t
}

func TestProfiler_ScopesInFirstSeenOrder(t *testing.T) {
	p := NewProfiler()
	clock := fakeClock(p)

	p.BeginScope("upload")
	*clock = clock.Add(2 * time.Millisecond)
	p.EndScope("upload")

	p.BeginScope("encode")
	*clock = clock.Add(500 * time.Microsecond)
	p.EndScope("encode")

	p.BeginScope("upload")
	*clock = clock.Add(time.Millisecond)
	p.EndScope("upload")

	assert.Equal(t, []string{"upload", "encode"}, p.Order)
	assert.Equal(t, time.Millisecond, p.Scopes["upload"])
	assert.Equal(t, 500*time.Microsecond, p.Scopes["encode"])

	lines := p.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1.00 ms")
	assert.Contains(t, lines[1], "0.50 ms")
}

func TestProfiler_EndWithoutBegin(t *testing.T) {
	p := NewProfiler()
	p.EndScope("missing")
	assert.Empty(t, p.Scopes)
}

func TestProfiler_CountsSorted(t *testing.T) {
	p := NewProfiler()
	p.SetCount("z", 1)
	p.SetCount("a", 2)

	assert.Equal(t, []string{"a               2", "z               1"}, p.Lines())
	p.Reset()
	assert.Contains(t, p.String(), "a")
}
