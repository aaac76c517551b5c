package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramRecord(t *testing.T) {
	h := NewHistogram("states")
	h.Record("CA", true)
	h.Record("TX", false)
	h.Record("CA", false)
	h.Record("ca", true)
	h.Record("", false)

	assert.Equal(t, "states", h.Name())
	assert.Equal(t, 4, h.Len())

	ca, ok := h.Get("CA")
	require.True(t, ok)
	assert.Equal(t, Entry{Key: "CA", Jobs: 2, Certified: 1}, ca)

	lower, ok := h.Get("ca")
	require.True(t, ok)
	assert.Equal(t, Entry{Key: "ca", Jobs: 1, Certified: 1}, lower)

	empty, ok := h.Get("")
	require.True(t, ok)
	assert.Equal(t, 1, empty.Jobs)

	_, ok = h.Get("NY")
	assert.False(t, ok)
}

func TestHistogramSnapshotIsCopyInFirstSeenOrder(t *testing.T) {
	h := NewHistogram("occupations")
	for _, k := range []string{"b", "a", "b", "c"} {
		h.Record(k, false)
	}
	snap := h.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{snap[0].Key, snap[1].Key, snap[2].Key})

	snap[0].Jobs = 100
	b, _ := h.Get("b")
	assert.Equal(t, 2, b.Jobs)
}

func TestHistogramInvariant(t *testing.T) {
	h := NewHistogram("x")
	for i := 0; i < 50; i++ {
		h.Record(string(rune('a'+i%7)), i%3 == 0)
	}
	total := 0
	for _, e := range h.Snapshot() {
		assert.GreaterOrEqual(t, e.Jobs, e.Certified)
		assert.GreaterOrEqual(t, e.Certified, 0)
		total += e.Jobs
	}
	assert.Equal(t, 50, total)
}
