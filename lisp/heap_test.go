package lisp

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapCollectsUnreachableCells(t *testing.T) {
	h := NewHeap()
	root := h.NewEnv(Nil)

	h.Cons(NewInt(1), Nil) // garbage, never rooted
	keep := h.Cons(NewInt(2), Nil)
	h.EnvSet(root, Intern("kept"), keep)

	before := h.Alive()
	h.Collect(nil, root)
	after := h.Alive()
	assert.Less(t, after, before)

	v, ok := EnvGet(root, Intern("kept"))
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Car().IntValue())
}

func TestHeapToleratesCycles(t *testing.T) {
	h := NewHeap()
	cell := h.Cons(NewInt(1), Nil)
	// Rebind cdr to point back at itself, forming a cycle.
	cell.cell.cdr = cell

	root := h.NewEnv(Nil)
	h.EnvSet(root, Intern("cyc"), cell)

	assert.NotPanics(t, func() {
		h.Collect(nil, root)
	})
	v, ok := EnvGet(root, Intern("cyc"))
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Car().IntValue())
}

// stackGrow forces deep Go-stack growth so a collection mid-growth would
// corrupt a heap-resident value's backing memory if the collector missed
// a root; runtime.KeepAlive pins v past the point GC could run.
func stackGrow(depth int, v Value) {
	var scratch [64]byte
	scratch[0] = byte(depth)
	if depth == 0 {
		runtime.GC()
		runtime.KeepAlive(scratch)
		return
	}
	stackGrow(depth-1, v)
	runtime.KeepAlive(v)
	runtime.KeepAlive(scratch)
}

func TestHeapSurvivesGCDuringStackGrowth(t *testing.T) {
	h := NewHeap()
	pair := h.Cons(NewInt(7), h.Cons(NewInt(8), Nil))
	stackGrow(2000, pair)
	assert.Equal(t, int64(7), pair.Car().IntValue())
	assert.Equal(t, int64(8), pair.Cdr().Car().IntValue())
}

func TestEnvSetRebindsInnermostOnly(t *testing.T) {
	h := NewHeap()
	parent := h.NewEnv(Nil)
	h.EnvSet(parent, Intern("x"), NewInt(1))
	child := h.NewEnv(parent)

	v, ok := EnvGet(child, Intern("x"))
	require.True(t, ok)
	assert.Equal(t, int64(1), v.IntValue())

	h.EnvSet(child, Intern("x"), NewInt(2))
	v, _ = EnvGet(child, Intern("x"))
	assert.Equal(t, int64(2), v.IntValue())

	// parent frame is untouched
	v, _ = EnvGet(parent, Intern("x"))
	assert.Equal(t, int64(1), v.IntValue())
}
