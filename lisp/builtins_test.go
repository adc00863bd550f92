package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootEnvBindsTToItself(t *testing.T) {
	h := NewHeap()
	root := NewRootEnv(h)
	v, ok := EnvGet(root, symTrue)
	require.True(t, ok)
	assert.True(t, Eq(v, symTrue))
}

func TestHelpListsAndDescribesBuiltins(t *testing.T) {
	ev, root := newTestEvaluator()
	v := evalSrc(t, ev, root, "(help)")
	assert.True(t, v.IsNil())
	v = evalSrc(t, ev, root, "(help 'car)")
	assert.True(t, v.IsNil())
}

func TestHelpUnknownNameIsUnbound(t *testing.T) {
	ev, root := newTestEvaluator()
	err := evalErr(t, ev, root, "(help 'no-such-builtin)")
	assert.Equal(t, KindUnbound, err.(*EvalError).Kind)
}

func TestComparisonBuiltins(t *testing.T) {
	ev, root := newTestEvaluator()
	assert.Equal(t, "t", Print(evalSrc(t, ev, root, "(= 3 3)")))
	assert.Equal(t, "nil", Print(evalSrc(t, ev, root, "(= 3 4)")))
	assert.Equal(t, "t", Print(evalSrc(t, ev, root, "(< 3 4)")))
	assert.Equal(t, "nil", Print(evalSrc(t, ev, root, "(< 4 3)")))
}

func TestDivisionTruncatesTowardZero(t *testing.T) {
	ev, root := newTestEvaluator()
	assert.Equal(t, int64(-2), evalSrc(t, ev, root, "(/ -7 3)").IntValue())
}
