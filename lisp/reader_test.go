package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRead(t *testing.T, h *Heap, src string) Value {
	t.Helper()
	v, _, err := h.ReadExpr(src)
	require.NoError(t, err)
	return v
}

func TestReadAtoms(t *testing.T) {
	h := NewHeap()
	assert.Equal(t, KInt, mustRead(t, h, "42").Kind())
	assert.Equal(t, int64(-7), mustRead(t, h, "-7").IntValue())
	assert.True(t, mustRead(t, h, "nil").IsNil())
	assert.Equal(t, KSymbol, mustRead(t, h, "foo").Kind())
}

func TestReadListsAndDottedPairs(t *testing.T) {
	h := NewHeap()
	v := mustRead(t, h, "(1 2 3)")
	assert.Equal(t, "(1 2 3)", Print(v))

	v = mustRead(t, h, "(1 . 2)")
	assert.Equal(t, "(1 . 2)", Print(v))

	v = mustRead(t, h, "(1 2 . 3)")
	assert.Equal(t, "(1 2 . 3)", Print(v))
}

func TestReadQuoteFamily(t *testing.T) {
	h := NewHeap()
	assert.Equal(t, "(quote x)", Print(mustRead(t, h, "'x")))
	assert.Equal(t, "(quasiquote x)", Print(mustRead(t, h, "`x")))
	assert.Equal(t, "(unquote x)", Print(mustRead(t, h, ",x")))
	assert.Equal(t, "(unquote-splicing x)", Print(mustRead(t, h, ",@x")))
}

func TestReadSyntaxErrors(t *testing.T) {
	h := NewHeap()
	_, _, err := h.ReadExpr("(1 2")
	require.Error(t, err)
	evErr, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, KindSyntax, evErr.Kind)

	_, _, err = h.ReadExpr(")")
	require.Error(t, err)
	_, _, err = h.ReadExpr("(. 1)")
	require.Error(t, err)
}

func TestReadPrintRoundTrip(t *testing.T) {
	h := NewHeap()
	for _, src := range []string{"42", "-3", "nil", "foo", "(1 2 3)", "(1 . 2)", "(a (b c) . d)"} {
		v := mustRead(t, h, src)
		assert.Equal(t, src, Print(v))
	}
}

func TestSymbolIdentity(t *testing.T) {
	a := Intern("foo")
	b := Intern("foo")
	c := Intern("Foo")
	assert.True(t, Eq(a, b))
	assert.False(t, Eq(a, c))
}

func TestReadAll(t *testing.T) {
	h := NewHeap()
	forms, err := h.ReadAll("(+ 1 2) (define x 3) x")
	require.NoError(t, err)
	require.Len(t, forms, 3)
}
