package lisp

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPrelude(t *testing.T) (*Evaluator, Value) {
	t.Helper()
	ev, root := newTestEvaluator()
	data, err := os.ReadFile("../library.lisp")
	require.NoError(t, err)
	forms, err := ev.Heap.ReadAll(string(data))
	require.NoError(t, err)
	for _, form := range forms {
		_, err := ev.Eval(form, root)
		require.NoError(t, err)
	}
	return ev, root
}

func TestPreludeMap(t *testing.T) {
	ev, root := loadPrelude(t)
	v := evalSrc(t, ev, root, "(map (lambda (x) (* x x)) '(1 2 3 4))")
	assert.Equal(t, "(1 4 9 16)", Print(v))
}

func TestPreludeReverseAndAppend(t *testing.T) {
	ev, root := loadPrelude(t)
	v := evalSrc(t, ev, root, "(reverse '(a b c))")
	assert.Equal(t, "(c b a)", Print(v))

	v = evalSrc(t, ev, root, "(append '(1 2) '(3 4))")
	assert.Equal(t, "(1 2 3 4)", Print(v))
}

func TestPreludeFoldlFoldr(t *testing.T) {
	ev, root := loadPrelude(t)
	v := evalSrc(t, ev, root, "(foldl + 0 '(1 2 3 4))")
	assert.Equal(t, int64(10), v.IntValue())

	v = evalSrc(t, ev, root, "(foldr cons nil '(1 2 3))")
	assert.Equal(t, "(1 2 3)", Print(v))
}

func TestPreludeLet(t *testing.T) {
	ev, root := loadPrelude(t)
	v := evalSrc(t, ev, root, "(let ((x 1) (y 2)) (+ x y))")
	assert.Equal(t, int64(3), v.IntValue())
}

func TestPreludeQuasiquote(t *testing.T) {
	ev, root := loadPrelude(t)
	v := evalSrc(t, ev, root, "`(1 ,(+ 1 1) 3)")
	assert.Equal(t, "(1 2 3)", Print(v))

	v = evalSrc(t, ev, root, "`(1 ,@(list 2 3) 4)")
	assert.Equal(t, "(1 2 3 4)", Print(v))
}

func TestPreludeBeginAndWhenMacro(t *testing.T) {
	ev, root := loadPrelude(t)
	evalSrc(t, ev, root, "(defmacro (when c . body) `(if ,c (begin ,@body) nil))")
	v := evalSrc(t, ev, root, "(when (< 0 1) 7)")
	assert.Equal(t, int64(7), v.IntValue())
}
