package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/chzyer/readline"

	"github.com/kimtg/ToyLisp/lisp"
)

const (
	newPrompt  = "\033[32m>\033[0m "
	contPrompt = "\033[32m.\033[0m "
)

func main() {
	heap := lisp.NewHeap()
	root := lisp.NewRootEnv(heap)
	ev := lisp.NewEvaluator(heap, root)

	loadLibrary(ev, heap, root)

	l, err := readline.NewEx(&readline.Config{
		Prompt:            newPrompt,
		HistoryFile:       ".tinylisp-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		if line == "" {
			continue
		}

		incomplete := evalLine(ev, heap, root, line)
		if incomplete {
			oldline = line + "\n"
			l.SetPrompt(contPrompt)
		} else {
			oldline = ""
			l.SetPrompt(newPrompt)
		}
	}
}

// loadLibrary reads library.lisp from the current working directory,
// evaluating each top-level form and reporting the same four-Kind
// diagnostics as the REPL itself; a missing file is not fatal.
func loadLibrary(ev *lisp.Evaluator, heap *lisp.Heap, root lisp.Value) {
	fmt.Println("Reading library.lisp...")
	data, err := os.ReadFile("library.lisp")
	if err != nil {
		fmt.Println("(no library.lisp found, continuing without a prelude)")
		return
	}
	forms, err := heap.ReadAll(string(data))
	if err != nil {
		fmt.Println(diagnose(err))
		return
	}
	for _, form := range forms {
		if _, err := safeEval(ev, form, root); err != nil {
			fmt.Println("Error in expression:")
			fmt.Println(lisp.Print(form))
			fmt.Println(diagnose(err))
		}
	}
	heap.Collect(nil, root)
}

// evalLine implements the line driver contract: the physical line
// is wrapped in an outer pair of parentheses and read as a single list,
// which turns "did this line close all its parens" into an ordinary
// ReadExpr call — the same one readListTail already uses to detect a
// dangling "(" via the "expecting matching )" syntax error. Each element
// of the resulting list is then evaluated and printed in turn.
func evalLine(ev *lisp.Evaluator, heap *lisp.Heap, root lisp.Value, line string) (incomplete bool) {
	wrapped := "(" + line + ")"
	forms, _, err := heap.ReadExpr(wrapped)
	if err != nil {
		if evErr, ok := err.(*lisp.EvalError); ok && evErr.Kind == lisp.KindSyntax && evErr.Detail == "expecting matching )" {
			return true
		}
		fmt.Println(diagnose(err))
		return false
	}
	for _, form := range lisp.ListToSlice(forms) {
		result, err := safeEval(ev, form, root)
		if err != nil {
			fmt.Println(diagnose(err))
		} else {
			fmt.Println(lisp.Print(result))
		}
	}
	heap.Collect(nil, root)
	return false
}

func diagnose(err error) string {
	if evErr, ok := err.(*lisp.EvalError); ok {
		return evErr.Kind.Message()
	}
	return err.Error()
}

// safeEval recovers from the Go-level panics the core deliberately lets
// through (integer division by zero; overflow in the arithmetic builtins
// wraps silently and does not panic) so a bad expression never takes the
// whole REPL down with it.
func safeEval(ev *lisp.Evaluator, expr, env lisp.Value) (result lisp.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			var b bytes.Buffer
			fmt.Fprintf(&b, "runtime panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("%s", b.String())
		}
	}()
	return ev.Eval(expr, env)
}
