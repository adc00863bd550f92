package lisp

import "fmt"

// Declaration is one entry in the built-in procedure catalog: name, arity
// bounds, a one-line description and the Go function implementing it.
// Registering through this catalog (rather than binding functions
// directly) is what lets (help) and (help 'name) enumerate and describe
// every built-in at the REPL.
type Declaration struct {
	Name         string
	Desc         string
	MinParameter int
	MaxParameter int
	Fn           func(h *Heap, args []Value) (Value, error)
}

// Builtin is the runtime value a Declaration is wrapped into once bound
// in an environment. It carries the Declaration's arity bounds along with
// the function itself so the evaluator can validate arity precisely
// before the function ever touches args[n] (§4.4.6: "extras or missing
// ⇒ Args").
type Builtin struct {
	Name         string
	MinParameter int
	MaxParameter int
	Fn           func(h *Heap, args []Value) (Value, error)
}

var declarations = map[string]*Declaration{}
var declOrder []string

func declare(def *Declaration) {
	if _, exists := declarations[def.Name]; !exists {
		declOrder = append(declOrder, def.Name)
	}
	declarations[def.Name] = def
}

// checkBuiltinArity is the arity gate applyStep runs before a Builtin's Fn
// ever sees args, so that too few or too many arguments surface as the
// Args EvalError §4.4.6 mandates rather than an out-of-range index panic.
func checkBuiltinArity(name string, min, max int, args []Value) error {
	n := len(args)
	if n < min || n > max {
		return argsErr("%s expects %d-%d arguments, got %d", name, min, max, n)
	}
	return nil
}

func wantInt(v Value) (int64, error) {
	if v.kind != KInt {
		return 0, typeErr("expected an integer, got %s", v.kind)
	}
	return v.num, nil
}

func boolValue(b bool) Value {
	if b {
		return symTrue
	}
	return Nil
}

func init() {
	declare(&Declaration{
		Name: "car", Desc: "first field of a pair; car of nil is nil.",
		MinParameter: 1, MaxParameter: 1,
		Fn: func(h *Heap, args []Value) (Value, error) {
			v := args[0]
			if v.kind == KNil {
				return Nil, nil
			}
			if v.kind != KPair {
				return Nil, typeErr("car: not a pair")
			}
			return v.Car(), nil
		},
	})
	declare(&Declaration{
		Name: "cdr", Desc: "second field of a pair; cdr of nil is nil.",
		MinParameter: 1, MaxParameter: 1,
		Fn: func(h *Heap, args []Value) (Value, error) {
			v := args[0]
			if v.kind == KNil {
				return Nil, nil
			}
			if v.kind != KPair {
				return Nil, typeErr("cdr: not a pair")
			}
			return v.Cdr(), nil
		},
	})
	declare(&Declaration{
		Name: "cons", Desc: "allocate a new pair from its two arguments.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) {
			return h.Cons(args[0], args[1]), nil
		},
	})
	declare(&Declaration{
		Name: "+", Desc: "integer addition.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) { return intBinop(args, func(a, b int64) int64 { return a + b }) },
	})
	declare(&Declaration{
		Name: "-", Desc: "integer subtraction.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) { return intBinop(args, func(a, b int64) int64 { return a - b }) },
	})
	declare(&Declaration{
		Name: "*", Desc: "integer multiplication.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) { return intBinop(args, func(a, b int64) int64 { return a * b }) },
	})
	declare(&Declaration{
		Name: "/", Desc: "integer division, truncating toward zero; division by zero is not a language-level error.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) { return intBinop(args, func(a, b int64) int64 { return a / b }) },
	})
	declare(&Declaration{
		Name: "=", Desc: "integer equality; t or nil.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) {
			a, err := wantInt(args[0])
			if err != nil {
				return Nil, err
			}
			b, err := wantInt(args[1])
			if err != nil {
				return Nil, err
			}
			return boolValue(a == b), nil
		},
	})
	declare(&Declaration{
		Name: "<", Desc: "integer less-than; t or nil.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) {
			a, err := wantInt(args[0])
			if err != nil {
				return Nil, err
			}
			b, err := wantInt(args[1])
			if err != nil {
				return Nil, err
			}
			return boolValue(a < b), nil
		},
	})
	declare(&Declaration{
		Name: "apply", Desc: "apply a procedure to a proper list of arguments.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) {
			if !IsProperList(args[1]) {
				return Nil, syntaxErr("apply: second argument is not a proper list")
			}
			return globalEvaluator.applyBuiltinValue(args[0], ListToSlice(args[1]))
		},
	})
	declare(&Declaration{
		Name: "eq?", Desc: "identity equality: same variant and same identity.",
		MinParameter: 2, MaxParameter: 2,
		Fn: func(h *Heap, args []Value) (Value, error) {
			return boolValue(Eq(args[0], args[1])), nil
		},
	})
	declare(&Declaration{
		Name: "pair?", Desc: "t iff the argument is a pair.",
		MinParameter: 1, MaxParameter: 1,
		Fn: func(h *Heap, args []Value) (Value, error) {
			return boolValue(args[0].kind == KPair), nil
		},
	})
	declare(&Declaration{
		Name: "help", Desc: "list every built-in, or describe one by name.",
		MinParameter: 0, MaxParameter: 1,
		Fn: func(h *Heap, args []Value) (Value, error) {
			if len(args) == 0 {
				fmt.Println("Available builtins:")
				for _, name := range declOrder {
					fmt.Println("  " + name + ": " + declarations[name].Desc)
				}
				fmt.Println()
				fmt.Println("get further information with (help 'name)")
				return Nil, nil
			}
			if args[0].kind != KSymbol {
				return Nil, typeErr("help: expected a symbol naming a builtin")
			}
			name := symbolName(args[0])
			def, ok := declarations[name]
			if !ok {
				return Nil, unboundErr(args[0])
			}
			fmt.Println("Help for: " + def.Name)
			fmt.Println(def.Desc)
			fmt.Printf("Arguments: %d-%d\n", def.MinParameter, def.MaxParameter)
			return Nil, nil
		},
	})
}

func intBinop(args []Value, op func(a, b int64) int64) (Value, error) {
	a, err := wantInt(args[0])
	if err != nil {
		return Nil, err
	}
	b, err := wantInt(args[1])
	if err != nil {
		return Nil, err
	}
	return NewInt(op(a, b)), nil
}

// globalEvaluator lets the apply builtin recurse into Eval-level
// application (closures, not just other builtins) without threading an
// *Evaluator through every Declaration.Fn signature. It is set by
// NewEvaluator; the most recently built Evaluator is the one used.
var globalEvaluator *Evaluator

// applyBuiltinValue performs a non-tail application of proc to args from
// within a builtin. A closure's parameters are bound in a fresh
// environment and each body expression is evaluated by a nested call to
// Eval, so the call grows the Go stack instead of reusing the caller's
// frame.
func (ev *Evaluator) applyBuiltinValue(proc Value, args []Value) (Value, error) {
	h := ev.Heap
	switch proc.kind {
	case KBuiltin:
		def := proc.bi
		if err := checkBuiltinArity(def.Name, def.MinParameter, def.MaxParameter, args); err != nil {
			return Nil, err
		}
		return def.Fn(h, args)
	case KClosure:
		calleeEnv := h.NewEnv(closureEnv(proc))
		if err := bindParams(h, calleeEnv, closureParams(proc), h.SliceToList(args)); err != nil {
			return Nil, err
		}
		body := closureBody(proc)
		var result Value = Nil
		for body.kind == KPair {
			expr := body.Car()
			body = body.Cdr()
			v, err := ev.Eval(expr, calleeEnv)
			if err != nil {
				return Nil, err
			}
			result = v
		}
		return result, nil
	default:
		return Nil, typeErr("%s is not applicable", proc.kind)
	}
}

// NewRootEnv builds the fresh heap-resident root environment every
// builtin is bound in. t is bound to itself here too, so it reads back
// as its own canonical true value.
func NewRootEnv(h *Heap) Value {
	root := h.NewEnv(Nil)
	h.EnvSet(root, symTrue, symTrue)
	for _, name := range declOrder {
		def := declarations[name]
		h.EnvSet(root, Intern(def.Name), newBuiltin(&Builtin{
			Name: def.Name, MinParameter: def.MinParameter, MaxParameter: def.MaxParameter, Fn: def.Fn,
		}))
	}
	return root
}
