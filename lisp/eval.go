package lisp

// gcThreshold is the iteration count after which Eval's main loop pauses
// to mark-and-sweep the heap, roughly every 100,000 iterations.
const gcThreshold = 100000

// Evaluator holds the heap and the root environment a running evaluation
// is rooted in, plus the iteration counter that paces periodic
// collection.
type Evaluator struct {
	Heap    *Heap
	RootEnv Value

	ticks int
}

// NewEvaluator builds an evaluator over heap, rooted at rootEnv.
func NewEvaluator(heap *Heap, rootEnv Value) *Evaluator {
	ev := &Evaluator{Heap: heap, RootEnv: rootEnv}
	globalEvaluator = ev
	return ev
}

// Eval is eval_expr: it reduces expr against env to a value, iteratively,
// via an explicit frame stack rather than host recursion. This is what
// gives closures, if and the last expression of a closure body proper
// tail-call elimination — none of those positions grow the Go call stack
// or the Frame stack, no matter how deep the recursion in the evaluated
// program.
func (ev *Evaluator) Eval(expr, env Value) (Value, error) {
	var stack *Frame
	var result Value
	haveResult := false

	for {
		ev.ticks++
		if ev.ticks >= gcThreshold {
			ev.ticks = 0
			ev.Heap.Collect(stack, expr, env, result, ev.RootEnv)
		}

		if !haveResult {
			switch expr.kind {
			case KSymbol:
				v, ok := EnvGet(env, expr)
				if !ok {
					return Nil, unboundErr(expr)
				}
				result, haveResult = v, true
			case KPair:
				nextStack, nextExpr, nextEnv, res, done, err := ev.dispatchApplication(expr, env, stack)
				if err != nil {
					return Nil, err
				}
				stack = nextStack
				if done {
					result, haveResult = res, true
				} else {
					expr, env = nextExpr, nextEnv
				}
			default:
				// Nil, Integer, Builtin, Closure, Macro: self-evaluate.
				result, haveResult = expr, true
			}
			continue
		}

		if stack == nil {
			return result, nil
		}

		nextStack, nextExpr, nextEnv, res, done, err := ev.dispatchReturn(stack, result)
		if err != nil {
			return Nil, err
		}
		stack = nextStack
		if done {
			result, haveResult = res, true
		} else {
			expr, env = nextExpr, nextEnv
			haveResult = false
		}
	}
}

// dispatchApplication classifies car(expr) and either produces a result
// immediately (quote, the (define (f . params) body...) form, lambda,
// defmacro, an empty and, a Builtin in operator position) or
// pushes/extends a frame and hands back the next expr/env to evaluate.
func (ev *Evaluator) dispatchApplication(expr, env Value, stack *Frame) (newStack *Frame, nextExpr, nextEnv Value, result Value, done bool, err error) {
	if !IsProperList(expr) {
		return stack, Nil, Nil, Nil, false, syntaxErr("cannot apply an improper list: %s", Print(expr))
	}
	op := expr.Car()
	args := expr.Cdr()

	if op.kind == KSymbol && isSpecialForm(op) {
		return ev.dispatchSpecialForm(op, args, env, stack)
	}

	// A Builtin value sitting directly in operator position is invoked on
	// the still-unevaluated args.
	if op.kind == KBuiltin {
		vals := ListToSlice(args)
		if err := checkBuiltinArity(op.bi.Name, op.bi.MinParameter, op.bi.MaxParameter, vals); err != nil {
			return stack, Nil, Nil, Nil, false, err
		}
		res, err := op.bi.Fn(ev.Heap, vals)
		if err != nil {
			return stack, Nil, Nil, Nil, false, err
		}
		return stack, Nil, Nil, res, true, nil
	}

	// Ordinary application: evaluate the operator first, then each
	// argument in source order, left to right.
	f := &Frame{Parent: stack, Env: env, Pending: args}
	return f, op, env, Nil, false, nil
}

func (ev *Evaluator) dispatchSpecialForm(op, args, env Value, stack *Frame) (*Frame, Value, Value, Value, bool, error) {
	h := ev.Heap
	switch op.num {
	case symQuote.num:
		if ListLength(args) != 1 {
			return stack, Nil, Nil, Nil, false, argsErr("quote expects exactly 1 argument")
		}
		return stack, Nil, Nil, args.Car(), true, nil

	case symDefine.num:
		if args.kind != KPair {
			return stack, Nil, Nil, Nil, false, argsErr("define expects a target and a value")
		}
		target := args.Car()
		rest := args.Cdr()
		if target.kind == KPair {
			// (define (f . params) body...)
			fsym := target.Car()
			if fsym.kind != KSymbol {
				return stack, Nil, Nil, Nil, false, typeErr("define target is not a symbol")
			}
			if rest.kind != KPair {
				return stack, Nil, Nil, Nil, false, argsErr("define requires at least one body expression")
			}
			closure := ev.makeClosure(env, target.Cdr(), rest)
			h.EnvSet(env, fsym, closure)
			return stack, Nil, Nil, fsym, true, nil
		}
		if target.kind != KSymbol {
			return stack, Nil, Nil, Nil, false, typeErr("define target is not a symbol")
		}
		if ListLength(rest) != 1 {
			return stack, Nil, Nil, Nil, false, argsErr("define expects exactly one value expression")
		}
		f := &Frame{Parent: stack, Env: env, Op: symDefine, EvaluatedArgs: target}
		return f, rest.Car(), env, Nil, false, nil

	case symLambda.num:
		if args.kind != KPair || args.Cdr().kind != KPair {
			return stack, Nil, Nil, Nil, false, argsErr("lambda requires parameters and at least one body expression")
		}
		closure := ev.makeClosure(env, args.Car(), args.Cdr())
		return stack, Nil, Nil, closure, true, nil

	case symIf.num:
		if ListLength(args) != 3 {
			return stack, Nil, Nil, Nil, false, argsErr("if expects exactly 3 arguments")
		}
		then := args.Cdr().Car()
		els := args.Cdr().Cdr().Car()
		f := &Frame{Parent: stack, Env: env, Op: symIf, Pending: h.list2(then, els)}
		return f, args.Car(), env, Nil, false, nil

	case symDefmacro.num:
		if args.kind != KPair || args.Car().kind != KPair {
			return stack, Nil, Nil, Nil, false, argsErr("defmacro requires a (name . params) form and a body")
		}
		nameAndParams := args.Car()
		name := nameAndParams.Car()
		if name.kind != KSymbol {
			return stack, Nil, Nil, Nil, false, typeErr("defmacro name is not a symbol")
		}
		body := args.Cdr()
		if body.kind != KPair {
			return stack, Nil, Nil, Nil, false, argsErr("defmacro requires at least one body expression")
		}
		macro := ev.makeMacro(env, nameAndParams.Cdr(), body)
		h.EnvSet(env, name, macro)
		return stack, Nil, Nil, name, true, nil

	case symApply.num:
		if ListLength(args) != 2 {
			return stack, Nil, Nil, Nil, false, argsErr("apply expects exactly 2 arguments")
		}
		procExpr := args.Car()
		argsExpr := args.Cdr().Car()
		f := &Frame{Parent: stack, Env: env, Op: symApply, Pending: h.list1(argsExpr)}
		return f, procExpr, env, Nil, false, nil

	case symAnd.num:
		if args.kind != KPair {
			return stack, Nil, Nil, symTrue, true, nil
		}
		f := &Frame{Parent: stack, Env: env, Op: symAnd, Pending: args.Cdr()}
		return f, args.Car(), env, Nil, false, nil

	default:
		return stack, Nil, Nil, Nil, false, syntaxErr("unknown special form")
	}
}

// dispatchReturn advances the topmost frame now that
// one of its sub-evaluations has produced result.
func (ev *Evaluator) dispatchReturn(f *Frame, result Value) (*Frame, Value, Value, Value, bool, error) {
	h := ev.Heap

	// Step 1 (and the macro-body-just-finished continuation of it): a
	// closure or macro body is mid-execution.
	if f.Body.kind == KPair {
		if f.inMacroBody && f.Body.Cdr().kind != KPair {
			// About to hand over the last body expression: let it
			// evaluate under the macro's own env, but remember we must
			// treat its value as an expansion, not a final result.
			expr := f.Body.Car()
			f.Body = Nil
			return f, expr, f.Env, Nil, false, nil
		}
		expr := f.Body.Car()
		f.Body = f.Body.Cdr()
		if f.Body.kind != KPair {
			return f.Parent, expr, f.Env, Nil, false, nil
		}
		return f, expr, f.Env, Nil, false, nil
	}
	if f.inMacroBody {
		// The macro body's last expression just produced its value: that
		// value is the expansion, re-evaluated in the call site's env.
		return f.Parent, result, f.CallerEnv, Nil, false, nil
	}

	if f.Op.kind == KNil {
		// The operator has just finished evaluating.
		if result.kind == KMacro {
			f.Op = result
			f.CallerEnv = f.Env
			bodyEnv := h.NewEnv(closureEnv(result))
			if err := bindParams(h, bodyEnv, closureParams(result), f.Pending); err != nil {
				return f, Nil, Nil, Nil, false, err
			}
			f.Env = bodyEnv
			f.inMacroBody = true
			f.Body = closureBody(result)
			return ev.dispatchReturn(f, Nil)
		}
		f.Op = result
		if f.Pending.kind != KPair {
			return ev.applyStep(f, result, f.EvaluatedArgs)
		}
		next := f.Pending.Car()
		f.Pending = f.Pending.Cdr()
		return f, next, f.Env, Nil, false, nil
	}

	if f.Op.kind == KSymbol {
		switch f.Op.num {
		case symDefine.num:
			target := f.EvaluatedArgs
			h.EnvSet(f.Env, target, result)
			return f.Parent, Nil, Nil, target, true, nil

		case symIf.num:
			then := f.Pending.Car()
			els := f.Pending.Cdr().Car()
			if Truthy(result) {
				return f.Parent, then, f.Env, Nil, false, nil
			}
			return f.Parent, els, f.Env, Nil, false, nil

		case symApply.num:
			if f.EvaluatedArgs.kind == KNil {
				// First return: result is the evaluated procedure.
				f.EvaluatedArgs = h.list1(result)
				argsExpr := f.Pending.Car()
				f.Pending = Nil
				return f, argsExpr, f.Env, Nil, false, nil
			}
			// Second return: result is the evaluated argument list.
			if !IsProperList(result) {
				return f, Nil, Nil, Nil, false, syntaxErr("apply: second argument is not a proper list")
			}
			proc := f.EvaluatedArgs.Car()
			return ev.applyStep(f, proc, h.ReverseList(result))

		case symAnd.num:
			if !Truthy(result) {
				return f.Parent, Nil, Nil, Nil, true, nil
			}
			if f.Pending.kind != KPair {
				return f.Parent, Nil, Nil, result, true, nil
			}
			next := f.Pending.Car()
			f.Pending = f.Pending.Cdr()
			return f, next, f.Env, Nil, false, nil
		}
	}

	// Ordinary procedure application: accumulate the
	// evaluated argument (in reverse) and either evaluate the next
	// pending argument or, once all are in, apply.
	f.EvaluatedArgs = h.Cons(result, f.EvaluatedArgs)
	if f.Pending.kind == KPair {
		next := f.Pending.Car()
		f.Pending = f.Pending.Cdr()
		return f, next, f.Env, Nil, false, nil
	}
	return ev.applyStep(f, f.Op, f.EvaluatedArgs)
}

// applyStep performs a call given a resolved operator and its evaluated
// arguments (still in reverse order). Builtins pop the frame and
// produce result immediately; closures reuse the frame instead of
// pushing, which is what eliminates the tail call.
func (ev *Evaluator) applyStep(f *Frame, proc Value, argsReversed Value) (*Frame, Value, Value, Value, bool, error) {
	h := ev.Heap
	args := h.ReverseList(argsReversed)

	switch proc.kind {
	case KBuiltin:
		vals := ListToSlice(args)
		if err := checkBuiltinArity(proc.bi.Name, proc.bi.MinParameter, proc.bi.MaxParameter, vals); err != nil {
			return f, Nil, Nil, Nil, false, err
		}
		res, err := proc.bi.Fn(h, vals)
		if err != nil {
			return f, Nil, Nil, Nil, false, err
		}
		parent := (*Frame)(nil)
		if f != nil {
			parent = f.Parent
		}
		return parent, Nil, Nil, res, true, nil

	case KClosure:
		calleeEnv := h.NewEnv(closureEnv(proc))
		if err := bindParams(h, calleeEnv, closureParams(proc), args); err != nil {
			return f, Nil, Nil, Nil, false, err
		}
		if f == nil {
			f = &Frame{}
		}
		f.Env = calleeEnv
		f.EvaluatedArgs = Nil
		f.Op = proc
		f.Body = closureBody(proc)
		f.inMacroBody = false
		return ev.dispatchReturn(f, Nil)

	default:
		return f, Nil, Nil, Nil, false, typeErr("%s is not applicable", proc.kind)
	}
}

// makeClosure and makeMacro build the (env . (params . body)) payload
// shared by Closure and Macro values.
func (ev *Evaluator) makeClosure(env, params, body Value) Value {
	inner := ev.Heap.consCell(params, body)
	cell := ev.Heap.consCell(env, pairValue(KPair, inner))
	return pairValue(KClosure, cell)
}

func (ev *Evaluator) makeMacro(env, params, body Value) Value {
	inner := ev.Heap.consCell(params, body)
	cell := ev.Heap.consCell(env, pairValue(KPair, inner))
	return pairValue(KMacro, cell)
}

func closureEnv(v Value) Value    { return v.cell.car }
func closureParams(v Value) Value { return v.cell.cdr.Car() }
func closureBody(v Value) Value   { return v.cell.cdr.Cdr() }

// bindParams binds formal parameters to actual arguments under the
// usual arity rules: params may be a proper list of symbols, a single trailing
// "rest" symbol, or an improper list combining both.
func bindParams(h *Heap, env Value, params, args Value) error {
	p, a := params, args
	for {
		switch p.kind {
		case KSymbol:
			h.EnvSet(env, p, a)
			return nil
		case KNil:
			if a.kind != KNil {
				return argsErr("too many arguments")
			}
			return nil
		case KPair:
			sym := p.Car()
			if sym.kind != KSymbol {
				return typeErr("parameter is not a symbol")
			}
			if a.kind != KPair {
				return argsErr("too few arguments")
			}
			h.EnvSet(env, sym, a.Car())
			p, a = p.Cdr(), a.Cdr()
		default:
			return typeErr("invalid parameter list")
		}
	}
}
