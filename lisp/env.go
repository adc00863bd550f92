package lisp

// An environment is itself an ordinary Value: a pair (parent . bindings),
// where bindings is a list of (symbol . value) pairs and parent is the
// enclosing environment or Nil for the root. Modelling it this way means
// closures capture their environment by reference for free, and the
// whole lexical-scope chain participates in reclamation like any other
// heap value.

// NewEnv creates a new, empty frame extending parent.
func (h *Heap) NewEnv(parent Value) Value {
	return h.Cons(parent, Nil)
}

// EnvGet looks up sym starting at env and ascending through parents,
// comparing symbols by interned identity. The second return value is
// false on a miss (Unbound).
func EnvGet(env Value, sym Value) (Value, bool) {
	for cur := env; cur.kind == KPair; cur = cur.Car() {
		for b := cur.Cdr(); b.kind == KPair; b = b.Cdr() {
			pair := b.Car()
			if pair.kind == KPair && Eq(pair.Car(), sym) {
				return pair.Cdr(), true
			}
		}
	}
	return Nil, false
}

// EnvSet binds sym to value in the innermost frame only: it rebinds an
// existing binding in env, or prepends a fresh one, and never ascends to
// a parent frame.
func (h *Heap) EnvSet(env Value, sym Value, value Value) {
	for b := env.Cdr(); b.kind == KPair; b = b.Cdr() {
		pair := b.Car()
		if pair.kind == KPair && Eq(pair.Car(), sym) {
			pair.cell.cdr = value
			return
		}
	}
	binding := h.Cons(sym, value)
	env.cell.cdr = h.Cons(binding, env.Cdr())
}
