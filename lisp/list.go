package lisp

// Small list helpers shared by the reader, evaluator and builtins. None
// of these allocate except where noted; lists are read (never copied)
// unless a new cons chain is explicitly required.

// IsProperList reports whether v is Nil or a chain of pairs terminated
// by Nil.
func IsProperList(v Value) bool {
	for v.kind == KPair {
		v = v.Cdr()
	}
	return v.kind == KNil
}

// ListLength returns the number of elements in a proper list. Callers
// must have checked IsProperList first; an improper list simply stops
// counting at the first non-pair tail.
func ListLength(v Value) int {
	n := 0
	for v.kind == KPair {
		n++
		v = v.Cdr()
	}
	return n
}

// ListToSlice flattens a proper list into a Go slice in source order.
func ListToSlice(v Value) []Value {
	out := make([]Value, 0, ListLength(v))
	for v.kind == KPair {
		out = append(out, v.Car())
		v = v.Cdr()
	}
	return out
}

// SliceToList builds a fresh proper list from items, in source order.
func (h *Heap) SliceToList(items []Value) Value {
	result := Nil
	for i := len(items) - 1; i >= 0; i-- {
		result = h.Cons(items[i], result)
	}
	return result
}

// ReverseList builds a fresh proper list with elements in reverse order.
func (h *Heap) ReverseList(v Value) Value {
	result := Nil
	for v.kind == KPair {
		result = h.Cons(v.Car(), result)
		v = v.Cdr()
	}
	return result
}

// list1 and list2 build short literal lists; used heavily by the
// evaluator to stash pending-argument state in a frame.
func (h *Heap) list1(a Value) Value    { return h.Cons(a, Nil) }
func (h *Heap) list2(a, b Value) Value { return h.Cons(a, h.Cons(b, Nil)) }
