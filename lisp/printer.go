package lisp

import (
	"strconv"
	"strings"
)

// Print renders v in readable form. Round-tripping through ReadExpr is
// guaranteed for every value except Builtin, Closure and Macro, which
// print opaquely.
func Print(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KNil:
		b.WriteString("nil")
	case KInt:
		b.WriteString(strconv.FormatInt(v.num, 10))
	case KSymbol:
		b.WriteString(symbolName(v))
	case KPair:
		writePair(b, v)
	case KBuiltin:
		b.WriteString("#<BUILTIN ")
		b.WriteString(v.bi.Name)
		b.WriteByte('>')
	case KClosure, KMacro:
		// closures and macros print as their (params . body) payload,
		// dropping the captured environment
		writeValue(b, v.Cdr())
	}
}

func writePair(b *strings.Builder, v Value) {
	b.WriteByte('(')
	first := true
	for v.kind == KPair {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		writeValue(b, v.Car())
		v = v.Cdr()
	}
	if v.kind != KNil {
		b.WriteString(" . ")
		writeValue(b, v)
	}
	b.WriteByte(')')
}
