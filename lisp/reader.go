package lisp

import "strconv"

// The reader is a small restartable lexer/recursive-descent parser: each
// call to ReadExpr consumes exactly one S-expression and returns the rest
// of the input, so callers (the REPL, the loader, tests) drive it in a
// loop over a buffer until EOF or a Syntax error.

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || isSpace(c)
}

// nextToken scans past leading whitespace and returns the next token and
// the remainder of the input. ok is false at end of input.
func nextToken(s string) (tok string, rest string, ok bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i >= len(s) {
		return "", s[i:], false
	}
	switch s[i] {
	case '(', ')', '\'', '`':
		return s[i : i+1], s[i+1:], true
	case ',':
		if i+1 < len(s) && s[i+1] == '@' {
			return s[i : i+2], s[i+2:], true
		}
		return s[i : i+1], s[i+1:], true
	default:
		j := i
		for j < len(s) && !isDelimiter(s[j]) {
			j++
		}
		return s[i:j], s[j:], true
	}
}

// ReadExpr consumes exactly one S-expression from input, returning the
// value, the unconsumed remainder, and an error (Syntax) if the input
// does not hold a well-formed expression.
func (h *Heap) ReadExpr(input string) (Value, string, error) {
	tok, rest, ok := nextToken(input)
	if !ok {
		return Nil, rest, syntaxErr("unexpected end of input")
	}
	switch tok {
	case "(":
		return h.readListTail(rest, false)
	case ")":
		return Nil, input, syntaxErr("unexpected )")
	case "'":
		v, rest2, err := h.ReadExpr(rest)
		if err != nil {
			return Nil, rest2, err
		}
		return h.list2(symQuote, v), rest2, nil
	case "`":
		v, rest2, err := h.ReadExpr(rest)
		if err != nil {
			return Nil, rest2, err
		}
		return h.list2(symQuasiquote, v), rest2, nil
	case ",":
		v, rest2, err := h.ReadExpr(rest)
		if err != nil {
			return Nil, rest2, err
		}
		return h.list2(symUnquote, v), rest2, nil
	case ",@":
		v, rest2, err := h.ReadExpr(rest)
		if err != nil {
			return Nil, rest2, err
		}
		return h.list2(symUnquoteSplicing, v), rest2, nil
	default:
		return parseAtom(tok), rest, nil
	}
}

// readListTail parses the contents of a list after the opening "(" has
// already been consumed, including the dotted-pair form (a b . c). hadHead
// reports whether this call has already read at least one element of the
// list, which is what lets a "." be accepted only after a prior element —
// "." as the very first token (e.g. "(. 1)") is a syntax error (§4.1: "a
// syntax error results if . appears with no prior element").
func (h *Heap) readListTail(input string, hadHead bool) (Value, string, error) {
	tok, rest, ok := nextToken(input)
	if !ok {
		return Nil, input, syntaxErr("expecting matching )")
	}
	if tok == ")" {
		return Nil, rest, nil
	}
	if tok == "." {
		if !hadHead {
			return Nil, rest, syntaxErr("unexpected . with no prior element")
		}
		tail, rest2, err := h.ReadExpr(rest)
		if err != nil {
			return Nil, rest2, err
		}
		closeTok, rest3, ok2 := nextToken(rest2)
		if !ok2 || closeTok != ")" {
			return Nil, rest2, syntaxErr("expected ) after dotted tail")
		}
		return tail, rest3, nil
	}
	head, restAfterHead, err := h.ReadExpr(input)
	if err != nil {
		return Nil, restAfterHead, err
	}
	tail, restFinal, err := h.readListTail(restAfterHead, true)
	if err != nil {
		return Nil, restFinal, err
	}
	return h.Cons(head, tail), restFinal, nil
}

// parseAtom classifies a bare token: a signed-decimal scan
// yields an Integer, the literal text "nil" yields Nil, anything else
// interns as a Symbol (case-preserving).
func parseAtom(tok string) Value {
	if tok == "nil" {
		return Nil
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return NewInt(n)
	}
	return Intern(tok)
}

// ReadAll drives ReadExpr in a loop over the whole of input, returning
// every top-level form it contains. A trailing run of only whitespace is
// not an error; any other incomplete trailing form is.
func (h *Heap) ReadAll(input string) ([]Value, error) {
	var forms []Value
	rest := input
	for {
		if _, r, ok := nextToken(rest); !ok {
			_ = r
			return forms, nil
		}
		v, r, err := h.ReadExpr(rest)
		if err != nil {
			return forms, err
		}
		forms = append(forms, v)
		rest = r
	}
}
