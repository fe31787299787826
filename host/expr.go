// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errExprParse      = errors.New("expression syntax error")
	errDivideByZero   = errors.New("expression divides by zero")
	errUnbalancedExpr = errors.New("expression has unbalanced brackets")
)

// A resolver supplies the values of identifiers and memory references
// found in expressions.
type resolver interface {
	resolveIdentifier(s string) (int64, error)
	resolveMemory(addr int64) int64
}

type binaryOp struct {
	symbol     string
	precedence int
	eval       func(a, b int64) (int64, error)
}

// Binary operators, longest symbols first so that "<<" is matched before
// "<".
var binaryOps = []binaryOp{
	{"<<", 4, func(a, b int64) (int64, error) { return a << uint64(b&63), nil }},
	{">>", 4, func(a, b int64) (int64, error) { return a >> uint64(b&63), nil }},
	{"*", 6, func(a, b int64) (int64, error) { return a * b, nil }},
	{"/", 6, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivideByZero
		}
		return a / b, nil
	}},
	{"%", 6, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivideByZero
		}
		return a % b, nil
	}},
	{"+", 5, func(a, b int64) (int64, error) { return a + b, nil }},
	{"-", 5, func(a, b int64) (int64, error) { return a - b, nil }},
	{"&", 3, func(a, b int64) (int64, error) { return a & b, nil }},
	{"^", 2, func(a, b int64) (int64, error) { return a ^ b, nil }},
	{"|", 1, func(a, b int64) (int64, error) { return a | b, nil }},
}

// An exprParser evaluates arithmetic expressions typed at the host
// prompt. Numbers are decimal unless prefixed ($ or 0x for hexadecimal,
// % or 0b for binary, 0d for decimal) or unless hexMode is enabled.
// Square brackets read a byte of memory, and the unary < and > operators
// select the low and high bytes of a value.
type exprParser struct {
	hexMode bool
}

func newExprParser() *exprParser {
	return &exprParser{}
}

// Parse evaluates the expression, resolving identifiers and memory
// references through 'r'.
func (p *exprParser) Parse(expr string, r resolver) (int64, error) {
	s := &exprScanner{s: expr, hexMode: p.hexMode, r: r}
	v, err := s.parseBinary(1)
	if err != nil {
		return 0, err
	}
	if s.peek() != 0 {
		return 0, errExprParse
	}
	return v, nil
}

// An exprScanner holds the state of a single expression evaluation.
type exprScanner struct {
	s       string
	pos     int
	hexMode bool
	r       resolver
}

// Return the next non-blank character without consuming it, or 0 at the
// end of the expression.
func (e *exprScanner) peek() byte {
	for e.pos < len(e.s) && (e.s[e.pos] == ' ' || e.s[e.pos] == '\t') {
		e.pos++
	}
	if e.pos == len(e.s) {
		return 0
	}
	return e.s[e.pos]
}

func (e *exprScanner) matchBinary() *binaryOp {
	if e.peek() == 0 {
		return nil
	}
	for i := range binaryOps {
		if strings.HasPrefix(e.s[e.pos:], binaryOps[i].symbol) {
			return &binaryOps[i]
		}
	}
	return nil
}

// Evaluate a chain of binary operations whose precedence is at least
// minPrec. Operators of equal precedence associate to the left.
func (e *exprScanner) parseBinary(minPrec int) (int64, error) {
	lhs, err := e.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		op := e.matchBinary()
		if op == nil || op.precedence < minPrec {
			return lhs, nil
		}
		e.pos += len(op.symbol)

		rhs, err := e.parseBinary(op.precedence + 1)
		if err != nil {
			return 0, err
		}
		lhs, err = op.eval(lhs, rhs)
		if err != nil {
			return 0, err
		}
	}
}

func (e *exprScanner) parseUnary() (int64, error) {
	c := e.peek()
	switch c {
	case 0:
		return 0, errExprParse

	case '-', '+', '~', '<', '>':
		e.pos++
		v, err := e.parseUnary()
		if err != nil {
			return 0, err
		}
		switch c {
		case '-':
			return -v, nil
		case '~':
			return ^v, nil
		case '<':
			return v & 0xff, nil
		case '>':
			return (v >> 8) & 0xff, nil
		}
		return v, nil

	case '(', '[':
		e.pos++
		v, err := e.parseBinary(1)
		if err != nil {
			return 0, err
		}
		closer := byte(')')
		if c == '[' {
			closer = ']'
		}
		if e.peek() != closer {
			return 0, errUnbalancedExpr
		}
		e.pos++
		if c == '[' {
			return e.r.resolveMemory(v), nil
		}
		return v, nil

	default:
		return e.parseOperand()
	}
}

func (e *exprScanner) parseOperand() (int64, error) {
	c := e.s[e.pos]
	switch {
	case c == '$':
		e.pos++
		return e.parseNumber(16, hexadecimal)

	case c == '%':
		e.pos++
		return e.parseNumber(2, binary)

	case c == '\'':
		if e.pos+2 >= len(e.s) || e.s[e.pos+2] != '\'' {
			return 0, errExprParse
		}
		v := int64(e.s[e.pos+1])
		e.pos += 3
		return v, nil

	case c == '0' && e.pos+1 < len(e.s) && strings.IndexByte("xbd", e.s[e.pos+1]) >= 0:
		prefix := e.s[e.pos+1]
		e.pos += 2
		switch prefix {
		case 'x':
			return e.parseNumber(16, hexadecimal)
		case 'b':
			return e.parseNumber(2, binary)
		default:
			return e.parseNumber(10, decimal)
		}

	case decimal(c):
		if e.hexMode {
			return e.parseNumber(16, hexadecimal)
		}
		return e.parseNumber(10, decimal)

	case identifier(c):
		start := e.pos
		for e.pos < len(e.s) && identifier(e.s[e.pos]) {
			e.pos++
		}
		id := e.s[start:e.pos]
		if e.hexMode && allHex(id) {
			return strconv.ParseInt(id, 16, 64)
		}
		return e.r.resolveIdentifier(id)

	default:
		return 0, errExprParse
	}
}

func (e *exprScanner) parseNumber(base int, fn func(c byte) bool) (int64, error) {
	start := e.pos
	for e.pos < len(e.s) && fn(e.s[e.pos]) {
		e.pos++
	}
	if start == e.pos {
		return 0, errExprParse
	}
	v, err := strconv.ParseInt(e.s[start:e.pos], base, 64)
	if err != nil {
		return 0, errExprParse
	}
	return v, nil
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		if !hexadecimal(s[i]) {
			return false
		}
	}
	return true
}

func decimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexadecimal(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func binary(c byte) bool {
	return c == '0' || c == '1'
}

func identifier(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '.'
}
