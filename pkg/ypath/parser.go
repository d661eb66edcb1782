/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import "fmt"

// Operator precedence: a higher value binds tighter. The parser pops the
// operator stack while its top entry binds strictly tighter than the
// incoming operator.
const (
	precFilter  = 5
	precSlash   = 10
	precComma   = 15
	precSibling = 20
)

func operatorPrecedence(t lexemeType) int {
	switch t {
	case lexemeScalarFilter, lexemeCollectionFilter, lexemeSeqFilter, lexemeMapFilter:
		return precFilter
	case lexemeSlash:
		return precSlash
	case lexemeComma:
		return precComma
	case lexemeSibling:
		return precSibling
	}
	return 0
}

// parser folds the lexeme stream into a single Expr using a shunting yard
// over two stacks.
type parser struct {
	lx        *lexer
	diag      Diag
	operands  []*Expr
	operators []lexeme
}

// parse compiles a path expression into an Expr. The input must already be
// trimmed of surrounding whitespace.
func parse(input string, diag Diag) (*Expr, error) {
	if diag == nil {
		diag = NopDiag
	}
	p := &parser{lx: lex("path lexer", input, diag), diag: diag}

	for {
		lx := p.lx.nextLexeme()
		switch lx.typ {
		case lexemeStreamStart:
			// token stream begins

		case lexemeError:
			return nil, &PathError{Kind: lx.kind, Span: lx.span, Msg: lx.val}

		case lexemeEOF:
			return p.finish()

		case lexemeRoot, lexemeThis, lexemeParent, lexemeEveryChild,
			lexemeEveryChildRecursive, lexemeAlias, lexemeSimpleKey,
			lexemeMapKey, lexemeSeqIndex, lexemeSeqSlice:
			e, err := p.operandExpr(lx)
			if err != nil {
				return nil, err
			}
			p.pushOperand(e)

		case lexemeSlash, lexemeComma, lexemeSibling:
			if err := p.popTighter(operatorPrecedence(lx.typ)); err != nil {
				return nil, err
			}
			p.operators = append(p.operators, lx)

		case lexemeScalarFilter, lexemeCollectionFilter, lexemeSeqFilter, lexemeMapFilter:
			// a suffix operator's operand is already complete: apply it now
			if err := p.popTighter(operatorPrecedence(lx.typ)); err != nil {
				return nil, err
			}
			if err := p.applyFilter(lx); err != nil {
				return nil, err
			}
		}
	}
}

func (p *parser) errorf(s Span, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	p.diag.Errorf(s, "%s", msg)
	return &PathError{Kind: ErrorKindParse, Span: s, Msg: msg}
}

func (p *parser) pushOperand(e *Expr) {
	p.operands = append(p.operands, e)
}

func (p *parser) popOperand() (*Expr, bool) {
	if len(p.operands) == 0 {
		return nil, false
	}
	e := p.operands[len(p.operands)-1]
	p.operands = p.operands[:len(p.operands)-1]
	return e, true
}

// popTighter evaluates stacked operators binding strictly tighter than prec.
func (p *parser) popTighter(prec int) error {
	for len(p.operators) > 0 {
		top := p.operators[len(p.operators)-1]
		if operatorPrecedence(top.typ) <= prec {
			break
		}
		p.operators = p.operators[:len(p.operators)-1]
		if err := p.applyOperator(top); err != nil {
			return err
		}
	}
	return nil
}

// finish drains the operator stack and folds any operands left adjacent by
// prefix evaluation into a single chain.
func (p *parser) finish() (*Expr, error) {
	for len(p.operators) > 0 {
		top := p.operators[len(p.operators)-1]
		p.operators = p.operators[:len(p.operators)-1]
		if err := p.applyOperator(top); err != nil {
			return nil, err
		}
	}
	if len(p.operands) == 0 {
		return nil, p.errorf(Span{}, "empty path expression")
	}
	result := p.operands[0]
	for _, e := range p.operands[1:] {
		var err error
		result, err = p.chain(result, e)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *parser) applyOperator(op lexeme) error {
	switch op.typ {
	case lexemeSlash:
		return p.applySlash(op)
	case lexemeComma:
		return p.applyComma(op)
	case lexemeSibling:
		return p.applySibling(op)
	default:
		return p.applyFilter(op)
	}
}

func (p *parser) applySlash(op lexeme) error {
	rhs, ok := p.popOperand()
	if !ok {
		// a path of just "/" selects the root
		if op.span.Start == 0 {
			p.pushOperand(newExpr(exprRoot, op.span))
			return nil
		}
		return p.errorf(op.span, "missing operand for /")
	}
	lhs, ok := p.popOperand()
	if !ok {
		if op.span.Start < rhs.span.Start {
			// a leading slash anchors the path at the document root
			lhs = newExpr(exprRoot, op.span)
		} else {
			// a trailing slash asserts the matched node is a collection
			out, err := p.chain(rhs, newExpr(exprAssertCollection, op.span))
			if err != nil {
				return err
			}
			p.pushOperand(out)
			return nil
		}
	}
	out, err := p.chain(lhs, rhs)
	if err != nil {
		return err
	}
	p.pushOperand(out)
	return nil
}

func (p *parser) applyComma(op lexeme) error {
	rhs, ok := p.popOperand()
	if !ok {
		return p.errorf(op.span, "missing operand for ,")
	}
	lhs, ok := p.popOperand()
	if !ok {
		return p.errorf(op.span, "missing operand for ,")
	}
	out := &Expr{typ: exprMulti}
	for _, part := range []*Expr{lhs, rhs} {
		if part.typ == exprMulti {
			out.children = append(out.children, part.children...)
		} else {
			out.children = append(out.children, part)
		}
	}
	out.span = Span{Start: out.children[0].span.Start, End: out.children[len(out.children)-1].span.End}
	p.pushOperand(out)
	return nil
}

func (p *parser) applySibling(op lexeme) error {
	operand, ok := p.popOperand()
	if !ok {
		return p.errorf(op.span, "missing operand for sibling operator")
	}
	if !operand.isMapKey() {
		return p.errorf(operand.span, "sibling operator requires a map key")
	}
	out, err := p.chain(newExpr(exprParent, op.span), operand)
	if err != nil {
		return err
	}
	p.pushOperand(out)
	return nil
}

func (p *parser) applyFilter(op lexeme) error {
	operand, ok := p.popOperand()
	if !ok {
		return p.errorf(op.span, "missing operand for %q", op.val)
	}
	// "**$" selects every leaf
	if op.typ == lexemeScalarFilter {
		if fused := fuseEveryLeaf(operand, op.span); fused != nil {
			p.pushOperand(fused)
			return nil
		}
	}
	out, err := p.chain(operand, newExpr(assertTypeFor(op.typ), op.span))
	if err != nil {
		return err
	}
	p.pushOperand(out)
	return nil
}

// fuseEveryLeaf rewrites a trailing every-child-recursive into an every-leaf
// when the scalar filter is applied to it, and returns nil when the operand
// has no such trailing element.
func fuseEveryLeaf(operand *Expr, filter Span) *Expr {
	target := operand
	if operand.typ == exprChain {
		target = operand.children[len(operand.children)-1]
	}
	if target.typ != exprEveryChildRecursive {
		return nil
	}
	target.typ = exprEveryLeaf
	target.span.End = filter.End
	operand.span.End = filter.End
	return operand
}

func assertTypeFor(t lexemeType) exprType {
	switch t {
	case lexemeCollectionFilter:
		return exprAssertCollection
	case lexemeSeqFilter:
		return exprAssertSequence
	case lexemeMapFilter:
		return exprAssertMapping
	}
	return exprAssertScalar
}

// chain concatenates parts into a single chain, flattening nested chains so
// that no chain is a direct child of another.
func (p *parser) chain(parts ...*Expr) (*Expr, error) {
	out := &Expr{typ: exprChain}
	for _, part := range parts {
		subs := []*Expr{part}
		if part.typ == exprChain {
			subs = part.children
		}
		for _, c := range subs {
			if n := len(out.children); n > 0 && out.children[n-1].isTerminating() {
				return nil, p.errorf(c.span, "terminating component must end the path")
			}
			out.children = append(out.children, c)
		}
	}
	out.span = Span{Start: out.children[0].span.Start, End: out.children[len(out.children)-1].span.End}
	return out, nil
}

func (p *parser) operandExpr(lx lexeme) (*Expr, error) {
	e := newExpr(exprRoot, lx.span)
	switch lx.typ {
	case lexemeRoot:
		e.typ = exprRoot
	case lexemeThis:
		e.typ = exprThis
	case lexemeParent:
		e.typ = exprParent
	case lexemeEveryChild:
		e.typ = exprEveryChild
	case lexemeEveryChildRecursive:
		e.typ = exprEveryChildRecursive
	case lexemeAlias:
		e.typ = exprAlias
		e.key = lx.val[1:]
	case lexemeSimpleKey:
		e.typ = exprSimpleMapKey
		e.key = lx.val
	case lexemeMapKey:
		e.typ = exprMapKey
		e.doc = lx.doc
		e.lit = lx.val
	case lexemeSeqIndex:
		e.typ = exprSeqIndex
		e.idx = lx.idx
	case lexemeSeqSlice:
		if lx.end != sliceOpenEnd && lx.start >= lx.end {
			return nil, p.errorf(lx.span, "sequence slice start %d is not below end %d", lx.start, lx.end)
		}
		e.typ = exprSeqSlice
		e.start = lx.start
		e.end = lx.end
	}
	return e, nil
}
