/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type exprType int

const (
	exprRoot exprType = iota
	exprThis
	exprParent
	exprEveryChild
	exprEveryChildRecursive
	exprEveryLeaf
	exprAssertCollection
	exprAssertScalar
	exprAssertSequence
	exprAssertMapping
	exprSimpleMapKey
	exprMapKey
	exprSeqIndex
	exprSeqSlice
	exprAlias
	exprChain
	exprMulti
)

// An Expr is a parsed path expression. Exprs are immutable after parsing and
// may be shared read-only across goroutines.
type Expr struct {
	typ      exprType
	span     Span
	children []*Expr // chain stages or multi branches, in order

	key        string     // simple map key, or alias name
	doc        *yaml.Node // complex map key, a self-contained flow document
	lit        string     // source text of the complex key
	idx        int        // sequence index
	start, end int        // slice bounds; end is sliceOpenEnd when unbounded
}

func newExpr(typ exprType, s Span) *Expr {
	return &Expr{typ: typ, span: s}
}

// isTerminating reports whether e may only appear at the end of a chain.
func (e *Expr) isTerminating() bool {
	switch e.typ {
	case exprEveryChildRecursive, exprEveryLeaf,
		exprAssertCollection, exprAssertScalar, exprAssertSequence, exprAssertMapping:
		return true
	}
	return false
}

// isAssert reports whether e is a node shape filter.
func (e *Expr) isAssert() bool {
	switch e.typ {
	case exprAssertCollection, exprAssertScalar, exprAssertSequence, exprAssertMapping:
		return true
	}
	return false
}

func (e *Expr) isMapKey() bool {
	return e.typ == exprSimpleMapKey || e.typ == exprMapKey
}

// String renders the expression in a canonical form which reparses to a
// structurally equal expression.
func (e *Expr) String() string {
	var b strings.Builder
	e.print(&b)
	return b.String()
}

func (e *Expr) print(b *strings.Builder) {
	switch e.typ {
	case exprRoot:
		b.WriteString("^")
	case exprThis:
		b.WriteString(".")
	case exprParent:
		b.WriteString("..")
	case exprEveryChild:
		b.WriteString("*")
	case exprEveryChildRecursive:
		b.WriteString("**")
	case exprEveryLeaf:
		b.WriteString("**$")
	case exprAssertCollection:
		b.WriteString("%")
	case exprAssertScalar:
		b.WriteString("$")
	case exprAssertSequence:
		b.WriteString("[]")
	case exprAssertMapping:
		b.WriteString("{}")
	case exprSimpleMapKey:
		b.WriteString(e.key)
	case exprMapKey:
		b.WriteString(e.lit)
	case exprSeqIndex:
		b.WriteString(strconv.Itoa(e.idx))
	case exprSeqSlice:
		b.WriteString(strconv.Itoa(e.start))
		b.WriteString(":")
		if e.end != sliceOpenEnd {
			b.WriteString(strconv.Itoa(e.end))
		}
	case exprAlias:
		b.WriteString("*")
		b.WriteString(e.key)
	case exprChain:
		// the sibling form survives printing so that a chain nested in a
		// multi reparses with the same grouping
		if len(e.children) == 2 && e.children[0].typ == exprParent && e.children[1].isMapKey() {
			b.WriteString(":")
			e.children[1].print(b)
			return
		}
		for i, c := range e.children {
			if i > 0 && !c.isAssert() {
				b.WriteString("/")
			}
			c.print(b)
		}
	case exprMulti:
		for i, c := range e.children {
			if i > 0 {
				b.WriteString(",")
			}
			c.print(b)
		}
	}
}
