/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import "gopkg.in/yaml.v3"

// evaluate walks the document from start as directed by e, adding matches to
// out. It is a single depth-first pass; matching never fails, it only leaves
// the set smaller.
func evaluate(d *Document, e *Expr, start *yaml.Node, out *nodeSet) {
	n := resolve(start)
	if n == nil {
		return
	}
	switch e.typ {
	case exprChain:
		cur := newNodeSet()
		cur.add(n)
		for _, c := range e.children {
			next := newNodeSet()
			for _, m := range cur.nodes {
				evaluate(d, c, m, next)
			}
			cur = next
			if cur.len() == 0 {
				return
			}
		}
		for _, m := range cur.nodes {
			out.add(m)
		}

	case exprMulti:
		for _, c := range e.children {
			evaluate(d, c, n, out)
		}

	case exprRoot:
		out.add(d.Root())

	case exprThis:
		out.add(n)

	case exprParent:
		out.add(d.Parent(n))

	case exprAlias:
		out.add(resolve(d.Anchor(e.key)))

	case exprSimpleMapKey:
		if isMapping(n) {
			out.add(resolve(mappingValue(n, e.key)))
		}

	case exprMapKey:
		if isMapping(n) {
			out.add(resolve(mappingValueByNode(n, documentRoot(e.doc))))
		}

	case exprSeqIndex:
		if isSequence(n) {
			i := e.idx
			if i < 0 {
				i += sequenceLen(n)
			}
			if i >= 0 && i < sequenceLen(n) {
				out.add(resolve(sequenceNth(n, i)))
			}
		}

	case exprSeqSlice:
		if isSequence(n) {
			end := e.end
			if end == sliceOpenEnd || end > sequenceLen(n) {
				end = sequenceLen(n)
			}
			for i := e.start; i < end; i++ {
				out.add(resolve(sequenceNth(n, i)))
			}
		}

	case exprAssertScalar:
		if isScalar(n) {
			out.add(n)
		}

	case exprAssertSequence:
		if isSequence(n) {
			out.add(n)
		}

	case exprAssertMapping:
		if isMapping(n) {
			out.add(n)
		}

	case exprAssertCollection:
		if isSequence(n) || isMapping(n) {
			out.add(n)
		}

	case exprEveryChild:
		switch {
		case isScalar(n):
			out.add(n)
		case isSequence(n):
			for _, c := range n.Content {
				out.add(resolve(c))
			}
		case isMapping(n):
			for i := 1; i < len(n.Content); i += 2 {
				out.add(resolve(n.Content[i]))
			}
		}

	case exprEveryChildRecursive:
		addRecursive(n, out, false, map[*yaml.Node]bool{})

	case exprEveryLeaf:
		addRecursive(n, out, true, map[*yaml.Node]bool{})
	}
}

// addRecursive adds the subtree rooted at n in preorder. Mapping keys are not
// part of the walk. The visited set guards against alias cycles.
func addRecursive(n *yaml.Node, out *nodeSet, leafOnly bool, visited map[*yaml.Node]bool) {
	n = resolve(n)
	if n == nil || visited[n] {
		return
	}
	visited[n] = true
	if isScalar(n) {
		out.add(n)
		return
	}
	if !leafOnly {
		out.add(n)
	}
	switch {
	case isSequence(n):
		for _, c := range n.Content {
			addRecursive(c, out, leafOnly, visited)
		}
	case isMapping(n):
		for i := 1; i < len(n.Content); i += 2 {
			addRecursive(n.Content[i], out, leafOnly, visited)
		}
	}
}
