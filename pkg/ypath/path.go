/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import (
	"strings"

	"github.com/dprotaso/go-yit"
	"gopkg.in/yaml.v3"
)

// Path is a compiled YPath expression.
type Path struct {
	expr *Expr
	src  string
}

// NewPath compiles a path expression.
func NewPath(text string) (*Path, error) {
	return NewPathWithDiag(text, nil)
}

// NewPathWithDiag compiles a path expression, sending notices and errors to
// diag. A nil diag discards them.
func NewPathWithDiag(text string, diag Diag) (*Path, error) {
	src := strings.TrimSpace(text)
	expr, err := parse(src, diag)
	if err != nil {
		return nil, err
	}
	return &Path{expr: expr, src: src}, nil
}

// String returns the canonical form of the path.
func (p *Path) String() string { return p.expr.String() }

// Find returns the nodes of doc matching the path, starting at the root.
func (p *Path) Find(doc *Document) []*yaml.Node {
	return p.FindFrom(doc, doc.Root())
}

// FindFrom returns the nodes matching the path starting at start, in
// first-encounter order and free of duplicates. The returned nodes are
// borrowed from the document.
func (p *Path) FindFrom(doc *Document, start *yaml.Node) []*yaml.Node {
	out := newNodeSet()
	evaluate(doc, p.expr, start, out)
	return out.nodes
}

// Select returns the matches starting at the document root as an iterator.
func (p *Path) Select(doc *Document) yit.Iterator {
	return p.SelectFrom(doc, doc.Root())
}

// SelectFrom returns the matches starting at start as an iterator.
func (p *Path) SelectFrom(doc *Document, start *yaml.Node) yit.Iterator {
	return yit.FromNodes(p.FindFrom(doc, start)...)
}

// Find locates the nodes of a node tree which match a path expression.
func Find(node *yaml.Node, path string) ([]*yaml.Node, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}
	return p.Find(NewDocument(node)), nil
}
