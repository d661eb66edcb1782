/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import (
	"strconv"
	"strings"

	"github.com/dprotaso/go-yit"
	"gopkg.in/yaml.v3"
)

// A Document wraps a parsed YAML node tree with the indexes the evaluator
// needs: parent back-edges and the anchor table. The underlying nodes are
// borrowed and must not be mutated while the Document is in use.
type Document struct {
	root    *yaml.Node
	parents map[*yaml.Node]*yaml.Node
	anchors map[string]*yaml.Node
}

// NewDocument indexes a node tree, typically the result of unmarshalling
// into a yaml.Node. A document node wrapper, if present, is skipped.
func NewDocument(n *yaml.Node) *Document {
	root := documentRoot(n)
	d := &Document{
		root:    root,
		parents: map[*yaml.Node]*yaml.Node{},
		anchors: map[string]*yaml.Node{},
	}
	if root == nil {
		return d
	}
	indexParents(d.parents, root)
	// a later anchor definition shadows an earlier one, as in YAML itself
	nodes := yit.FromNode(root).RecurseNodes()
	for node, ok := nodes(); ok; node, ok = nodes() {
		if node.Anchor != "" {
			d.anchors[node.Anchor] = node
		}
	}
	return d
}

func indexParents(parents map[*yaml.Node]*yaml.Node, n *yaml.Node) {
	for _, c := range n.Content {
		parents[c] = n
		indexParents(parents, c)
	}
}

func documentRoot(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

// Root returns the document's root node.
func (d *Document) Root() *yaml.Node { return d.root }

// Parent returns the parent of n, or nil for the root. The parent of a
// mapping key or value is the mapping node.
func (d *Document) Parent(n *yaml.Node) *yaml.Node { return d.parents[n] }

// Anchor returns the node carrying the named anchor, or nil.
func (d *Document) Anchor(name string) *yaml.Node { return d.anchors[name] }

// PathString renders a diagnostic path for n, such as /spec/containers/0.
// The root renders as "/" and a node outside the document as "".
func (d *Document) PathString(n *yaml.Node) string {
	if n == d.root {
		return "/"
	}
	var segs []string
	for n != nil && n != d.root {
		p := d.parents[n]
		if p == nil {
			return ""
		}
		switch p.Kind {
		case yaml.SequenceNode:
			for i, c := range p.Content {
				if c == n {
					segs = append(segs, strconv.Itoa(i))
					break
				}
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(p.Content); i += 2 {
				if p.Content[i] == n || p.Content[i+1] == n {
					segs = append(segs, resolve(p.Content[i]).Value)
					break
				}
			}
		}
		n = p
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteString("/")
		b.WriteString(segs[i])
	}
	return b.String()
}

// resolve follows alias nodes to their anchored targets.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isScalar(n *yaml.Node) bool   { return n != nil && n.Kind == yaml.ScalarNode }
func isSequence(n *yaml.Node) bool { return n != nil && n.Kind == yaml.SequenceNode }
func isMapping(n *yaml.Node) bool  { return n != nil && n.Kind == yaml.MappingNode }

func sequenceLen(n *yaml.Node) int               { return len(n.Content) }
func sequenceNth(n *yaml.Node, i int) *yaml.Node { return n.Content[i] }

// mappingValue looks a value up by a simple scalar key.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := resolve(n.Content[i]); k.Kind == yaml.ScalarNode && k.Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// mappingValueByNode looks a value up by structural key equality, which
// admits quoted and flow collection keys.
func mappingValueByNode(n *yaml.Node, key *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if nodesEqual(n.Content[i], key) {
			return n.Content[i+1]
		}
	}
	return nil
}

// nodesEqual compares two nodes structurally. Scalars compare by resolved
// tag and value, documents and sequences element-wise, and mappings without
// regard to key order.
func nodesEqual(a, b *yaml.Node) bool {
	a, b = resolve(a), resolve(b)
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case yaml.ScalarNode:
		return a.ShortTag() == b.ShortTag() && a.Value == b.Value

	case yaml.DocumentNode, yaml.SequenceNode:
		if len(a.Content) != len(b.Content) {
			return false
		}
		for i := range a.Content {
			if !nodesEqual(a.Content[i], b.Content[i]) {
				return false
			}
		}
		return true

	case yaml.MappingNode:
		if len(a.Content) != len(b.Content) {
			return false
		}
		used := make([]bool, len(b.Content)/2)
		for i := 0; i+1 < len(a.Content); i += 2 {
			found := false
			for j := 0; j+1 < len(b.Content); j += 2 {
				if used[j/2] {
					continue
				}
				if nodesEqual(a.Content[i], b.Content[j]) && nodesEqual(a.Content[i+1], b.Content[j+1]) {
					used[j/2] = true
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	return false
}
