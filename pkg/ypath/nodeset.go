/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import "gopkg.in/yaml.v3"

// A nodeSet accumulates matched nodes in first-encounter order, suppressing
// duplicates by node identity. The nodes it holds are borrowed from the
// document being walked.
type nodeSet struct {
	nodes []*yaml.Node
	seen  map[*yaml.Node]bool
}

func newNodeSet() *nodeSet {
	return &nodeSet{seen: map[*yaml.Node]bool{}}
}

// add inserts n unless it is nil or already present, and reports whether it
// was inserted.
func (s *nodeSet) add(n *yaml.Node) bool {
	if n == nil || s.seen[n] {
		return false
	}
	s.seen[n] = true
	s.nodes = append(s.nodes, n)
	return true
}

func (s *nodeSet) len() int { return len(s.nodes) }
