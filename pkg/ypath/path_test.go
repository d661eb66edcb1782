/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const findTestDocument = `{a: {b: 1, c: 2}, list: [10, 20, 30, 40], d: &anc {x: 9}}`

// nodeAt walks a document by diagnostic path segments, independently of the
// engine under test.
func nodeAt(t *testing.T, d *Document, path string) *yaml.Node {
	t.Helper()
	n := d.Root()
	if path == "/" {
		return n
	}
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		switch {
		case isSequence(n):
			i, err := strconv.Atoi(seg)
			require.NoError(t, err)
			n = sequenceNth(n, i)
		case isMapping(n):
			n = mappingValue(n, seg)
		}
		n = resolve(n)
		require.NotNil(t, n, "no node at %s", path)
	}
	return n
}

func pathsOf(d *Document, nodes []*yaml.Node) []string {
	out := []string{}
	for _, n := range nodes {
		out = append(out, d.PathString(n))
	}
	return out
}

func TestFind(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		start    string // diagnostic path of the start node; "/" is the root
		expected []string
		focus    bool // if true, run only tests with focus set to true
	}{
		{name: "map child", path: "/a/b", start: "/", expected: []string{"/a/b"}},
		{name: "every child of a mapping", path: "/a/*", start: "/", expected: []string{"/a/b", "/a/c"}},
		{name: "sequence index", path: "/list/1", start: "/", expected: []string{"/list/1"}},
		{name: "sequence slice", path: "/list/1:3", start: "/", expected: []string{"/list/1", "/list/2"}},
		{name: "open sequence slice", path: "/list/2:", start: "/", expected: []string{"/list/2", "/list/3"}},
		{name: "multi", path: "/a,list", start: "/", expected: []string{"/a", "/list"}},
		{name: "every leaf", path: "/**$", start: "/", expected: []string{"/a/b", "/a/c", "/list/0", "/list/1", "/list/2", "/list/3", "/d/x"}},
		{name: "every child recursive", path: "/a/**", start: "/", expected: []string{"/a", "/a/b", "/a/c"}},
		{name: "recursive from the root", path: "/**", start: "/", expected: []string{"/", "/a", "/a/b", "/a/c", "/list", "/list/0", "/list/1", "/list/2", "/list/3", "/d", "/d/x"}},
		{name: "alias from the root", path: "*anc/x", start: "/", expected: []string{"/d/x"}},
		{name: "alias from a deep node", path: "*anc/x", start: "/a/b", expected: []string{"/d/x"}},
		{name: "sibling selects itself", path: ":b", start: "/a/b", expected: []string{"/a/b"}},
		{name: "sibling selects a neighbour", path: ":c", start: "/a/b", expected: []string{"/a/c"}},
		{name: "sibling within a chain", path: "/a/b/:c", start: "/", expected: []string{"/a/c"}},
		{name: "sibling binds before comma", path: "a:list,d", start: "/", expected: []string{"/list"}},
		{name: "negative index counts from the end", path: "/list/-1", start: "/", expected: []string{"/list/3"}},
		{name: "negative index out of range", path: "/list/-5", start: "/", expected: []string{}},
		{name: "index out of range", path: "/list/9", start: "/", expected: []string{}},
		{name: "slice clipped to length", path: "/list/1:100", start: "/", expected: []string{"/list/1", "/list/2", "/list/3"}},
		{name: "slice beyond length", path: "/list/9:", start: "/", expected: []string{}},
		{name: "key on a sequence", path: "/list/a", start: "/", expected: []string{}},
		{name: "missing key", path: "/a/zz", start: "/", expected: []string{}},
		{name: "index on a mapping", path: "/a/0", start: "/", expected: []string{}},
		{name: "parent", path: "..", start: "/a/b", expected: []string{"/a"}},
		{name: "parent of the root", path: "..", start: "/", expected: []string{}},
		{name: "this", path: ".", start: "/a/b", expected: []string{"/a/b"}},
		{name: "root from anywhere", path: "^", start: "/a/b", expected: []string{"/"}},
		{name: "scalar filter", path: "/a/b$", start: "/", expected: []string{"/a/b"}},
		{name: "scalar filter rejects a mapping", path: "/a$", start: "/", expected: []string{}},
		{name: "collection filter", path: "/a%", start: "/", expected: []string{"/a"}},
		{name: "trailing slash asserts a collection", path: "/a/", start: "/", expected: []string{"/a"}},
		{name: "trailing slash rejects a scalar", path: "/a/b/", start: "/", expected: []string{}},
		{name: "sequence filter", path: "/list[]", start: "/", expected: []string{"/list"}},
		{name: "sequence filter rejects a mapping", path: "/a[]", start: "/", expected: []string{}},
		{name: "mapping filter", path: "/a{}", start: "/", expected: []string{"/a"}},
		{name: "every child of a scalar", path: "/a/b/*", start: "/", expected: []string{"/a/b"}},
		{name: "multi dedup", path: "/a/b,b", start: "/", expected: []string{"/a/b"}},
		{name: "relative chain", path: "b", start: "/a", expected: []string{"/a/b"}},
	}

	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(findTestDocument), &n))
	d := NewDocument(&n)

	focussed := false
	for _, tc := range cases {
		if tc.focus {
			focussed = true
			break
		}
	}

	for _, tc := range cases {
		if focussed && !tc.focus {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPath(tc.path)
			require.NoError(t, err)
			actual := p.FindFrom(d, nodeAt(t, d, tc.start))
			require.Equal(t, tc.expected, pathsOf(d, actual))
		})
	}

	if focussed {
		t.Errorf("testcase(s) still focussed")
	}
}

func TestFindComplexKeys(t *testing.T) {
	d := parseTestDocument(t, `? {x: 1}
: found
? [1, 2]
: listed
plain: scalar
`)

	find := func(path string) []*yaml.Node {
		p, err := NewPath(path)
		require.NoError(t, err)
		return p.Find(d)
	}

	matches := find("{x: 1}")
	require.Len(t, matches, 1)
	require.Equal(t, "found", matches[0].Value)

	matches = find("/[1, 2]")
	require.Len(t, matches, 1)
	require.Equal(t, "listed", matches[0].Value)

	matches = find(`/"plain"`)
	require.Len(t, matches, 1)
	require.Equal(t, "scalar", matches[0].Value)

	require.Empty(t, find("{x: 2}"))
}

func TestFindThroughAlias(t *testing.T) {
	d := parseTestDocument(t, `d: &anc
  x: 9
e: *anc
`)

	p, err := NewPath("/e/x")
	require.NoError(t, err)
	matches := p.Find(d)
	require.Len(t, matches, 1)
	require.Equal(t, "9", matches[0].Value)

	// the alias and its target are the same node to the result set
	p, err = NewPath("/d,e")
	require.NoError(t, err)
	require.Len(t, p.Find(d), 1)
}

func TestChainIdentity(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(findTestDocument), &n))
	d := NewDocument(&n)

	pairs := []struct{ wrapped, plain string }{
		{"./a", "a"},
		{"a/.", "a"},
		{"./list/1", "list/1"},
		{"list/1/.", "list/1"},
		{"./*", "*"},
	}
	for _, pr := range pairs {
		w, err := NewPath(pr.wrapped)
		require.NoError(t, err)
		p, err := NewPath(pr.plain)
		require.NoError(t, err)
		require.Equal(t, p.Find(d), w.Find(d), "%q vs %q", pr.wrapped, pr.plain)
	}
}

func TestMultiUnion(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(findTestDocument), &n))
	d := NewDocument(&n)

	find := func(path string) []*yaml.Node {
		p, err := NewPath(path)
		require.NoError(t, err)
		return p.Find(d)
	}
	union := func(paths ...string) []*yaml.Node {
		out := newNodeSet()
		for _, path := range paths {
			for _, m := range find(path) {
				out.add(m)
			}
		}
		return out.nodes
	}

	require.Equal(t, union("a", "list"), find("a,list"))
	require.Equal(t, union("/a/b", "/a/c"), find("/a/b,c"))
	require.Equal(t, union("/a/*", "/a/b"), find("/a/*,b"))
}

func TestRootAbsorption(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(findTestDocument), &n))
	d := NewDocument(&n)

	p, err := NewPath("/a/b")
	require.NoError(t, err)
	fromRoot := p.Find(d)
	require.Len(t, fromRoot, 1)

	for _, start := range []string{"/", "/a", "/list/2", "/d/x"} {
		require.Equal(t, fromRoot, p.FindFrom(d, nodeAt(t, d, start)), "start %s", start)
	}
}

func TestSelect(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(findTestDocument), &n))
	d := NewDocument(&n)

	p, err := NewPath("/list/1:3")
	require.NoError(t, err)
	require.Equal(t, p.Find(d), p.Select(d).ToArray())
}

func TestFindHelper(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(findTestDocument), &n))

	matches, err := Find(&n, "/a/c")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "2", matches[0].Value)

	_, err = Find(&n, "**/a")
	require.Error(t, err)
}

func TestPathString(t *testing.T) {
	p, err := NewPath("  /a/b,c  ")
	require.NoError(t, err)
	require.Equal(t, "^/a/b,c", p.String())
}
