/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseTestDocument(t *testing.T, src string) *Document {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return NewDocument(&n)
}

func TestDocumentIndexes(t *testing.T) {
	d := parseTestDocument(t, `a:
  b: 1
  c: 2
list: [10, 20]
d: &anc
  x: 9
`)

	root := d.Root()
	require.True(t, isMapping(root))
	require.Nil(t, d.Parent(root))

	a := mappingValue(root, "a")
	require.True(t, isMapping(a))
	require.Equal(t, root, d.Parent(a))

	b := mappingValue(a, "b")
	require.True(t, isScalar(b))
	require.Equal(t, "1", b.Value)
	require.Equal(t, a, d.Parent(b))

	list := mappingValue(root, "list")
	require.True(t, isSequence(list))
	require.Equal(t, 2, sequenceLen(list))
	require.Equal(t, "20", sequenceNth(list, 1).Value)
	require.Equal(t, list, d.Parent(sequenceNth(list, 0)))

	anchored := d.Anchor("anc")
	require.NotNil(t, anchored)
	require.Equal(t, mappingValue(root, "d"), anchored)
	require.Nil(t, d.Anchor("missing"))
}

func TestDocumentAnchorShadowing(t *testing.T) {
	d := parseTestDocument(t, `first: &dup 1
second: &dup 2
`)

	require.Equal(t, "2", d.Anchor("dup").Value)
}

func TestDocumentAliasResolution(t *testing.T) {
	d := parseTestDocument(t, `d: &anc
  x: 9
e: *anc
`)

	root := d.Root()
	e := mappingValue(root, "e")
	require.Equal(t, yaml.AliasNode, e.Kind)
	require.Equal(t, d.Anchor("anc"), resolve(e))
}

func TestDocumentPathString(t *testing.T) {
	d := parseTestDocument(t, `a:
  b: 1
list:
- x: 5
- 6
`)

	root := d.Root()
	require.Equal(t, "/", d.PathString(root))

	a := mappingValue(root, "a")
	require.Equal(t, "/a", d.PathString(a))
	require.Equal(t, "/a/b", d.PathString(mappingValue(a, "b")))

	list := mappingValue(root, "list")
	first := sequenceNth(list, 0)
	require.Equal(t, "/list/0", d.PathString(first))
	require.Equal(t, "/list/0/x", d.PathString(mappingValue(first, "x")))
	require.Equal(t, "/list/1", d.PathString(sequenceNth(list, 1)))

	require.Equal(t, "", d.PathString(&yaml.Node{Kind: yaml.ScalarNode}))
}

func TestMappingValueByNode(t *testing.T) {
	d := parseTestDocument(t, `? {x: 1, y: 2}
: complex
? [1, 2]
: listed
plain: scalar
`)
	root := d.Root()

	keyOf := func(src string) *yaml.Node {
		var n yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte(src), &n))
		return documentRoot(&n)
	}

	// mapping keys compare without regard to key order
	v := mappingValueByNode(root, keyOf("{y: 2, x: 1}"))
	require.NotNil(t, v)
	require.Equal(t, "complex", v.Value)

	v = mappingValueByNode(root, keyOf("[1, 2]"))
	require.NotNil(t, v)
	require.Equal(t, "listed", v.Value)

	// sequences compare element-wise, in order
	require.Nil(t, mappingValueByNode(root, keyOf("[2, 1]")))

	// a quoted scalar matches a plain one with the same resolved tag
	v = mappingValueByNode(root, keyOf(`"plain"`))
	require.NotNil(t, v)
	require.Equal(t, "scalar", v.Value)

	// resolved tags must agree: the string "1" is not the integer 1
	require.Nil(t, mappingValueByNode(root, keyOf(`{x: "1", y: 2}`)))
	require.Nil(t, mappingValueByNode(root, keyOf("{x: 1}")))
}
