package btree

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	tree := newTree(t, 2)
	assert.Equal(t, Stats{Order: 2, MinItems: 1, MaxItems: 3}, tree.Stats())

	insertAll(t, tree, 10, 20, 5, 6, 12, 30, 7, 17)
	s := tree.Stats()
	assert.Equal(t, 8, s.Records)
	assert.Equal(t, 4, s.Nodes)
	assert.Equal(t, 3, s.Leaves)
	assert.Equal(t, 2, s.Height)
	assert.InDelta(t, 8.0/12.0, s.Fill, 1e-9)
	assert.Contains(t, s.String(), "records=8 nodes=4")
}

func TestValidateDetectsCorruption(t *testing.T) {
	leaf := func(keys ...int64) *node {
		n := &node{}
		for _, k := range keys {
			n.items = append(n.items, &item{key: k})
		}
		return n
	}
	internal := func(keys []int64, children ...*node) *node {
		n := leaf(keys...)
		n.children = children
		return n
	}

	cases := []struct {
		name   string
		root   *node
		length int
		msg    string
	}{
		{"unsorted", leaf(3, 1), 2, "out of order"},
		{"overfull", leaf(1, 2, 3, 4), 4, "max 3"},
		{"underfull child", internal([]int64{5, 9}, leaf(1), leaf(6), leaf()), 4, "min 1"},
		{"child count", internal([]int64{5}, leaf(1)), 2, "children"},
		{"bounds", internal([]int64{5}, leaf(1), leaf(4)), 3, "not above 5"},
		{"leaf depth", internal([]int64{5}, leaf(1), internal([]int64{8}, leaf(6), leaf(9))), 5, "depth"},
		{"length", leaf(1, 2), 3, "counted 2"},
		{"empty root", leaf(), 0, "no items"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := newTree(t, 2)
			tree.root, tree.length = tc.root, tc.length
			err := tree.Validate()
			require.ErrorIs(t, err, ErrCorrupt)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestStringDump(t *testing.T) {
	tree := newTree(t, 2)
	assert.Equal(t, "Empty tree\n", tree.String())

	for _, k := range []int64{10, 20, 5, 6} {
		tree.Insert(k, "d"+strings.Repeat("x", int(k%3)))
	}
	assert.Equal(t,
		"-> { keys: [10]; data = [dx] }\n"+
			"     -> { keys: [5, 6]; data = [dxx, d] }\n"+
			"     -> { keys: [20]; data = [dxx] }\n",
		tree.String())
}

func TestVisualizerWithoutColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tree := newTree(t, 3)
	insertAll(t, tree, 1, 2, 3, 4, 5, 6)
	v := &Visualizer{Tree: tree}
	assert.Equal(t, tree.String(), v.Visualize())
}
