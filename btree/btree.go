// Package btree implements an in-memory B-tree that maps unique int64 keys to
// string payloads.
//
// The tree is parametrised by its minimum degree (order) t: every node except
// the root holds between t-1 and 2t-1 items, and an internal node with k items
// owns exactly k+1 children. Insertion splits full nodes on the way down and
// deletion fixes up thin nodes on the way down, so neither ever walks back up.
//
// A Btree is not safe for concurrent use.
package btree

import "github.com/cockroachdb/errors"

const (
	// DefaultOrder is the minimum degree used when the caller has no preference.
	DefaultOrder = 10
	minOrder     = 2
)

var (
	ErrInvalidOrder      = errors.New("btree: order must be at least 2")
	ErrMalformedRecord   = errors.New("btree: malformed record")
	ErrValueNotEncodable = errors.New("btree: value contains a line terminator")
	ErrCorrupt           = errors.New("btree: structural invariant violated")
)

/*
Btree only keeps a pointer to the root node of the tree plus the limits derived
from its order. A tree is made up of nodes. Each node contains data items.
*/
type Btree struct {
	root     *node
	order    int
	minItems int // t-1, lower bound for every non-root node
	maxItems int // 2t-1
	length   int
}

// NewBTree returns an empty tree of minimum degree order.
func NewBTree(order int) (*Btree, error) {
	if order < minOrder {
		return nil, errors.Wrapf(ErrInvalidOrder, "got %d", order)
	}
	return &Btree{
		order:    order,
		minItems: order - 1,
		maxItems: 2*order - 1,
	}, nil
}

// Order returns the minimum degree t of the tree.
func (t *Btree) Order() int { return t.order }

// Len returns the number of records stored in the tree.
func (t *Btree) Len() int { return t.length }

// Clear drops every record. The order is kept.
func (t *Btree) Clear() {
	t.root = nil
	t.length = 0
}

// Height returns the number of levels, 0 for an empty tree.
func (t *Btree) Height() int {
	h := 0
	for n := t.root; n != nil; h++ {
		if n.isLeaf() {
			return h + 1
		}
		n = n.children[0]
	}
	return h
}
