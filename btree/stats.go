package btree

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Stats summarises the shape of a tree.
type Stats struct {
	Records  int
	Nodes    int
	Leaves   int
	Height   int
	Order    int
	MinItems int
	MaxItems int
	Fill     float64 // Records / (Nodes * MaxItems)
}

func (t *Btree) Stats() Stats {
	s := Stats{
		Records:  t.length,
		Height:   t.Height(),
		Order:    t.order,
		MinItems: t.minItems,
		MaxItems: t.maxItems,
	}
	var walk func(n *node)
	walk = func(n *node) {
		s.Nodes++
		if n.isLeaf() {
			s.Leaves++
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	if t.root != nil {
		walk(t.root)
		s.Fill = float64(s.Records) / float64(s.Nodes*s.MaxItems)
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("records=%d nodes=%d leaves=%d height=%d order=%d fill=%.2f",
		s.Records, s.Nodes, s.Leaves, s.Height, s.Order, s.Fill)
}

// Validate checks every structural invariant of the tree and returns an error
// matching ErrCorrupt describing the first violation found.
func (t *Btree) Validate() error {
	if t.root == nil {
		if t.length != 0 {
			return errors.Wrapf(ErrCorrupt, "empty tree reports %d records", t.length)
		}
		return nil
	}
	if len(t.root.items) == 0 {
		return errors.Wrap(ErrCorrupt, "root holds no items")
	}

	v := validator{tree: t, leafDepth: -1}
	if err := v.walk(t.root, "root", 0, nil, nil); err != nil {
		return err
	}
	if v.count != t.length {
		return errors.Wrapf(ErrCorrupt, "counted %d records, tree reports %d", v.count, t.length)
	}
	return nil
}

type validator struct {
	tree      *Btree
	leafDepth int
	count     int
}

// walk checks n, whose keys must lie strictly between lo and hi (nil means unbounded).
func (v *validator) walk(n *node, path string, depth int, lo, hi *int64) error {
	if len(n.items) > v.tree.maxItems {
		return errors.Wrapf(ErrCorrupt, "%s: %d items, max %d", path, len(n.items), v.tree.maxItems)
	}
	if depth > 0 && len(n.items) < v.tree.minItems {
		return errors.Wrapf(ErrCorrupt, "%s: %d items, min %d", path, len(n.items), v.tree.minItems)
	}
	for i, it := range n.items {
		if i > 0 && n.items[i-1].key >= it.key {
			return errors.Wrapf(ErrCorrupt, "%s: keys %d, %d out of order", path, n.items[i-1].key, it.key)
		}
		if lo != nil && it.key <= *lo {
			return errors.Wrapf(ErrCorrupt, "%s: key %d not above %d", path, it.key, *lo)
		}
		if hi != nil && it.key >= *hi {
			return errors.Wrapf(ErrCorrupt, "%s: key %d not below %d", path, it.key, *hi)
		}
	}
	v.count += len(n.items)

	if n.isLeaf() {
		if v.leafDepth < 0 {
			v.leafDepth = depth
		} else if depth != v.leafDepth {
			return errors.Wrapf(ErrCorrupt, "%s: leaf at depth %d, expected %d", path, depth, v.leafDepth)
		}
		return nil
	}

	if len(n.children) != len(n.items)+1 {
		return errors.Wrapf(ErrCorrupt, "%s: %d children for %d items", path, len(n.children), len(n.items))
	}
	for i, c := range n.children {
		clo, chi := lo, hi
		if i > 0 {
			clo = &n.items[i-1].key
		}
		if i < len(n.items) {
			chi = &n.items[i].key
		}
		if err := v.walk(c, fmt.Sprintf("%s/%d", path, i), depth+1, clo, chi); err != nil {
			return err
		}
	}
	return nil
}
