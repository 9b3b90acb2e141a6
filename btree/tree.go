package btree

// SearchResult describes a successful lookup.
type SearchResult struct {
	Value       string
	Comparisons int // key comparisons made on the way down
	Depth       int // 1 for the root
}

// lookup walks from the root to the node holding key.
func (t *Btree) lookup(key int64) (*item, SearchResult, bool) {
	var res SearchResult
	for next := t.root; next != nil; {
		res.Depth++
		pos, found, cmps := next.probe(key)
		res.Comparisons += cmps
		if found {
			it := next.items[pos]
			res.Value = it.val
			return it, res, true
		}
		if next.isLeaf() {
			break
		}
		next = next.children[pos]
	}
	return nil, res, false
}

// Find returns the payload stored under key.
func (t *Btree) Find(key int64) (string, bool) {
	it, _, found := t.lookup(key)
	if !found {
		return "", false
	}
	return it.val, true
}

// Search is Find that also reports how much work the lookup took. On a miss
// the returned result still carries the comparison count.
func (t *Btree) Search(key int64) (SearchResult, bool) {
	_, res, found := t.lookup(key)
	if !found {
		res.Value = ""
	}
	return res, found
}

/*
Create a new root node.
The existing root then becomes the new root's left child.
The new node created after splitting the existing root becomes new root's right child.
*/
func (t *Btree) splitRoot() {
	newRoot := &node{}
	midItem, newNode := t.root.split(t.minItems)
	newRoot.insertItemAt(0, midItem)
	newRoot.insertChildAt(0, t.root)
	newRoot.insertChildAt(1, newNode)
	t.root = newRoot
}

// Insert adds key with payload val. It returns false and leaves the tree
// untouched when key is already present.
func (t *Btree) Insert(key int64, val string) bool {
	// Checked up front so that a duplicate never triggers a split.
	if _, _, found := t.lookup(key); found {
		return false
	}

	i := &item{key: key, val: val}

	// The tree is empty, so initialize a new node.
	if t.root == nil {
		t.root = &node{items: make([]*item, 0, t.maxItems)}
		t.root.insertItemAt(0, i)
		t.length++
		return true
	}

	// The tree root is full, so perform a split on the root.
	if len(t.root.items) >= t.maxItems {
		t.splitRoot()
	}

	// Begin insertion.
	if !t.root.insert(i, t.minItems, t.maxItems) {
		return false
	}
	t.length++
	return true
}

// Edit overwrites the payload of an existing key in place.
func (t *Btree) Edit(key int64, val string) bool {
	it, _, found := t.lookup(key)
	if !found {
		return false
	}
	it.val = val
	return true
}

// Delete removes key. It returns false and leaves the tree untouched when key
// is absent.
func (t *Btree) Delete(key int64) bool {
	if t.root == nil {
		return false
	}
	// Rebalancing happens on the way down, so a miss must be ruled out first.
	if _, _, found := t.lookup(key); !found {
		return false
	}

	deleted := t.root.delete(key, t.minItems)

	// Root collapse.
	if len(t.root.items) == 0 {
		if t.root.isLeaf() {
			t.root = nil
		} else {
			t.root = t.root.children[0]
		}
	}

	if !deleted {
		return false
	}
	t.length--
	return true
}

// ascend visits items in key order until fn returns false.
func (t *Btree) ascend(fn func(it *item) bool) {
	if t.root != nil {
		t.root.ascend(fn)
	}
}

func (n *node) ascend(fn func(it *item) bool) bool {
	for i, it := range n.items {
		if !n.isLeaf() && !n.children[i].ascend(fn) {
			return false
		}
		if !fn(it) {
			return false
		}
	}
	if !n.isLeaf() {
		return n.children[len(n.children)-1].ascend(fn)
	}
	return true
}

// Records returns every record in ascending key order.
func (t *Btree) Records() []Record {
	recs := make([]Record, 0, t.length)
	t.ascend(func(it *item) bool {
		recs = append(recs, it.record())
		return true
	})
	return recs
}
