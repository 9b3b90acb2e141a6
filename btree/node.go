package btree

import "slices"

type node struct {
	// items are kept sorted by key; children is empty for leaves and has
	// len(items)+1 entries otherwise.
	items    []*item
	children []*node
}

func (n *node) isLeaf() bool {
	return len(n.children) == 0
}

/*
If data item with key k is found in node n, return its index i.
Else, return the index j where the key would have resided if it was present in the node.
Basically, lower bound of the key in the node -- this coincides with position of the child pointer !!
So, we can continue the traversal down the tree if the returned boolean value is false.
*/
func (n *node) search(key int64) (int, bool) {
	pos, found, _ := n.probe(key)
	return pos, found
}

// probe is search that also reports the number of key comparisons made.
func (n *node) probe(key int64) (pos int, found bool, cmps int) {
	low, high := 0, len(n.items)
	for low < high {
		mid := (low + high) / 2
		cmps++
		switch k := n.items[mid].key; {
		case key > k:
			low = mid + 1
		case key < k:
			high = mid
		default:
			return mid, true, cmps
		}
	}
	return low, false, cmps
}

// helper method to insert data item at an arbitrary position of a B-tree node
func (n *node) insertItemAt(pos int, it *item) {
	n.items = slices.Insert(n.items, pos, it)
}

// helper method to insert child pointer at an arbitrary position of a B-tree node
func (n *node) insertChildAt(pos int, child *node) {
	n.children = slices.Insert(n.children, pos, child)
}

func (n *node) removeItemAt(pos int) *item {
	it := n.items[pos]
	n.items = slices.Delete(n.items, pos, pos+1)
	return it
}

func (n *node) removeChildAt(pos int) *node {
	child := n.children[pos]
	n.children = slices.Delete(n.children, pos, pos+1)
	return child
}

/*
we split as soon as we reach the parent of a child that is already full.
split() returns the middle item and newly created node, so we can link them to the parent.
Both halves keep mid items. Splitting the root node is handled by splitRoot() in tree.go.
*/
func (n *node) split(mid int) (*item, *node) {
	midItem := n.items[mid]

	// Move the upper half of the items into a new node.
	newNode := &node{items: make([]*item, 0, cap(n.items))}
	newNode.items = append(newNode.items, n.items[mid+1:]...)

	// Except for leaf nodes, the upper half of the child pointers follows them.
	if !n.isLeaf() {
		newNode.children = make([]*node, 0, cap(n.children))
		newNode.children = append(newNode.children, n.children[mid+1:]...)
		clear(n.children[mid+1:])
		n.children = n.children[:mid+1]
	}

	// Drop the moved items so the old backing array does not keep them alive.
	clear(n.items[mid:])
	n.items = n.items[:mid]

	return midItem, newNode
}

/*
Returned value is true if we performed insertion, false if the key is already present.
The algo will start traversing the tree from its root, recursively calling the insert() method until it reaches a
leaf node suitable for insertion. Full children are split before we step into them, so a leaf always has room.
*/
func (n *node) insert(it *item, minItems, maxItems int) bool {
	pos, found := n.search(it.key)
	if found {
		return false
	}

	// If we reach a leaf node -> it has sufficient space for the new item so, insert the new item
	if n.isLeaf() {
		n.insertItemAt(pos, it)
		return true
	}

	// If the next node on the traversal path is already full, split it
	if len(n.children[pos].items) >= maxItems {
		midItem, newNode := n.children[pos].split(minItems)
		n.insertItemAt(pos, midItem)
		n.insertChildAt(pos+1, newNode)

		// We may need to change our direction after promoting the middle item to the parent, depending on its key.
		switch {
		case it.key < midItem.key:
			// Still on the left half.
		case it.key > midItem.key:
			pos++
		default:
			return false
		}
	}

	return n.children[pos].insert(it, minItems, maxItems)
}

/*
delete removes key from the subtree rooted at n. Before stepping into a child we
make sure it holds more than minItems items, so removing one item from it can
never leave it under-occupied and nothing has to be fixed on the way back up.
*/
func (n *node) delete(key int64, minItems int) bool {
	pos, found := n.search(key)

	if found {
		if n.isLeaf() {
			n.removeItemAt(pos)
			return true
		}
		return n.deleteInternal(pos, minItems)
	}

	if n.isLeaf() {
		return false
	}

	if len(n.children[pos].items) <= minItems {
		pos = n.fill(pos, minItems)
	}
	return n.children[pos].delete(key, minItems)
}

// deleteInternal removes items[pos] from an internal node.
func (n *node) deleteInternal(pos int, minItems int) bool {
	left, right := n.children[pos], n.children[pos+1]

	switch {
	case len(left.items) > minItems:
		pred := left.max()
		n.items[pos] = pred
		return left.delete(pred.key, minItems)
	case len(right.items) > minItems:
		succ := right.min()
		n.items[pos] = succ
		return right.delete(succ.key, minItems)
	default:
		key := n.items[pos].key
		n.merge(pos)
		return n.children[pos].delete(key, minItems)
	}
}

// max returns the in-order last item of the subtree rooted at n.
func (n *node) max() *item {
	for !n.isLeaf() {
		n = n.children[len(n.children)-1]
	}
	return n.items[len(n.items)-1]
}

// min returns the in-order first item of the subtree rooted at n.
func (n *node) min() *item {
	for !n.isLeaf() {
		n = n.children[0]
	}
	return n.items[0]
}

/*
fill tops up children[pos], which holds exactly minItems items. It returns the
index of the child that now covers the key range of the old children[pos]; this
moves one slot left when the last child had to be merged into its left sibling.
*/
func (n *node) fill(pos int, minItems int) int {
	switch {
	case pos > 0 && len(n.children[pos-1].items) > minItems:
		n.borrowFromPrev(pos)
	case pos < len(n.items) && len(n.children[pos+1].items) > minItems:
		n.borrowFromNext(pos)
	case pos < len(n.items):
		n.merge(pos)
	default:
		n.merge(pos - 1)
		pos--
	}
	return pos
}

// borrowFromPrev rotates the last item of children[pos-1] through the parent into children[pos].
func (n *node) borrowFromPrev(pos int) {
	child, sibling := n.children[pos], n.children[pos-1]

	child.insertItemAt(0, n.items[pos-1])
	n.items[pos-1] = sibling.removeItemAt(len(sibling.items) - 1)

	if !child.isLeaf() {
		child.insertChildAt(0, sibling.removeChildAt(len(sibling.children)-1))
	}
}

// borrowFromNext rotates the first item of children[pos+1] through the parent into children[pos].
func (n *node) borrowFromNext(pos int) {
	child, sibling := n.children[pos], n.children[pos+1]

	child.insertItemAt(len(child.items), n.items[pos])
	n.items[pos] = sibling.removeItemAt(0)

	if !child.isLeaf() {
		child.insertChildAt(len(child.children), sibling.removeChildAt(0))
	}
}

// merge folds items[pos] and children[pos+1] into children[pos]; the parent loses one item and one child.
func (n *node) merge(pos int) {
	child, sibling := n.children[pos], n.children[pos+1]

	child.items = append(child.items, n.removeItemAt(pos))
	child.items = append(child.items, sibling.items...)
	child.children = append(child.children, sibling.children...)

	n.removeChildAt(pos + 1)
}
