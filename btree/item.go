package btree

/*
data item in a node.
key uniquely identifies a data item and is used for sorting them.
val contains the payload.
*/
type item struct {
	key int64
	val string
}

// Record is a key/payload pair as it leaves or enters the tree.
type Record struct {
	Key   int64
	Value string
}

func (it *item) record() Record {
	return Record{Key: it.key, Value: it.val}
}
