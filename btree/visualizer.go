package btree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

const indentUnit = "     "

// Visualizer renders the node structure of a tree, one node per line in
// pre-order, indented by depth.
type Visualizer struct {
	Tree *Btree
}

// Visualize returns the coloured structural dump. Colouring follows
// color.NoColor, so it degrades to plain text when output is not a terminal.
func (v *Visualizer) Visualize() string {
	p := painter{
		arrow: color.New(color.Faint).SprintFunc(),
		key:   color.New(color.FgCyan, color.Bold).SprintFunc(),
		val:   color.New(color.FgGreen).SprintFunc(),
	}
	return dump(v.Tree, p)
}

// String returns the structural dump without colours.
func (t *Btree) String() string {
	return dump(t, plainPainter)
}

type painter struct {
	arrow, key, val func(a ...interface{}) string
}

var plainPainter = painter{arrow: fmt.Sprint, key: fmt.Sprint, val: fmt.Sprint}

func dump(t *Btree, p painter) string {
	if t == nil || t.root == nil {
		return "Empty tree\n"
	}
	var sb strings.Builder
	dumpNode(&sb, p, t.root, "")
	return sb.String()
}

func dumpNode(sb *strings.Builder, p painter, n *node, prefix string) {
	keys := make([]string, len(n.items))
	vals := make([]string, len(n.items))
	for i, it := range n.items {
		keys[i] = p.key(strconv.FormatInt(it.key, 10))
		vals[i] = p.val(it.val)
	}

	sb.WriteString(prefix)
	sb.WriteString(p.arrow("->"))
	sb.WriteString(" { keys: [")
	sb.WriteString(strings.Join(keys, ", "))
	sb.WriteString("]; data = [")
	sb.WriteString(strings.Join(vals, ", "))
	sb.WriteString("] }\n")

	for _, c := range n.children {
		dumpNode(sb, p, c, prefix+indentUnit)
	}
}
