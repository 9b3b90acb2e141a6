package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"btreestore/btree"
	"btreestore/seed"
	"btreestore/store"

	"github.com/fatih/color"
)

// After a mutation the tree structure is echoed while it is at most this big.
const echoLimit = 32

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	infoColor = color.New(color.FgYellow)
)

type Cli struct {
	scanner    *bufio.Scanner
	out        io.Writer
	tree       *btree.Btree
	visualizer *btree.Visualizer
	store      *store.Store    // nil disables SAVE and LOAD
	seeder     *seed.Generator // nil disables SEED
}

func NewCli(s *bufio.Scanner, out io.Writer, t *btree.Btree, st *store.Store, g *seed.Generator) *Cli {
	v := &btree.Visualizer{
		Tree: t,
	}
	return &Cli{scanner: s, out: out, tree: t, visualizer: v, store: st, seeder: g}
}

// Start runs the read-eval-print loop until EXIT or end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if !c.processInput(c.scanner.Text()) {
			return
		}
		c.printPrompt()
	}
	fmt.Fprintln(c.out)
}

func (c *Cli) printHelp() {
	fmt.Fprint(c.out, `
B-Tree CLI

Available Commands:
  SET <key> <val>    Insert a key-value pair into the B-Tree
  GET <key>          Retrieve the value for key from the B-Tree
  EDIT <key> <val>   Replace the value stored under an existing key
  DEL <key>          Remove a key-value pair from the B-Tree
  SHOW               Print the node structure of the B-Tree
  LIST               Print every record in key order
  STATS              Print size and shape of the B-Tree
  CHECK              Verify the structural invariants of the B-Tree
  SEED [n] [mode]    Insert n random records (mode: data, letters, words)
  CLEAR              Delete all records
  SAVE               Write the records to the snapshot file
  LOAD               Replace the records with the snapshot file contents
  HELP               Show this message
  EXIT               Terminate this session
`)
}

func (c *Cli) printPrompt() {
	fmt.Fprint(c.out, "> ")
}

// processInput handles one line and reports whether the session continues.
func (c *Cli) processInput(line string) bool {
	command, rest := splitWord(line)
	if command == "" {
		return true
	}
	switch strings.ToLower(command) {
	default:
		errColor.Fprintf(c.out, "Unknown command \"%s\"\n", command)
	case "set", "insert":
		c.processSetCommand(rest)
	case "get", "search":
		c.processGetCommand(rest)
	case "edit":
		c.processEditCommand(rest)
	case "del", "delete":
		c.processDeleteCommand(rest)
	case "show":
		fmt.Fprint(c.out, c.visualizer.Visualize())
	case "list":
		c.processListCommand()
	case "stats":
		fmt.Fprintln(c.out, c.tree.Stats())
	case "check":
		c.processCheckCommand()
	case "seed":
		c.processSeedCommand(rest)
	case "clear":
		c.tree.Clear()
		okColor.Fprintln(c.out, "All records have been deleted.")
	case "save":
		c.processSaveCommand()
	case "load":
		c.processLoadCommand()
	case "help":
		c.printHelp()
	case "exit", "quit":
		return false
	}
	return true
}

// splitWord returns the first whitespace separated word of s and the rest of
// s with leading whitespace removed.
func splitWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

func (c *Cli) parseKey(arg string) (int64, bool) {
	key, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		errColor.Fprintf(c.out, "Invalid key %q: keys are 64-bit integers.\n", arg)
		return 0, false
	}
	return key, true
}

// keyValueArgs parses "<key> <value...>"; the value keeps its inner spaces.
func (c *Cli) keyValueArgs(args, usage string) (int64, string, bool) {
	keyArg, val := splitWord(args)
	if keyArg == "" || val == "" {
		fmt.Fprintln(c.out, usage)
		return 0, "", false
	}
	key, ok := c.parseKey(keyArg)
	if !ok {
		return 0, "", false
	}
	if !btree.Encodable(val) {
		errColor.Fprintln(c.out, "Values cannot contain line breaks.")
		return 0, "", false
	}
	return key, val, true
}

func (c *Cli) keyArg(args, usage string) (int64, bool) {
	keyArg, extra := splitWord(args)
	if keyArg == "" || extra != "" {
		fmt.Fprintln(c.out, usage)
		return 0, false
	}
	return c.parseKey(keyArg)
}

func (c *Cli) echoTree() {
	if c.tree.Len() <= echoLimit {
		fmt.Fprint(c.out, c.visualizer.Visualize())
	}
}

func (c *Cli) processSetCommand(args string) {
	key, val, ok := c.keyValueArgs(args, "Usage: SET <key> <value>")
	if !ok {
		return
	}
	if !c.tree.Insert(key, val) {
		errColor.Fprintln(c.out, "Key already exists.")
		return
	}
	okColor.Fprintln(c.out, "Key added successfully.")
	c.echoTree()
}

func (c *Cli) processGetCommand(args string) {
	key, ok := c.keyArg(args, "Usage: GET <key>")
	if !ok {
		return
	}
	res, found := c.tree.Search(key)
	if !found {
		errColor.Fprintf(c.out, "Key not found. (%d comparisons)\n", res.Comparisons)
		return
	}
	fmt.Fprintf(c.out, "Key found: %d\nData: %s\nComparisons: %d\n", key, res.Value, res.Comparisons)
}

func (c *Cli) processEditCommand(args string) {
	key, val, ok := c.keyValueArgs(args, "Usage: EDIT <key> <value>")
	if !ok {
		return
	}
	if !c.tree.Edit(key, val) {
		errColor.Fprintln(c.out, "Key not found.")
		return
	}
	okColor.Fprintln(c.out, "Key updated successfully.")
}

func (c *Cli) processDeleteCommand(args string) {
	key, ok := c.keyArg(args, "Usage: DEL <key>")
	if !ok {
		return
	}
	if !c.tree.Delete(key) {
		errColor.Fprintln(c.out, "Key not found.")
		return
	}
	okColor.Fprintln(c.out, "Key deleted successfully.")
	c.echoTree()
}

func (c *Cli) processListCommand() {
	if err := c.tree.Serialize(c.out); err != nil {
		errColor.Fprintf(c.out, "Error: %v\n", err)
	}
}

func (c *Cli) processCheckCommand() {
	if err := c.tree.Validate(); err != nil {
		errColor.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	okColor.Fprintf(c.out, "OK: %d records, all invariants hold.\n", c.tree.Len())
}

func (c *Cli) processSeedCommand(args string) {
	if c.seeder == nil {
		errColor.Fprintln(c.out, "Random generation is not available.")
		return
	}
	n := seed.DefaultRecords
	mode := c.seeder.Mode
	fields := strings.Fields(args)
	if len(fields) > 2 {
		fmt.Fprintln(c.out, "Usage: SEED [n] [data|letters|words]")
		return
	}
	if len(fields) > 0 {
		v, err := strconv.Atoi(fields[0])
		if err != nil || v <= 0 {
			errColor.Fprintf(c.out, "Invalid record count %q.\n", fields[0])
			return
		}
		n = v
	}
	if len(fields) > 1 {
		m, err := seed.ParseMode(fields[1])
		if err != nil {
			errColor.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		mode = m
	}

	prev := c.seeder.Mode
	c.seeder.Mode = mode
	inserted := c.seeder.Fill(c.tree, n)
	c.seeder.Mode = prev
	okColor.Fprintf(c.out, "%d random records generated, %d new keys added.\n", n, inserted)
}

func (c *Cli) processSaveCommand() {
	if c.store == nil {
		errColor.Fprintln(c.out, "No snapshot file configured.")
		return
	}
	if err := c.store.Save(c.tree); err != nil {
		errColor.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	okColor.Fprintf(c.out, "Saved %d records to %s.\n", c.tree.Len(), c.store.Path())
}

func (c *Cli) processLoadCommand() {
	if c.store == nil {
		errColor.Fprintln(c.out, "No snapshot file configured.")
		return
	}
	n, err := c.store.Load(c.tree)
	if err != nil {
		errColor.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	infoColor.Fprintf(c.out, "Loaded %d records from %s.\n", n, c.store.Path())
}
