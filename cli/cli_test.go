package cli

import (
	"bufio"
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btreestore/btree"
	"btreestore/seed"
	"btreestore/store"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type session struct {
	tree  *btree.Btree
	store *store.Store
	out   bytes.Buffer
}

func newSession(t *testing.T) *session {
	t.Helper()
	tree, err := btree.NewBTree(2)
	require.NoError(t, err)
	return &session{
		tree:  tree,
		store: store.Open(filepath.Join(t.TempDir(), "database.txt")),
	}
}

// run feeds the lines to a fresh Cli and returns everything printed after the banner.
func (s *session) run(lines ...string) string {
	s.out.Reset()
	in := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	g := seed.New(seed.ModeData, rand.NewSource(1))
	NewCli(in, &s.out, s.tree, s.store, g).Start()
	_, after, _ := strings.Cut(s.out.String(), "EXIT               Terminate this session\n")
	return after
}

func TestSetGetEditDelete(t *testing.T) {
	s := newSession(t)
	out := s.run(
		"SET 10 hello world",
		"set 10 again",
		"GET 10",
		"edit 10 bonjour",
		"get 10",
		"EDIT 999 x",
		"GET 999",
		"DEL 10",
		"DEL 10",
		"EXIT",
		"SET 11 never reached",
	)

	assert.Contains(t, out, "Key added successfully.")
	assert.Contains(t, out, "Key already exists.")
	assert.Contains(t, out, "Key found: 10\nData: hello world\nComparisons: 1\n")
	assert.Contains(t, out, "Key updated successfully.")
	assert.Contains(t, out, "Data: bonjour")
	assert.Contains(t, out, "Key not found.")
	assert.Contains(t, out, "Key deleted successfully.")
	assert.Equal(t, 0, s.tree.Len())
	_, ok := s.tree.Find(11)
	assert.False(t, ok, "input after EXIT must not be processed")
}

func TestUsageAndBadInput(t *testing.T) {
	s := newSession(t)
	out := s.run(
		"SET 1",
		"GET",
		"DEL 1 2",
		"SET abc value",
		"FROB",
		"",
		"SEED -3",
		"SEED 5 colours",
	)
	assert.Contains(t, out, "Usage: SET <key> <value>")
	assert.Contains(t, out, "Usage: GET <key>")
	assert.Contains(t, out, "Usage: DEL <key>")
	assert.Contains(t, out, `Invalid key "abc"`)
	assert.Contains(t, out, `Unknown command "FROB"`)
	assert.Contains(t, out, `Invalid record count "-3"`)
	assert.Contains(t, out, `unknown mode "colours"`)
	assert.Equal(t, 0, s.tree.Len())
}

func TestShowListAndEcho(t *testing.T) {
	s := newSession(t)
	out := s.run("SET 10 a", "SET 20 b", "SET 5 c", "SET 6 d", "LIST", "SHOW")

	assert.Contains(t, out, "5 c\n6 d\n10 a\n20 b\n")
	assert.Contains(t, out, "-> { keys: [10]; data = [a] }\n     -> { keys: [5, 6]; data = [c, d] }\n")
}

func TestSeedStatsCheckClear(t *testing.T) {
	s := newSession(t)
	out := s.run("SEED 200", "STATS", "CHECK")
	assert.Contains(t, out, "200 random records generated")
	assert.Contains(t, out, "all invariants hold")
	assert.Contains(t, out, "order=2")
	assert.Greater(t, s.tree.Len(), 150)

	out = s.run("SEED 10 letters", "CLEAR", "STATS")
	assert.Contains(t, out, "All records have been deleted.")
	assert.Contains(t, out, "records=0")
	assert.Equal(t, 0, s.tree.Len())
}

func TestSaveAndLoad(t *testing.T) {
	s := newSession(t)
	s.run("SET 1 one", "SET 2 two", "SAVE", "DEL 1", "SET 3 three")
	assert.Equal(t, 2, s.tree.Len())

	out := s.run("LOAD", "LIST")
	assert.Contains(t, out, "Loaded 2 records")
	assert.Contains(t, out, "1 one\n2 two\n")

	raw, err := os.ReadFile(s.store.Path())
	require.NoError(t, err)
	assert.Equal(t, "1 one\n2 two\n", string(raw))
}

func TestWithoutStoreOrSeeder(t *testing.T) {
	tree, err := btree.NewBTree(3)
	require.NoError(t, err)
	var out bytes.Buffer
	in := bufio.NewScanner(strings.NewReader("SAVE\nLOAD\nSEED\n"))
	NewCli(in, &out, tree, nil, nil).Start()

	assert.Equal(t, 2, strings.Count(out.String(), "No snapshot file configured."))
	assert.Contains(t, out.String(), "Random generation is not available.")
}

func TestValuesWithLineBreaksAreRefused(t *testing.T) {
	s := newSession(t)
	out := s.run("SET 1 a\rb", "SET 2 fine", "EDIT 2 c\rd", "SAVE", "LOAD", "LIST")

	assert.Equal(t, 2, strings.Count(out, "Values cannot contain line breaks."))
	assert.Contains(t, out, "Loaded 1 records")
	assert.Equal(t, []btree.Record{{Key: 2, Value: "fine"}}, s.tree.Records())
}
