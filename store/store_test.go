package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btreestore/btree"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) *btree.Btree {
	t.Helper()
	tree, err := btree.NewBTree(3)
	require.NoError(t, err)
	return tree
}

func fill(tree *btree.Btree, n int) {
	for i := 0; i < n; i++ {
		tree.Insert(int64(i*7%n), fmt.Sprintf("Data%d", i))
	}
}

func TestSaveLoadPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.txt")
	s := Open(path)
	assert.False(t, s.Compressed())
	assert.Equal(t, path, s.Path())

	src := newTree(t)
	fill(src, 100)
	require.NoError(t, s.Save(src))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var want bytes.Buffer
	require.NoError(t, src.Serialize(&want))
	assert.Equal(t, want.String(), string(raw))

	dst := newTree(t)
	n, err := s.Load(dst)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, src.Records(), dst.Records())
}

func TestSaveLoadCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.txt"+CompressedExt)
	s := Open(path)
	require.True(t, s.Compressed())

	src := newTree(t)
	fill(src, 500)
	require.NoError(t, s.Save(src))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := snappyDecode(raw)
	require.NoError(t, err)
	var want bytes.Buffer
	require.NoError(t, src.Serialize(&want))
	assert.Equal(t, want.String(), decoded)

	dst := newTree(t)
	n, err := s.Load(dst)
	require.NoError(t, err)
	assert.Equal(t, 500, n)
	assert.Equal(t, src.Records(), dst.Records())
}

func snappyDecode(raw []byte) (string, error) {
	var out bytes.Buffer
	_, err := out.ReadFrom(snappy.NewReader(bytes.NewReader(raw)))
	return out.String(), err
}

func TestCompressionOverride(t *testing.T) {
	assert.True(t, Open("plain.txt", WithCompression(true)).Compressed())
	assert.False(t, Open("packed.sz", WithCompression(false)).Compressed())
}

func TestLoadMissingFileClearsTree(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "absent.txt"))
	tree := newTree(t)
	fill(tree, 10)

	n, err := s.Load(tree)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, tree.Len())
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 one\n\nbroken line\n2 two\n"), 0o644))

	tree := newTree(t)
	tree.Insert(99, "kept")
	_, err := Open(path).Load(tree)
	require.ErrorIs(t, err, btree.ErrMalformedRecord)
	assert.Equal(t, 1, tree.Len())

	n, err := Open(path, WithLenient(true)).Load(tree)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	val, ok := tree.Find(2)
	require.True(t, ok)
	assert.Equal(t, "two", val)
}

func TestFailedSaveKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.txt")
	s := Open(path)

	good := newTree(t)
	fill(good, 5)
	require.NoError(t, s.Save(good))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	bad := newTree(t)
	bad.Insert(1, "two\nlines")
	err = s.Save(bad)
	require.ErrorIs(t, err, btree.ErrValueNotEncodable)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be removed")
}

type failingSyncer struct {
	bytes.Buffer
	syncErr error
}

func (f *failingSyncer) Sync() error  { return f.syncErr }
func (f *failingSyncer) Close() error { return nil }

func TestWriteSnapshotReportsSyncFailure(t *testing.T) {
	tree := newTree(t)
	fill(tree, 3)
	syncErr := errors.New("disk on fire")

	f := &failingSyncer{syncErr: syncErr}
	err := Open("x.txt").writeSnapshot(f, tree)
	require.ErrorIs(t, err, syncErr)
	assert.Equal(t, "0 Data0\n1 Data1\n2 Data2\n", f.String())
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.txt")
	s := Open(path)
	require.NoError(t, s.Reset())

	tree := newTree(t)
	fill(tree, 3)
	require.NoError(t, s.Save(tree))
	require.NoError(t, s.Reset())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveLoadLongValue(t *testing.T) {
	long := strings.Repeat("0123456789", 200_000)
	for _, name := range []string{"database.txt", "database.txt" + CompressedExt} {
		s := Open(filepath.Join(t.TempDir(), name), WithLenient(true))
		src := newTree(t)
		fill(src, 10)
		src.Insert(1000, long)
		require.NoError(t, s.Save(src))

		dst := newTree(t)
		n, err := s.Load(dst)
		require.NoError(t, err, name)
		assert.Equal(t, 11, n, name)
		val, ok := dst.Find(1000)
		require.True(t, ok, name)
		assert.Equal(t, long, val, name)
	}
}
