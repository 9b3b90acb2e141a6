// Package store keeps a tree's records in a text snapshot file between
// sessions: the snapshot is read once at startup and written back on demand
// or at exit.
package store

import (
	"bufio"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"btreestore/btree"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
)

// CompressedExt marks snapshot files that hold a snappy framed stream.
const CompressedExt = ".sz"

// 3 methods -- `Write`, `Close` and `Sync`
type syncWriteCloser interface {
	io.WriteCloser
	Sync() error
}

type Store struct {
	path     string
	compress bool // wrap the text stream in snappy framing
	lenient  bool // skip malformed records instead of failing the load
}

type Option func(*Store)

// WithCompression overrides the compression choice made from the file name.
func WithCompression(on bool) Option {
	return func(s *Store) { s.compress = on }
}

// WithLenient makes Load log and skip malformed records.
func WithLenient(on bool) Option {
	return func(s *Store) { s.lenient = on }
}

func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		compress: strings.HasSuffix(path, CompressedExt),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

func (s *Store) Compressed() bool { return s.compress }

// Load replaces the contents of t with the snapshot. A missing snapshot is an
// empty tree. It returns the number of records loaded.
func (s *Store) Load(t *btree.Btree) (int, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Clear()
		log.Printf("no snapshot at %s, starting empty", s.path)
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "store: open %s", s.path)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if s.compress {
		r = snappy.NewReader(r)
	}

	var onMalformed func(error) error
	skipped := 0
	if s.lenient {
		onMalformed = func(err error) error {
			skipped++
			log.Printf("skipping record in %s: %v", s.path, err)
			return nil
		}
	}
	if err := t.DeserializeWith(r, onMalformed); err != nil {
		return 0, errors.Wrapf(err, "store: load %s", s.path)
	}

	log.Printf("loaded %d records from %s (%d skipped)", t.Len(), s.path, skipped)
	return t.Len(), nil
}

// Save writes t to a temporary file next to the snapshot and renames it into
// place, so a failed save leaves the previous snapshot as it was.
func (s *Store) Save(t *btree.Btree) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "store: create temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return errors.Wrap(err, "store: chmod temp file")
	}
	if err = s.writeSnapshot(tmp, t); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "store: close temp file")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "store: replace %s", s.path)
	}

	log.Printf("saved %d records to %s", t.Len(), s.path)
	return nil
}

// writeSnapshot serializes t into f and forces the contents to stable storage.
func (s *Store) writeSnapshot(f syncWriteCloser, t *btree.Btree) error {
	bw := bufio.NewWriter(f)
	var w io.Writer = bw

	var sw *snappy.Writer
	if s.compress {
		sw = snappy.NewBufferedWriter(bw)
		w = sw
	}

	if err := t.Serialize(w); err != nil {
		return errors.Wrapf(err, "store: write %s", s.path)
	}
	if sw != nil {
		// Close flushes the last snappy chunk; it does not close f.
		if err := sw.Close(); err != nil {
			return errors.Wrap(err, "store: flush compressed stream")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "store: flush")
	}
	// data is immediately written to disk rather than stuck in the page cache.
	return errors.Wrap(f.Sync(), "store: sync")
}

// Reset erases the snapshot. A missing snapshot is not an error.
func (s *Store) Reset() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "store: remove %s", s.path)
	}
	return nil
}
