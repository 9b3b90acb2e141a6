// Package seed generates random records for filling a tree with test data.
package seed

import (
	"fmt"
	"math/rand"
	"strings"

	"btreestore/btree"

	"github.com/cockroachdb/errors"
	"github.com/go-faker/faker/v4"
)

const (
	DefaultRecords = 10000
	DefaultKeyMin  = 1
	DefaultKeyMax  = 20000

	letterLen = 10
	alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Mode selects how payloads are generated.
type Mode int

const (
	ModeData    Mode = iota // "Data<key>"
	ModeLetters             // ten random ASCII letters
	ModeWords               // two dictionary words from go-faker
)

var modeNames = map[Mode]string{
	ModeData:    "data",
	ModeLetters: "letters",
	ModeWords:   "words",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by Mode.String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errors.Newf("seed: unknown mode %q (want data, letters or words)", s)
}

type Generator struct {
	Mode           Mode
	keyMin, keyMax int64 // inclusive key range
	rnd            *rand.Rand
}

func New(mode Mode, src rand.Source) *Generator {
	return &Generator{
		Mode:   mode,
		keyMin: DefaultKeyMin,
		keyMax: DefaultKeyMax,
		rnd:    rand.New(src),
	}
}

// KeyRange returns the inclusive range keys are drawn from.
func (g *Generator) KeyRange() (lo, hi int64) { return g.keyMin, g.keyMax }

// SetKeyRange changes the inclusive key range. The range must be non-empty
// and span fewer than 2^63 keys; otherwise the current range is kept.
func (g *Generator) SetKeyRange(lo, hi int64) error {
	if hi < lo {
		return errors.Newf("seed: empty key range [%d, %d]", lo, hi)
	}
	if hi-lo+1 <= 0 {
		return errors.Newf("seed: key range [%d, %d] is too wide", lo, hi)
	}
	g.keyMin, g.keyMax = lo, hi
	return nil
}

// Record returns one random record.
func (g *Generator) Record() btree.Record {
	key := g.keyMin + g.rnd.Int63n(g.keyMax-g.keyMin+1)
	return btree.Record{Key: key, Value: g.value(key)}
}

func (g *Generator) value(key int64) string {
	switch g.Mode {
	case ModeLetters:
		b := make([]byte, letterLen)
		for i := range b {
			b[i] = alphabet[g.rnd.Intn(len(alphabet))]
		}
		return string(b)
	case ModeWords:
		return faker.Word() + faker.Word()
	default:
		return fmt.Sprintf("Data%d", key)
	}
}

// Fill makes n insert attempts and returns how many of them added a record.
// Attempts that draw a key already in the tree are rejected by the tree.
func (g *Generator) Fill(t *btree.Btree, n int) int {
	inserted := 0
	for i := 0; i < n; i++ {
		rec := g.Record()
		if t.Insert(rec.Key, rec.Value) {
			inserted++
		}
	}
	return inserted
}
