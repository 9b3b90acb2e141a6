package btree

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Text format: one record per line, "<key> <value>\n". The key is base 10,
// the value runs verbatim to the end of the line and may contain spaces.

// Serialize writes every record in ascending key order.
func (t *Btree) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	var err error
	t.ascend(func(it *item) bool {
		if !Encodable(it.val) {
			err = errors.Wrapf(ErrValueNotEncodable, "key %d", it.key)
			return false
		}
		buf = AppendRecord(buf[:0], it.record())
		if _, err = bw.Write(buf); err != nil {
			err = errors.Wrap(err, "btree: serialize")
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return errors.Wrap(bw.Flush(), "btree: serialize")
}

// AppendRecord appends the text encoding of rec, line terminator included.
func AppendRecord(dst []byte, rec Record) []byte {
	dst = strconv.AppendInt(dst, rec.Key, 10)
	dst = append(dst, ' ')
	dst = append(dst, rec.Value...)
	return append(dst, '\n')
}

// ParseRecord decodes a single line. A line without a space is a key with an
// empty value. One trailing "\r" is dropped; any other line terminator in the
// value makes the record malformed, since Serialize could not write it back.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	keyPart, val, _ := strings.Cut(line, " ")
	key, err := strconv.ParseInt(keyPart, 10, 64)
	if err != nil {
		return Record{}, errors.Wrapf(ErrMalformedRecord, "bad key %q", keyPart)
	}
	if !Encodable(val) {
		return Record{}, errors.Wrapf(ErrMalformedRecord, "key %d: value contains a line terminator", key)
	}
	return Record{Key: key, Value: val}, nil
}

// Encodable reports whether val can be written as a record value.
func Encodable(val string) bool {
	return !strings.ContainsAny(val, "\r\n")
}

// RecordReader retrieves records from a text stream one line at a time.
// Lines have no length limit.
type RecordReader struct {
	br   *bufio.Reader
	line int
	err  error // sticky read error
}

func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{br: bufio.NewReader(r)}
}

// Line returns the 1-based number of the line most recently read.
func (r *RecordReader) Line() int { return r.line }

// Next returns the next record, skipping blank lines. It returns io.EOF once
// the stream is exhausted. A malformed line yields an error matching
// ErrMalformedRecord; reading may continue after it.
func (r *RecordReader) Next() (Record, error) {
	for r.err == nil {
		text, err := r.br.ReadString('\n')
		if err != nil {
			r.err = err
			if text == "" {
				break
			}
		}
		r.line++
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec, perr := ParseRecord(text)
		if perr != nil {
			return Record{}, errors.Wrapf(perr, "line %d", r.line)
		}
		return rec, nil
	}
	if errors.Is(r.err, io.EOF) {
		return Record{}, io.EOF
	}
	return Record{}, errors.Wrapf(r.err, "btree: read line %d", r.line+1)
}

// Deserialize replaces the contents of the tree with the records read from r,
// inserted in stream order. Duplicate keys after the first are dropped. On
// error the tree is left as it was.
func (t *Btree) Deserialize(r io.Reader) error {
	return t.DeserializeWith(r, nil)
}

// DeserializeWith is Deserialize with a hook for malformed records. When
// onMalformed returns nil the record is skipped, otherwise loading stops with
// the returned error. A nil hook aborts on the first malformed record.
func (t *Btree) DeserializeWith(r io.Reader, onMalformed func(err error) error) error {
	fresh, err := NewBTree(t.order)
	if err != nil {
		return err
	}

	rr := NewRecordReader(r)
	for {
		rec, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if onMalformed == nil || !errors.Is(err, ErrMalformedRecord) {
				return err
			}
			if err := onMalformed(err); err != nil {
				return err
			}
			continue
		}
		fresh.Insert(rec.Key, rec.Value)
	}

	t.root, t.length = fresh.root, fresh.length
	return nil
}
