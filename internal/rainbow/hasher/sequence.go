// Package hasher produces the (id, digest) pairs of a range of ids.
package hasher

import (
	"github.com/G-Research/rainbow/internal/rainbow/digest"
	"github.com/G-Research/rainbow/internal/rainbow/idformat"
	"github.com/G-Research/rainbow/internal/rainbow/partition"
)

const (
	// DefaultWidth is the width ids are formatted to before hashing, whatever the size of the keyspace.
	DefaultWidth = 10
	Separator    = '+'
)

// HashRecord is one row of a table.
type HashRecord struct {
	Id     uint64
	Digest digest.Digest
}

// Options controls how hash input is built. The zero value formats ids 10 wide, zero padded, and hashes with SHA-256.
type Options struct {
	Width   int
	Padding idformat.Padding
	Digest  digest.Func
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Padding == 0 {
		o.Padding = idformat.PaddingZero
	}
	if o.Digest == nil {
		o.Digest, _ = digest.For(digest.SHA256)
	}
	return o
}

// Sequence lazily hashes every id of a range in ascending order. Usage mirrors bufio.Scanner:
//
//	for seq.Next() {
//		record := seq.Record()
//	}
//	if err := seq.Err(); err != nil {
//
// A Sequence is finite and cannot be restarted. It must not be shared between goroutines, but any number of
// Sequences may share the same pepper.
type Sequence struct {
	next      uint64
	end       uint64
	formatter *idformat.Formatter
	hash      digest.Func
	// formatted id, separator, then pepper. Only the id prefix changes between steps.
	input   []byte
	current HashRecord
	err     error
}

func New(pepper []byte, r partition.IdRange, opts Options) *Sequence {
	opts = opts.withDefaults()
	formatter := idformat.New(opts.Width, opts.Padding)
	width := formatter.Width()

	input := make([]byte, width+1+len(pepper))
	input[width] = Separator
	copy(input[width+1:], pepper)

	return &Sequence{
		next:      r.Start,
		end:       r.End,
		formatter: formatter,
		hash:      opts.Digest,
		input:     input,
	}
}

// Next hashes the next id, returning false once the range is exhausted or an id could not be formatted.
func (s *Sequence) Next() bool {
	if s.err != nil || s.next >= s.end {
		return false
	}
	id := s.next
	formatted, err := s.formatter.Format(id)
	if err != nil {
		s.err = err
		return false
	}
	copy(s.input, formatted)
	s.current = HashRecord{Id: id, Digest: s.hash(s.input)}
	s.next++
	return true
}

// Record returns the record produced by the last successful call to Next.
func (s *Sequence) Record() HashRecord {
	return s.current
}

// Err returns the formatting error that stopped the sequence, if any.
func (s *Sequence) Err() error {
	return s.err
}

// Remaining is the number of records still to be produced.
func (s *Sequence) Remaining() uint64 {
	if s.err != nil || s.next >= s.end {
		return 0
	}
	return s.end - s.next
}
