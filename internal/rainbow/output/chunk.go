// Package output encodes table records and carries them from workers to the sink.
package output

import (
	"strconv"

	"github.com/G-Research/rainbow/internal/rainbow/hasher"
)

// MaxLineLength is the longest possible encoded record: a 20 digit id, a tab, 64 hex characters and a newline.
const MaxLineLength = 20 + 1 + 64 + 1

// AppendRecord appends "<id>\t<HEX DIGEST>\n" to dst.
func AppendRecord(dst []byte, record hasher.HashRecord) []byte {
	dst = strconv.AppendUint(dst, record.Id, 10)
	dst = append(dst, '\t')
	dst = record.Digest.AppendHex(dst)
	return append(dst, '\n')
}

// Chunk is a batch of encoded records from a single worker, in ascending id order.
type Chunk struct {
	Data     []byte
	Records  int
	capacity int
}

func NewChunk(capacity int) *Chunk {
	return &Chunk{
		Data:     make([]byte, 0, capacity*MaxLineLength),
		capacity: capacity,
	}
}

// Append encodes record into the chunk and reports whether the chunk is now full.
func (c *Chunk) Append(record hasher.HashRecord) bool {
	c.Data = AppendRecord(c.Data, record)
	c.Records++
	return c.Full()
}

func (c *Chunk) Full() bool {
	return c.Records >= c.capacity
}

func (c *Chunk) Empty() bool {
	return c.Records == 0
}

func (c *Chunk) Reset() {
	c.Data = c.Data[:0]
	c.Records = 0
}

// Message is what a worker sends to the aggregator: either a chunk or, exactly once per worker, a completion signal.
type Message struct {
	Worker int
	Chunk  *Chunk
	// Done marks the last message from Worker. Err is set if the worker stopped early.
	Done bool
	Err  error
}
