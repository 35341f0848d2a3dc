package output

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/rainbow/internal/rainbow/digest"
	"github.com/G-Research/rainbow/internal/rainbow/hasher"
)

func record(id uint64) hasher.HashRecord {
	var d digest.Digest
	for i := range d {
		d[i] = byte(i)
	}
	return hasher.HashRecord{Id: id, Digest: d}
}

func TestAppendRecord(t *testing.T) {
	line := string(AppendRecord(nil, record(7)))
	assert.Equal(t, "7\t000102030405060708090A0B0C0D0E0F101112131415161718191A1B1C1D1E1F\n", line)
}

func TestAppendRecord_MaxLength(t *testing.T) {
	line := AppendRecord(nil, record(^uint64(0)))
	assert.Len(t, line, MaxLineLength)
}

func TestChunk(t *testing.T) {
	chunk := NewChunk(2)
	assert.True(t, chunk.Empty())
	assert.False(t, chunk.Append(record(1)))
	assert.True(t, chunk.Append(record(2)))
	assert.True(t, chunk.Full())
	assert.Equal(t, 2, chunk.Records)

	lines := strings.Split(strings.TrimSuffix(string(chunk.Data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1\t"))
	assert.True(t, strings.HasPrefix(lines[1], "2\t"))

	chunk.Reset()
	assert.True(t, chunk.Empty())
	assert.Empty(t, chunk.Data)
}

func TestChunkPool_RecyclesChunks(t *testing.T) {
	ctx := context.Background()
	p := NewChunkPool(ctx, 1, 4)
	defer p.Close(ctx)

	first, err := p.Borrow(ctx)
	require.NoError(t, err)
	first.Append(record(1))
	assert.Equal(t, 1, p.Active())
	p.Return(first)
	assert.Equal(t, 0, p.Active())

	second, err := p.Borrow(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.True(t, second.Empty())
	p.Return(second)
}

func TestChunkPool_BlocksWhenExhausted(t *testing.T) {
	ctx := context.Background()
	p := NewChunkPool(ctx, 1, 4)
	defer p.Close(ctx)

	held, err := p.Borrow(ctx)
	require.NoError(t, err)

	borrowed := make(chan *Chunk)
	go func() {
		chunk, err := p.Borrow(ctx)
		if err == nil {
			borrowed <- chunk
		}
	}()

	select {
	case <-borrowed:
		t.Fatal("borrow should block while the pool is exhausted")
	case <-time.After(50 * time.Millisecond):
	}

	p.Return(held)
	select {
	case chunk := <-borrowed:
		p.Return(chunk)
	case <-time.After(5 * time.Second):
		t.Fatal("borrow did not unblock after a chunk was returned")
	}
}
