package output

import (
	"context"
	"math"
	"time"

	pool "github.com/jolestar/go-commons-pool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ChunkPool recycles chunk buffers between workers and the aggregator. Borrowing blocks once maxTotal chunks
// are out, bounding the memory held by in-flight output.
type ChunkPool struct {
	pool *pool.ObjectPool
}

func NewChunkPool(ctx context.Context, maxTotal int, recordsPerChunk int) *ChunkPool {
	// This is basically the default config, but blocking at maxTotal and never evicting.
	poolConfig := pool.ObjectPoolConfig{
		MaxTotal:                 maxTotal,
		MaxIdle:                  maxTotal,
		MinIdle:                  0,
		BlockWhenExhausted:       true,
		MinEvictableIdleTime:     30 * time.Minute,
		SoftMinEvictableIdleTime: math.MaxInt64,
		TimeBetweenEvictionRuns:  0,
		NumTestsPerEvictionRun:   0,
	}
	p := pool.NewObjectPool(ctx, pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			return NewChunk(recordsPerChunk), nil
		}), &poolConfig)
	return &ChunkPool{pool: p}
}

// Borrow returns an empty chunk, waiting for one to be returned if the pool is exhausted.
func (p *ChunkPool) Borrow(ctx context.Context) (*Chunk, error) {
	obj, err := p.pool.BorrowObject(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	chunk := obj.(*Chunk)
	chunk.Reset()
	return chunk, nil
}

// Return hands a chunk back once its data has been written or discarded.
func (p *ChunkPool) Return(chunk *Chunk) {
	if err := p.pool.ReturnObject(context.Background(), chunk); err != nil {
		log.WithError(err).Errorf("Error returning chunk to pool")
	}
}

// Active is the number of chunks currently borrowed.
func (p *ChunkPool) Active() int {
	return p.pool.GetNumActive()
}

func (p *ChunkPool) Close(ctx context.Context) {
	p.pool.Close(ctx)
}
