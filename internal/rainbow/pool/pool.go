// Package pool hashes jobs on a fixed set of workers, sending their output to a single channel.
package pool

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/G-Research/rainbow/internal/common/rainbowcontext"
	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
	"github.com/G-Research/rainbow/internal/rainbow/digest"
	"github.com/G-Research/rainbow/internal/rainbow/hasher"
	"github.com/G-Research/rainbow/internal/rainbow/metrics"
	"github.com/G-Research/rainbow/internal/rainbow/output"
	"github.com/G-Research/rainbow/internal/rainbow/partition"
)

type Config struct {
	// Number of workers draining the job queue
	Workers int
	// Hash function name, used to label metrics
	Algorithm digest.Algorithm
	// How each worker builds hash input
	Hasher hasher.Options
}

// Pool is a fixed set of workers sharing one job queue. Workers never touch the sink: every record goes out as part
// of a chunk on the output channel, and every worker finishes by sending exactly one Done message, whether it
// drained the queue, was cancelled or panicked.
type Pool struct {
	config  Config
	pepper  []byte
	chunks  *output.ChunkPool
	out     chan<- output.Message
	metrics *metrics.Metrics
}

// New creates a pool. pepper is shared by all workers and must not be modified while the pool runs.
func New(config Config, pepper []byte, chunks *output.ChunkPool, out chan<- output.Message) *Pool {
	return &Pool{
		config:  config,
		pepper:  pepper,
		chunks:  chunks,
		out:     out,
		metrics: metrics.Get(),
	}
}

// Run hashes every job and blocks until all workers have sent their completion signal.
// It returns the first error any worker stopped with.
func (p *Pool) Run(ctx *rainbowcontext.Context, jobs []partition.IdRange) error {
	queue := make(chan partition.IdRange, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	ctx.Log.Debugf("queued %d jobs for %d workers", len(jobs), p.config.Workers)

	g, ctx := rainbowcontext.ErrGroup(ctx)
	for n := 0; n < p.config.Workers; n++ {
		worker := n
		workerCtx := rainbowcontext.WithLogField(ctx, "worker", worker)
		g.Go(func() error {
			return p.work(workerCtx, worker, queue)
		})
	}
	return g.Wait()
}

func (p *Pool) work(ctx *rainbowcontext.Context, worker int, queue <-chan partition.IdRange) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithStack(&rainbowerrors.ErrWorkerFailed{
				Worker: worker,
				Cause:  fmt.Errorf("panic: %v", r),
			})
		}
		if err != nil && !errors.Is(err, ctx.Err()) {
			p.metrics.RecordWorkerFailure()
			ctx.Log.WithError(err).Error("worker stopped")
		}
		p.out <- output.Message{Worker: worker, Done: true, Err: err}
		ctx.Log.Debug("worker done. exiting.")
	}()

	for job := range queue {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		start := time.Now()
		jobCtx := rainbowcontext.WithLogFields(ctx, logrus.Fields{"start": job.Start, "end": job.End})
		jobCtx.Log.Debug("processing job")
		if err := p.runJob(jobCtx, worker, job); err != nil {
			return err
		}
		p.metrics.RecordJobDuration(time.Since(start))
		jobCtx.Log.Debug("done with job")
	}
	return nil
}

func (p *Pool) runJob(ctx *rainbowcontext.Context, worker int, job partition.IdRange) error {
	seq := hasher.New(p.pepper, job, p.config.Hasher)

	chunk, err := p.chunks.Borrow(ctx)
	if err != nil {
		return err
	}
	for seq.Next() {
		if !chunk.Append(seq.Record()) {
			continue
		}
		if err := p.send(ctx, worker, chunk); err != nil {
			ctx.Log.Debugf("abandoning job with %d ids remaining", seq.Remaining())
			return err
		}
		if chunk, err = p.chunks.Borrow(ctx); err != nil {
			ctx.Log.Debugf("abandoning job with %d ids remaining", seq.Remaining())
			return err
		}
	}
	if err := seq.Err(); err != nil {
		p.chunks.Return(chunk)
		return errors.WithStack(&rainbowerrors.ErrWorkerFailed{Worker: worker, Cause: err})
	}
	if chunk.Empty() {
		p.chunks.Return(chunk)
		return nil
	}
	return p.send(ctx, worker, chunk)
}

// send hands chunk to the aggregator. Once sent the chunk belongs to the aggregator.
func (p *Pool) send(ctx *rainbowcontext.Context, worker int, chunk *output.Chunk) error {
	if err := ctx.Err(); err != nil {
		p.chunks.Return(chunk)
		return errors.WithStack(err)
	}
	records := chunk.Records
	select {
	case p.out <- output.Message{Worker: worker, Chunk: chunk}:
		p.metrics.RecordHashed(string(p.config.Algorithm), records)
		return nil
	case <-ctx.Done():
		p.chunks.Return(chunk)
		return errors.WithStack(ctx.Err())
	}
}
