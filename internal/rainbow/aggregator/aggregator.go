// Package aggregator drains worker output into the sink.
package aggregator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/G-Research/rainbow/internal/common/rainbowcontext"
	"github.com/G-Research/rainbow/internal/rainbow/metrics"
	"github.com/G-Research/rainbow/internal/rainbow/output"
)

type Config struct {
	// Number of completion signals to wait for
	Workers int
	// Total number of records the run should produce, used for progress reporting
	ExpectedRecords uint64
	// How often progress is logged. Zero disables progress logging
	ProgressInterval time.Duration
}

// WorkerSummary describes what one worker delivered.
type WorkerSummary struct {
	Chunks  uint64
	Records uint64
	Done    bool
	Err     error
}

type Summary struct {
	Records  uint64
	Chunks   uint64
	Bytes    uint64
	Duration time.Duration
	Workers  []WorkerSummary
}

// Aggregator is the only writer to the sink. It must be run on exactly one goroutine.
type Aggregator struct {
	config  Config
	sink    io.Writer
	chunks  *output.ChunkPool
	cancel  context.CancelFunc
	metrics *metrics.Metrics
}

// New creates an Aggregator writing to sink. Written chunks are returned to chunks, if it is not nil.
// cancel is called on the first failure so that workers stop early.
func New(config Config, sink io.Writer, chunks *output.ChunkPool, cancel context.CancelFunc) *Aggregator {
	if cancel == nil {
		cancel = func() {}
	}
	return &Aggregator{
		config:  config,
		sink:    sink,
		chunks:  chunks,
		cancel:  cancel,
		metrics: metrics.Get(),
	}
}

// Run writes chunks from in to the sink in the order they arrive, until a completion signal has been received
// from every worker. Run does not return early on cancellation: workers always finish by sending their
// completion signal, and draining until then guarantees none of them blocks forever on a full channel.
// After a failure, chunks are still received but discarded.
func (a *Aggregator) Run(ctx *rainbowcontext.Context, in <-chan output.Message) (Summary, error) {
	start := time.Now()
	summary := Summary{Workers: make([]WorkerSummary, a.config.Workers)}

	var progress <-chan time.Time
	if a.config.ProgressInterval > 0 {
		ticker := time.NewTicker(a.config.ProgressInterval)
		defer ticker.Stop()
		progress = ticker.C
	}

	var result *multierror.Error
	failed := false
	fail := func(err error) {
		result = multierror.Append(result, err)
		if !failed {
			failed = true
			a.cancel()
		}
	}

	remaining := a.config.Workers
	for remaining > 0 {
		select {
		case msg := <-in:
			worker := a.worker(&summary, msg.Worker)
			if msg.Done {
				remaining--
				worker.Done = true
				worker.Err = msg.Err
				if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
					fail(msg.Err)
				}
				ctx.Log.Debugf("worker %d finished; waiting on %d more", msg.Worker, remaining)
				continue
			}
			if msg.Chunk == nil {
				continue
			}
			if !failed {
				if err := a.write(msg.Chunk); err != nil {
					fail(err)
				} else {
					summary.Records += uint64(msg.Chunk.Records)
					summary.Chunks++
					summary.Bytes += uint64(len(msg.Chunk.Data))
					worker.Records += uint64(msg.Chunk.Records)
					worker.Chunks++
				}
			}
			if a.chunks != nil {
				a.chunks.Return(msg.Chunk)
			}
		case <-progress:
			a.logProgress(ctx, summary.Records, time.Since(start))
		}
	}

	summary.Duration = time.Since(start)
	return summary, result.ErrorOrNil()
}

func (a *Aggregator) worker(summary *Summary, n int) *WorkerSummary {
	if n >= 0 && n < len(summary.Workers) {
		return &summary.Workers[n]
	}
	// Unknown workers are still counted down, just not reported.
	return &WorkerSummary{}
}

func (a *Aggregator) write(chunk *output.Chunk) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithStack(fmt.Errorf("panic writing output: %v", r))
		}
	}()
	if _, err := a.sink.Write(chunk.Data); err != nil {
		return errors.WithMessage(err, "error writing output")
	}
	a.metrics.RecordChunkWritten(len(chunk.Data))
	return nil
}

func (a *Aggregator) logProgress(ctx *rainbowcontext.Context, written uint64, elapsed time.Duration) {
	rate := float64(written) / elapsed.Seconds()
	if a.config.ExpectedRecords == 0 {
		ctx.Log.Infof("written %d records (%.0f/s)", written, rate)
		return
	}
	percent := 100 * float64(written) / float64(a.config.ExpectedRecords)
	ctx.Log.Infof("written %d of %d records (%.1f%%, %.0f/s)", written, a.config.ExpectedRecords, percent, rate)
}
