package rainbow

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"github.com/G-Research/rainbow/internal/common"
	"github.com/G-Research/rainbow/internal/common/rainbowcontext"
	"github.com/G-Research/rainbow/internal/rainbow/aggregator"
	"github.com/G-Research/rainbow/internal/rainbow/build"
	"github.com/G-Research/rainbow/internal/rainbow/configuration"
	"github.com/G-Research/rainbow/internal/rainbow/digest"
	"github.com/G-Research/rainbow/internal/rainbow/hasher"
	"github.com/G-Research/rainbow/internal/rainbow/metrics"
	"github.com/G-Research/rainbow/internal/rainbow/output"
	"github.com/G-Research/rainbow/internal/rainbow/partition"
	"github.com/G-Research/rainbow/internal/rainbow/pool"
)

type App struct {
	// Out is where the table is written. Defaults to standard out,
	// but can be overridden in tests to make assertions on the generated table.
	Out io.Writer
	// NumCPU decides the number of jobs and workers when they are not configured.
	NumCPU func() int
}

// New instantiates an App writing to standard out.
func New() *App {
	return &App{
		Out:    os.Stdout,
		NumCPU: runtime.NumCPU,
	}
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}

// Generate writes one line per id in [0, 10^Digits) to the app output.
// Invalid configuration is reported before anything is written.
func (a *App) Generate(ctx *rainbowcontext.Context, config configuration.RainbowConfig) (aggregator.Summary, error) {
	if err := config.Validate(); err != nil {
		return aggregator.Summary{}, err
	}
	maxId, err := config.MaxId()
	if err != nil {
		return aggregator.Summary{}, err
	}
	hash, err := digest.For(config.Algorithm)
	if err != nil {
		return aggregator.Summary{}, err
	}
	opts := hasher.Options{
		Width:   config.EffectiveHashWidth(),
		Padding: config.Padding,
		Digest:  hash,
	}
	// Workers share this copy; nothing writes to it once the run has started.
	pepper := []byte(config.Pepper)

	shutdownMetrics := common.ServeMetrics(config.MetricsPort)
	defer shutdownMetrics()

	ctx = rainbowcontext.WithLogField(ctx, "algorithm", config.Algorithm)
	var summary aggregator.Summary
	if config.Serial {
		summary, err = a.generateSerial(ctx, config, maxId, pepper, opts)
	} else {
		summary, err = a.generateParallel(ctx, config, maxId, pepper, opts)
	}
	if err != nil {
		return summary, err
	}
	ctx.Log.Infof("wrote %d records (%d bytes) in %s", summary.Records, summary.Bytes, summary.Duration)
	return summary, nil
}

// generateSerial hashes every id on the calling goroutine, writing one chunk at a time.
func (a *App) generateSerial(
	ctx *rainbowcontext.Context,
	config configuration.RainbowConfig,
	maxId uint64,
	pepper []byte,
	opts hasher.Options,
) (aggregator.Summary, error) {
	start := time.Now()
	m := metrics.Get()
	summary := aggregator.Summary{}
	ctx.Log.Debugf("hashing %d ids serially", maxId)

	chunk := output.NewChunk(config.OutputBufferSize)
	flush := func() error {
		if chunk.Empty() {
			return nil
		}
		if _, err := a.Out.Write(chunk.Data); err != nil {
			return errors.WithMessage(err, "error writing output")
		}
		m.RecordHashed(string(config.Algorithm), chunk.Records)
		m.RecordChunkWritten(len(chunk.Data))
		summary.Records += uint64(chunk.Records)
		summary.Bytes += uint64(len(chunk.Data))
		summary.Chunks++
		chunk.Reset()
		return nil
	}

	if err := ctx.Err(); err != nil {
		return summary, errors.WithStack(err)
	}
	seq := hasher.New(pepper, partition.IdRange{Start: 0, End: maxId}, opts)
	for seq.Next() {
		if !chunk.Append(seq.Record()) {
			continue
		}
		if err := flush(); err != nil {
			return summary, err
		}
		if err := ctx.Err(); err != nil {
			return summary, errors.WithStack(err)
		}
	}
	if err := seq.Err(); err != nil {
		return summary, errors.WithStack(err)
	}
	if err := flush(); err != nil {
		return summary, err
	}
	summary.Duration = time.Since(start)
	return summary, nil
}

// generateParallel splits the keyspace into jobs, hashes them on a worker pool and funnels the output through a
// single aggregator. Neither returns until every worker has finished.
func (a *App) generateParallel(
	ctx *rainbowcontext.Context,
	config configuration.RainbowConfig,
	maxId uint64,
	pepper []byte,
	opts hasher.Options,
) (aggregator.Summary, error) {
	numCPU := a.NumCPU()
	workers := config.ResolveWorkers(numCPU)
	jobs, err := partition.Partition(maxId, config.ResolveJobs(numCPU))
	if err != nil {
		return aggregator.Summary{}, err
	}
	if len(jobs) > 0 {
		ctx.Log.Debugf("Using %d jobs of size %d", len(jobs), jobs[0].Len())
	}

	out := make(chan output.Message, config.ChannelDepth*workers)
	// One chunk being filled per worker, every queued chunk, and the one being written.
	chunks := output.NewChunkPool(context.Background(), workers+cap(out)+1, config.OutputBufferSize)
	defer chunks.Close(context.Background())

	runCtx, cancel := rainbowcontext.WithCancel(ctx)
	defer cancel()

	agg := aggregator.New(aggregator.Config{
		Workers:          workers,
		ExpectedRecords:  maxId,
		ProgressInterval: config.ProgressInterval,
	}, a.Out, chunks, cancel)
	workerPool := pool.New(pool.Config{
		Workers:   workers,
		Algorithm: config.Algorithm,
		Hasher:    opts,
	}, pepper, chunks, out)

	var summary aggregator.Summary
	var aggErr error
	g, groupCtx := rainbowcontext.ErrGroup(runCtx)
	g.Go(func() error {
		summary, aggErr = agg.Run(groupCtx, out)
		return nil
	})
	g.Go(func() error {
		return workerPool.Run(groupCtx, jobs)
	})
	err = g.Wait()
	if leaked := chunks.Active(); leaked > 0 {
		ctx.Log.Warnf("%d output buffers were not returned by stopped workers", leaked)
	}

	// The aggregator has seen every worker error as well as its own; the pool only knows the first.
	if aggErr != nil {
		return summary, aggErr
	}
	return summary, err
}
