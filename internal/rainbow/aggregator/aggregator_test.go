package aggregator

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/rainbow/internal/common/logging"
	"github.com/G-Research/rainbow/internal/common/rainbowcontext"
	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
	"github.com/G-Research/rainbow/internal/rainbow/digest"
	"github.com/G-Research/rainbow/internal/rainbow/hasher"
	"github.com/G-Research/rainbow/internal/rainbow/output"
)

func testContext() *rainbowcontext.Context {
	return rainbowcontext.New(context.Background(), logrus.NewEntry(logging.NullLogger))
}

func chunkOf(ids ...uint64) *output.Chunk {
	chunk := output.NewChunk(len(ids))
	for _, id := range ids {
		chunk.Append(hasher.HashRecord{Id: id, Digest: digest.Digest{}})
	}
	return chunk
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("broken pipe")
}

func TestRun_WritesChunksInReceiptOrder(t *testing.T) {
	in := make(chan output.Message, 10)
	in <- output.Message{Worker: 1, Chunk: chunkOf(5, 6)}
	in <- output.Message{Worker: 0, Chunk: chunkOf(0, 1)}
	in <- output.Message{Worker: 1, Done: true}
	in <- output.Message{Worker: 0, Chunk: chunkOf(2)}
	in <- output.Message{Worker: 0, Done: true}

	buf := new(bytes.Buffer)
	summary, err := New(Config{Workers: 2}, buf, nil, nil).Run(testContext(), in)
	require.NoError(t, err)

	var ids []string
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		ids = append(ids, strings.SplitN(line, "\t", 2)[0])
	}
	assert.Equal(t, []string{"5", "6", "0", "1", "2"}, ids)

	assert.Equal(t, uint64(5), summary.Records)
	assert.Equal(t, uint64(3), summary.Chunks)
	assert.Equal(t, uint64(buf.Len()), summary.Bytes)
	assert.Equal(t, WorkerSummary{Chunks: 2, Records: 3, Done: true}, summary.Workers[0])
	assert.Equal(t, WorkerSummary{Chunks: 1, Records: 2, Done: true}, summary.Workers[1])
}

func TestRun_NoWorkers(t *testing.T) {
	summary, err := New(Config{Workers: 0}, new(bytes.Buffer), nil, nil).Run(testContext(), make(chan output.Message))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), summary.Records)
}

func TestRun_WaitsForEveryCompletionSignal(t *testing.T) {
	in := make(chan output.Message)
	done := make(chan struct{})
	go func() {
		_, _ = New(Config{Workers: 2}, new(bytes.Buffer), nil, nil).Run(testContext(), in)
		close(done)
	}()

	in <- output.Message{Worker: 0, Done: true}
	select {
	case <-done:
		t.Fatal("aggregator returned before all workers finished")
	case <-time.After(50 * time.Millisecond):
	}

	in <- output.Message{Worker: 1, Done: true}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("aggregator did not return after all workers finished")
	}
}

func TestRun_WorkerErrorsAreCollected(t *testing.T) {
	cancelled := 0
	cancel := func() { cancelled++ }

	in := make(chan output.Message, 10)
	in <- output.Message{Worker: 0, Done: true, Err: &rainbowerrors.ErrWorkerFailed{Worker: 0}}
	in <- output.Message{Worker: 1, Chunk: chunkOf(9)}
	in <- output.Message{Worker: 1, Done: true, Err: errors.WithStack(context.Canceled)}
	in <- output.Message{Worker: 2, Done: true, Err: &rainbowerrors.ErrWorkerFailed{Worker: 2}}

	buf := new(bytes.Buffer)
	summary, err := New(Config{Workers: 3}, buf, nil, cancel).Run(testContext(), in)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.Equal(t, 1, cancelled)
	assert.Empty(t, buf.String(), "chunks after a failure should be discarded")
	assert.Equal(t, uint64(0), summary.Records)
	assert.True(t, summary.Workers[1].Done)
}

func TestRun_SinkFailureCancelsAndDrains(t *testing.T) {
	cancelled := false
	sink := &failingWriter{}

	in := make(chan output.Message, 10)
	in <- output.Message{Worker: 0, Chunk: chunkOf(1)}
	in <- output.Message{Worker: 0, Chunk: chunkOf(2)}
	in <- output.Message{Worker: 0, Done: true}

	_, err := New(Config{Workers: 1}, sink, nil, func() { cancelled = true }).Run(testContext(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
	assert.True(t, cancelled)
	assert.Equal(t, 1, sink.writes)
}

func TestRun_ReturnsChunksToPool(t *testing.T) {
	ctx := context.Background()
	chunks := output.NewChunkPool(ctx, 2, 1)
	defer chunks.Close(ctx)

	chunk, err := chunks.Borrow(ctx)
	require.NoError(t, err)
	chunk.Append(hasher.HashRecord{Id: 3})

	in := make(chan output.Message, 2)
	in <- output.Message{Worker: 0, Chunk: chunk}
	in <- output.Message{Worker: 0, Done: true}

	_, err = New(Config{Workers: 1}, new(bytes.Buffer), chunks, nil).Run(testContext(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, chunks.Active())
}

func TestRun_LogsProgress(t *testing.T) {
	logger := logrus.New()
	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	ctx := rainbowcontext.New(context.Background(), logrus.NewEntry(logger))

	in := make(chan output.Message)
	go func() {
		in <- output.Message{Worker: 0, Chunk: chunkOf(0, 1)}
		time.Sleep(100 * time.Millisecond)
		in <- output.Message{Worker: 0, Done: true}
	}()

	_, err := New(Config{Workers: 1, ExpectedRecords: 4, ProgressInterval: 10 * time.Millisecond}, new(bytes.Buffer), nil, nil).Run(ctx, in)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "written 2 of 4 records (50.0%")
}
