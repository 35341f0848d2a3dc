package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHashed(t *testing.T) {
	before := testutil.ToFloat64(recordsHashedCounter.WithLabelValues("sha256"))
	Get().RecordHashed("sha256", 10)
	assert.Equal(t, before+10, testutil.ToFloat64(recordsHashedCounter.WithLabelValues("sha256")))
}

func TestRecordChunkWritten(t *testing.T) {
	chunksBefore := testutil.ToFloat64(chunksWrittenCounter)
	bytesBefore := testutil.ToFloat64(bytesWrittenCounter)
	Get().RecordChunkWritten(86)
	assert.Equal(t, chunksBefore+1, testutil.ToFloat64(chunksWrittenCounter))
	assert.Equal(t, bytesBefore+86, testutil.ToFloat64(bytesWrittenCounter))
}

func TestRecordWorkerFailure(t *testing.T) {
	before := testutil.ToFloat64(workerFailuresCounter)
	Get().RecordWorkerFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(workerFailuresCounter))
}
