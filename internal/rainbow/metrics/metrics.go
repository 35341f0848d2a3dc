package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricPrefix = "rainbow_"

var recordsHashedCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "records_hashed",
		Help: "Number of ids hashed",
	},
	[]string{"algorithm"},
)

var chunksWrittenCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricPrefix + "chunks_written",
		Help: "Number of output chunks written to the sink",
	},
)

var bytesWrittenCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricPrefix + "bytes_written",
		Help: "Number of bytes written to the sink",
	},
)

var jobDurationHist = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    MetricPrefix + "job_duration_seconds",
		Help:    "Time taken by a worker to hash one job",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
	},
)

var workerFailuresCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricPrefix + "worker_failures",
		Help: "Number of workers that stopped before finishing their jobs",
	},
)

type Metrics struct{}

var m = &Metrics{}

func Get() *Metrics {
	return m
}

func (m *Metrics) RecordHashed(algorithm string, numRecords int) {
	recordsHashedCounter.WithLabelValues(algorithm).Add(float64(numRecords))
}

func (m *Metrics) RecordChunkWritten(numBytes int) {
	chunksWrittenCounter.Inc()
	bytesWrittenCounter.Add(float64(numBytes))
}

func (m *Metrics) RecordJobDuration(duration time.Duration) {
	jobDurationHist.Observe(duration.Seconds())
}

func (m *Metrics) RecordWorkerFailure() {
	workerFailuresCounter.Inc()
}
