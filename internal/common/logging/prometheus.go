package logging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var logMessagesCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rainbow_log_messages",
		Help: "Total number of log lines logged by level",
	},
	[]string{"level"},
)

// PrometheusHook implements logrus.Hook, counting log lines per level.
type PrometheusHook struct {
	counters *prometheus.CounterVec
}

func NewPrometheusHook() *PrometheusHook {
	return &PrometheusHook{counters: logMessagesCounter}
}

func (h *PrometheusHook) Levels() []log.Level {
	return []log.Level{
		log.DebugLevel,
		log.InfoLevel,
		log.WarnLevel,
		log.ErrorLevel,
	}
}

func (h *PrometheusHook) Fire(entry *log.Entry) error {
	h.counters.WithLabelValues(entry.Level.String()).Inc()
	return nil
}
