package metagraph

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel    = "result"
	errorTypeLabel = "error_type"
)

var (
	reads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metagraph_reads_total",
		Help: "The number of graph files read.",
	}, []string{
		resultLabel,
	})

	writes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metagraph_writes_total",
		Help: "The number of graph files written.",
	}, []string{
		errorTypeLabel,
	})

	readDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "metagraph_read_duration_seconds",
		Help: "The time to read a graph file.",
	})
)

func instrumentRead(start time.Time, res Result) {
	reads.With(prometheus.Labels{
		resultLabel: res.String(),
	}).Inc()
	readDuration.Observe(time.Since(start).Seconds())
}

func instrumentWrite(err error) {
	errorType := ""
	if err != nil {
		errorType = errors.Type(err)
	}

	writes.With(prometheus.Labels{
		errorTypeLabel: errorType,
	}).Inc()
}
