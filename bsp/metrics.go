package bsp

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultLabel = "result"

var (
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "bsp_build_duration_seconds",
		Help: "The time to build a binary space partition.",
	})

	builds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bsp_builds_total",
		Help: "The number of binary space partitions built.",
	}, []string{
		resultLabel,
	})
)

func instrumentBuild(start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = errors.Type(err)
	}

	buildDuration.Observe(time.Since(start).Seconds())
	builds.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}
