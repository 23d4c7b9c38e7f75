package pointmap

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	fillTypeLabel = "fill_type"
	resultLabel   = "result"
)

var (
	filledPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pointmap_filled_points_total",
		Help: "The number of points filled by flood fills.",
	}, []string{
		fillTypeLabel,
	})

	fillDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "pointmap_fill_duration_seconds",
		Help: "The time to flood fill a point map.",
	}, []string{
		resultLabel,
	})
)

func instrumentFill(start time.Time, filled int, fill FillType, err error) {
	result := "ok"
	if err != nil {
		result = errors.Type(err)
	}

	filledPoints.With(prometheus.Labels{
		fillTypeLabel: fill.String(),
	}).Add(float64(filled))

	fillDuration.With(prometheus.Labels{
		resultLabel: result,
	}).Observe(time.Since(start).Seconds())
}
