package shapemap

import (
	"time"

	"github.com/aukilabs/depthmap/shapes"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	shapeTypeLabel = "shape_type"
	resultLabel    = "result"
)

var (
	pixelatedShapes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shapemap_pixelated_shapes_total",
		Help: "The number of shapes indexed into a shape map grid.",
	}, []string{
		shapeTypeLabel,
	})

	connectionsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "shapemap_connections_duration_seconds",
		Help: "The time to rebuild the graph of a shape map.",
	}, []string{
		resultLabel,
	})
)

func shapeTypeName(s shapes.Shape) string {
	switch {
	case s.IsPoint():
		return "point"
	case s.IsLine():
		return "line"
	case s.IsPolyLine():
		return "polyline"
	default:
		return "polygon"
	}
}

func instrumentPixelated(s shapes.Shape) {
	pixelatedShapes.With(prometheus.Labels{
		shapeTypeLabel: shapeTypeName(s),
	}).Inc()
}

func instrumentConnections(start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = errors.Type(err)
	}

	connectionsDuration.With(prometheus.Labels{
		resultLabel: result,
	}).Observe(time.Since(start).Seconds())
}
