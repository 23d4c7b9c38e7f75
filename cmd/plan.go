package main

import (
	"context"
	"io"
	"os"

	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/featureflag"
	"github.com/aukilabs/depthmap/geometry"
	"github.com/aukilabs/depthmap/metagraph"
	"github.com/aukilabs/depthmap/pointmap"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"gopkg.in/yaml.v3"
)

const ErrTypeInvalidPlan = "invalid_plan"

// plan describes the content of a graph to build.
type plan struct {
	Name        string                   `yaml:"name"`
	Properties  metagraph.FileProperties `yaml:"properties"`
	Drawings    []drawingPlan            `yaml:"drawings"`
	ShapeGraphs []shapeMapPlan           `yaml:"shape_graphs"`
	DataMaps    []shapeMapPlan           `yaml:"data_maps"`
	PointMaps   []pointMapPlan           `yaml:"point_maps"`
}

type drawingPlan struct {
	Name   string         `yaml:"name"`
	Layers []shapeMapPlan `yaml:"layers"`
}

// shapeMapPlan lists the shapes of a layer or map. A point is [x, y], a
// line is [x1, y1, x2, y2] and a polygon is a list of points.
type shapeMapPlan struct {
	Name     string        `yaml:"name"`
	Type     string        `yaml:"type"`
	Hidden   bool          `yaml:"hidden"`
	Points   [][]float64   `yaml:"points"`
	Lines    [][]float64   `yaml:"lines"`
	Polygons [][][]float64 `yaml:"polygons"`
	Open     bool          `yaml:"open"`
}

type pointMapPlan struct {
	Name    string      `yaml:"name"`
	Spacing float64     `yaml:"spacing"`
	Fill    string      `yaml:"fill"`
	Seeds   [][]float64 `yaml:"seeds"`
}

var shapeGraphTypes = map[string]shapemap.MapType{
	"":         shapemap.AxialMap,
	"axial":    shapemap.AxialMap,
	"segment":  shapemap.SegmentMap,
	"all-line": shapemap.AllLineMap,
	"convex":   shapemap.ConvexMap,
}

var fillTypes = map[string]pointmap.FillType{
	"":        pointmap.FullFill,
	"full":    pointmap.FullFill,
	"semi":    pointmap.SemiFill,
	"augment": pointmap.Augment,
}

func readPlanFile(path string) (plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return plan{}, errors.New("opening plan failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	return readPlan(f)
}

func readPlan(r io.Reader) (plan, error) {
	var p plan
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return plan{}, errors.New("decoding plan failed").
			WithType(ErrTypeInvalidPlan).
			Wrap(err)
	}
	return p, nil
}

func invalidPlan(msg, section, name string) error {
	return errors.New(msg).
		WithType(ErrTypeInvalidPlan).
		WithTag("section", section).
		WithTag("name", name)
}

// buildGraph creates the graph described by p. Point maps without a spacing
// use defaultSpacing. The graph lock is held while maps are filled and
// connected.
func buildGraph(ctx context.Context, p plan, defaultSpacing float64, flags featureflag.FeatureFlag) (*metagraph.MetaGraph, error) {
	g := metagraph.New(p.Name)
	g.Properties = p.Properties
	c := comm.New(ctx, func(current int) {
		logs.WithTag("graph", g.ID).
			WithTag("processed", current).
			Debug("build progress")
	})

	g.Lock()
	defer g.Unlock()

	for _, d := range p.Drawings {
		f := g.AddDrawingFile(d.Name)
		for _, lp := range d.Layers {
			if lp.Hidden && flags.IsSet(featureflag.FlagSkipHiddenLayers) {
				continue
			}
			l := f.AddLayer(lp.Name)
			if err := addShapes(l, lp, "drawing"); err != nil {
				return nil, err
			}
			l.SetShow(!lp.Hidden)
		}
	}
	g.RefreshRegion()

	for _, sp := range p.ShapeGraphs {
		t, ok := shapeGraphTypes[sp.Type]
		if !ok {
			return nil, invalidPlan("unknown shape graph type", "shape_graphs", sp.Name)
		}
		sg := g.AddShapeGraph(sp.Name, t)
		if err := addShapes(sg.ShapeMap, sp, "shape_graphs"); err != nil {
			return nil, err
		}
		err := flags.IfNotSet(featureflag.FlagDisableShapeConnections, func() error {
			return sg.MakeShapeConnections(c)
		})
		if err != nil {
			return nil, err
		}
	}

	for _, dp := range p.DataMaps {
		if err := addShapes(g.AddDataMap(dp.Name), dp, "data_maps"); err != nil {
			return nil, err
		}
	}

	for _, pp := range p.PointMaps {
		if err := fillPointMap(g, pp, defaultSpacing, !flags.IsSet(featureflag.FlagDisablePointFill), c); err != nil {
			return nil, err
		}
	}

	logs.WithTag("graph", g.ID).
		WithTag("name", g.Name()).
		WithTag("drawings", len(g.DrawingFiles())).
		WithTag("point_maps", len(g.PointMaps())).
		WithTag("shape_graphs", len(g.ShapeGraphs())).
		WithTag("data_maps", len(g.DataMaps())).
		Info("graph built")
	return g, nil
}

func addShapes(m *shapemap.ShapeMap, sp shapeMapPlan, section string) error {
	for _, v := range sp.Points {
		if len(v) != 2 {
			return invalidPlan("a point needs 2 coordinates", section, sp.Name)
		}
		m.MakePointShape(geometry.NewPoint(v[0], v[1]), nil)
	}

	for _, v := range sp.Lines {
		if len(v) != 4 {
			return invalidPlan("a line needs 4 coordinates", section, sp.Name)
		}
		m.MakeLineShape(geometry.NewLine(
			geometry.NewPoint(v[0], v[1]),
			geometry.NewPoint(v[2], v[3]),
		), nil)
	}

	for _, poly := range sp.Polygons {
		if len(poly) < 2 {
			return invalidPlan("a polygon needs at least 2 points", section, sp.Name)
		}
		points := make([]geometry.Point, 0, len(poly))
		for _, v := range poly {
			if len(v) != 2 {
				return invalidPlan("a point needs 2 coordinates", section, sp.Name)
			}
			points = append(points, geometry.NewPoint(v[0], v[1]))
		}
		m.MakePolyShape(points, sp.Open, nil)
	}
	return nil
}

func fillPointMap(g *metagraph.MetaGraph, pp pointMapPlan, defaultSpacing float64, fillSeeds bool, c comm.Communicator) error {
	fill, ok := fillTypes[pp.Fill]
	if !ok {
		return invalidPlan("unknown fill type", "point_maps", pp.Name)
	}
	spacing := pp.Spacing
	if spacing == 0 {
		spacing = defaultSpacing
	}

	m := g.AddPointMap(pp.Name)
	if err := m.SetGrid(spacing, geometry.Point{}); err != nil {
		return err
	}
	if !fillSeeds {
		return nil
	}
	for _, v := range pp.Seeds {
		if len(v) != 2 {
			return invalidPlan("a seed needs 2 coordinates", "point_maps", pp.Name)
		}
		if _, err := m.MakePoints(geometry.NewPoint(v[0], v[1]), fill, c); err != nil {
			return err
		}
	}
	return nil
}
