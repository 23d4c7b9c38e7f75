package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/featureflag"
	"github.com/aukilabs/depthmap/metagraph"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

const testPlan = `
name: ground floor
properties:
  creator: surveyor
  title: ground floor plan
drawings:
  - name: plan
    layers:
      - name: outline
        hidden: true
        polygons:
          - [[0, 0], [10, 0], [10, 10], [0, 10]]
      - name: walls
        lines:
          - [0, 0, 10, 0]
          - [10, 0, 10, 10]
          - [10, 10, 0, 10]
          - [0, 10, 0, 0]
          - [4.5, 0, 4.5, 10]
shape_graphs:
  - name: axial
    lines:
      - [1, 5, 9, 5]
      - [5, 1, 5, 9]
data_maps:
  - name: gates
    points:
      - [3, 3]
      - [6, 6]
point_maps:
  - name: left room
    seeds:
      - [2, 2]
`

func TestBuildGraph(t *testing.T) {
	p, err := readPlan(strings.NewReader(testPlan))
	require.NoError(t, err)
	require.Equal(t, "surveyor", p.Properties.Creator)

	g, err := buildGraph(context.Background(), p, 1, nil)
	require.NoError(t, err)
	require.Equal(t, "ground floor", g.Name())
	require.Equal(t, "ground floor plan", g.Properties.Title)

	require.Len(t, g.DrawingFiles(), 1)
	layers := g.DrawingFiles()[0].Layers
	require.Len(t, layers, 2)
	require.False(t, layers[0].Show())
	require.Equal(t, 5, layers[1].ShapeCount())
	require.Len(t, g.Lines(), 5)

	require.Len(t, g.ShapeGraphs(), 1)
	axial := g.ShapeGraphs()[0]
	require.Equal(t, shapemap.AxialMap, axial.Type())
	require.Equal(t, []int{1}, axial.Connections(0))

	require.Len(t, g.DataMaps(), 1)
	require.Equal(t, 2, g.DataMaps()[0].ShapeCount())

	m := g.DisplayedPointMap()
	require.NotNil(t, m)
	require.Equal(t, "left room", m.Name())
	require.NotZero(t, m.PointCount())
	require.True(t, g.TryLock())
	g.Unlock()
}

func TestBuildGraphFeatureFlags(t *testing.T) {
	p, err := readPlan(strings.NewReader(testPlan))
	require.NoError(t, err)

	g, err := buildGraph(context.Background(), p, 1, featureflag.New([]string{
		string(featureflag.FlagDisableShapeConnections),
		string(featureflag.FlagDisablePointFill),
		string(featureflag.FlagSkipHiddenLayers),
	}))
	require.NoError(t, err)

	layers := g.DrawingFiles()[0].Layers
	require.Len(t, layers, 1)
	require.Equal(t, "walls", layers[0].Name())
	require.Empty(t, g.ShapeGraphs()[0].Connections(0))
	require.True(t, g.DisplayedPointMap().IsInitialised())
	require.Zero(t, g.DisplayedPointMap().PointCount())
}

func TestBuildGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		plan plan
	}{
		{
			name: "unknown shape graph type",
			plan: plan{ShapeGraphs: []shapeMapPlan{{Name: "x", Type: "visibility"}}},
		},
		{
			name: "short line",
			plan: plan{DataMaps: []shapeMapPlan{{Name: "x", Lines: [][]float64{{1, 2, 3}}}}},
		},
		{
			name: "short point",
			plan: plan{Drawings: []drawingPlan{{Layers: []shapeMapPlan{{Points: [][]float64{{1}}}}}}},
		},
		{
			name: "single point polygon",
			plan: plan{DataMaps: []shapeMapPlan{{Polygons: [][][]float64{{{1, 1}}}}}},
		},
		{
			name: "unknown fill",
			plan: plan{PointMaps: []pointMapPlan{{Fill: "flood"}}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := buildGraph(context.Background(), test.plan, 1, nil)
			require.Equal(t, ErrTypeInvalidPlan, errors.Type(err))
		})
	}

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := readPlan(strings.NewReader("drawings: {"))
		require.Equal(t, ErrTypeInvalidPlan, errors.Type(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		p, err := readPlan(strings.NewReader(testPlan))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = buildGraph(ctx, p, 1, nil)
		require.True(t, comm.IsCancelled(err))
	})
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	graphPath := filepath.Join(dir, "plan.graph")
	require.NoError(t, os.WriteFile(planPath, []byte(testPlan), 0o644))

	var loaded atomic.Pointer[metagraph.MetaGraph]
	conf := config{
		Command:     commandBuild,
		Input:       planPath,
		Output:      graphPath,
		Format:      metagraph.FormatJSON,
		GridSpacing: 1,
	}
	require.NoError(t, validateConfig(conf))
	require.NoError(t, run(context.Background(), conf, &loaded, nil))
	built := loaded.Load()
	require.NotNil(t, built)

	t.Run("inspect", func(t *testing.T) {
		conf := conf
		conf.Command = commandInspect
		conf.Input = graphPath

		var out bytes.Buffer
		require.NoError(t, run(context.Background(), conf, &loaded, &out))

		var s metagraph.Summary
		require.NoError(t, json.Unmarshal(out.Bytes(), &s))
		require.Equal(t, "ground floor", s.Name)
		require.Len(t, s.ShapeGraphs, 1)
		require.Len(t, s.PointMaps, 1)
		require.NotSame(t, built, loaded.Load())
	})

	t.Run("convert displayed map", func(t *testing.T) {
		conf := conf
		conf.Command = commandConvert
		conf.Input = graphPath
		conf.Output = filepath.Join(dir, "front.graph")
		conf.DisplayedOnly = true
		require.NoError(t, run(context.Background(), conf, &loaded, nil))

		g := metagraph.New("")
		res, err := g.ReadFile(conf.Output)
		require.NoError(t, err)
		require.Equal(t, metagraph.OK, res)
		require.Len(t, g.PointMaps(), 1)
		require.Empty(t, g.ShapeGraphs())
	})

	t.Run("inspect missing file", func(t *testing.T) {
		conf := conf
		conf.Command = commandInspect
		conf.Input = filepath.Join(dir, "missing.graph")
		err := run(context.Background(), conf, &loaded, &bytes.Buffer{})
		require.Equal(t, metagraph.ErrTypeDiskError, errors.Type(err))
	})

	t.Run("unknown command", func(t *testing.T) {
		conf := conf
		conf.Command = "render"
		require.Error(t, run(context.Background(), conf, &loaded, nil))
	})
}

func TestValidateConfig(t *testing.T) {
	valid := config{
		Command:     commandInspect,
		Input:       "plan.graph",
		Format:      metagraph.FormatProto,
		GridSpacing: 1,
	}
	require.NoError(t, validateConfig(valid))

	tests := []struct {
		name   string
		change func(c *config)
	}{
		{name: "unknown command", change: func(c *config) { c.Command = "render" }},
		{name: "unknown format", change: func(c *config) { c.Format = "xml" }},
		{name: "no input", change: func(c *config) { c.Input = "" }},
		{name: "no output", change: func(c *config) { c.Command = commandConvert }},
		{name: "zero spacing", change: func(c *config) { c.GridSpacing = 0 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conf := valid
			test.change(&conf)
			require.Error(t, validateConfig(conf))
		})
	}
}
