package metagraph

import (
	"io"

	"github.com/aukilabs/depthmap/attributes"
	"github.com/aukilabs/depthmap/pointmap"
	"github.com/aukilabs/depthmap/shapemap"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ErrTypeUnknownFormat = "unknown_summary_format"
	ErrTypeEncoding      = "summary_encoding_failed"
)

// Formats a summary can be encoded in.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatProto   = "proto"
)

// Summary lists the content of a graph with statistics over the attribute
// columns of every map.
type Summary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Version     int              `json:"version"`
	Properties  FileProperties   `json:"properties"`
	Drawings    []DrawingSummary `json:"drawings,omitempty"`
	PointMaps   []MapSummary     `json:"point_maps,omitempty"`
	ShapeGraphs []MapSummary     `json:"shape_graphs,omitempty"`
	DataMaps    []MapSummary     `json:"data_maps,omitempty"`
}

type DrawingSummary struct {
	Name   string       `json:"name"`
	Layers []MapSummary `json:"layers,omitempty"`
}

// MapSummary describes one map. Shapes counts shapes for shape maps and
// filled points for point maps.
type MapSummary struct {
	Name       string               `json:"name"`
	Type       string               `json:"type"`
	Shapes     int                  `json:"shapes"`
	Rows       int                  `json:"rows"`
	Columns    int                  `json:"columns"`
	Displayed  bool                 `json:"displayed,omitempty"`
	Attributes []attributes.Summary `json:"attributes,omitempty"`
}

// Summary returns the content of the graph.
func (g *MetaGraph) Summary() Summary {
	s := Summary{
		ID:         g.ID,
		Name:       g.name,
		Version:    g.fileVersion,
		Properties: g.Properties,
	}

	for _, f := range g.drawingFiles {
		d := DrawingSummary{Name: f.Name}
		for _, l := range f.Layers {
			d.Layers = append(d.Layers, summarizeShapeMap(l, false))
		}
		s.Drawings = append(s.Drawings, d)
	}
	for i, m := range g.pointMaps {
		s.PointMaps = append(s.PointMaps, summarizePointMap(m, i == g.displayedPointMap))
	}
	for i, sg := range g.shapeGraphs {
		s.ShapeGraphs = append(s.ShapeGraphs, summarizeShapeMap(sg.ShapeMap, i == g.displayedShapeGraph))
	}
	for i, m := range g.dataMaps {
		s.DataMaps = append(s.DataMaps, summarizeShapeMap(m, i == g.displayedDataMap))
	}
	return s
}

func summarizeShapeMap(m *shapemap.ShapeMap, displayed bool) MapSummary {
	table := m.Attributes()
	return MapSummary{
		Name:       m.Name(),
		Type:       m.Type().String(),
		Shapes:     m.ShapeCount(),
		Rows:       table.RowCount(),
		Columns:    table.ColumnCount(),
		Displayed:  displayed,
		Attributes: table.SummarizeAll(),
	}
}

func summarizePointMap(m *pointmap.PointMap, displayed bool) MapSummary {
	table := m.Attributes()
	return MapSummary{
		Name:       m.Name(),
		Type:       shapemap.PointMap.String(),
		Shapes:     m.PointCount(),
		Rows:       table.RowCount(),
		Columns:    table.ColumnCount(),
		Displayed:  displayed,
		Attributes: table.SummarizeAll(),
	}
}

// Encode writes the summary to w in the given format. Msgpack uses the
// json field names. Proto writes a google.protobuf.Struct.
func (s Summary) Encode(w io.Writer, format string) error {
	var data []byte
	var err error

	switch format {
	case FormatJSON:
		data, err = json.Marshal(s)

	case FormatMsgpack:
		err = encodeMsgpack(w, s)

	case FormatProto:
		data, err = encodeProto(s)

	default:
		return errors.New("unknown summary format").
			WithType(ErrTypeUnknownFormat).
			WithTag("format", format)
	}
	if err != nil {
		return errors.New("encoding summary failed").
			WithType(ErrTypeEncoding).
			WithTag("format", format).
			Wrap(err)
	}

	if data != nil {
		if _, err := w.Write(data); err != nil {
			return errors.New("writing summary failed").
				WithType(ErrTypeEncoding).
				WithTag("format", format).
				Wrap(err)
		}
	}
	return nil
}

func encodeMsgpack(w io.Writer, s Summary) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(s)
}

func encodeProto(s Summary) ([]byte, error) {
	fields, err := s.fields()
	if err != nil {
		return nil, err
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// fields returns the summary as the generic map its json encoding decodes
// to.
func (s Summary) fields() (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// DecodeProtoSummary decodes a summary encoded in the proto format.
func DecodeProtoSummary(data []byte) (Summary, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return Summary{}, err
	}

	raw, err := json.Marshal(st.AsMap())
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	err = json.Unmarshal(raw, &s)
	return s, err
}
