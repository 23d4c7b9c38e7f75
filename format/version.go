package format

// Schema versions of the graph file. Each constant names the version that
// introduced a layout change.
const (
	VersionNGraphIntroduced    = 70
	VersionStateRecorded       = 72
	VersionBoundaryGraph       = 110
	VersionViewClass           = 130
	VersionFileCompression     = 150
	VersionAttributesTable     = 160
	VersionAxialLinks          = 170
	VersionSegmentMaps         = 190
	VersionNewBoundaryGraph    = 200
	VersionStoreColor          = 210
	VersionGridTextInfo        = 220
	VersionGateMaps            = 230
	VersionGridConnections     = 240
	VersionPointLocations      = 250
	VersionPointMaps           = 251
	VersionShapeMaps           = 260
	VersionPointMapNames       = 262
	VersionShapeCentroids      = 280
	VersionOcclusions          = 290
	VersionStoreFormula        = 300
	VersionAxialShapes         = 310
	VersionDrawingShapes       = 320
	VersionAttributeLocking    = 350
	VersionStoreColumnCreator  = 350
	VersionMapTypes            = 360
	VersionShapeAreaPerimeter  = 370
	VersionForgetColumnCreator = 370
	VersionNoShapeMapNameTable = 380
	VersionMapLayers           = 410
	VersionNoSelfConnection    = 420
	VersionOccDistances        = 430
	VersionBinDistances        = 440

	// Current is the version written by this module.
	Current = 440

	// Oldest is the oldest version that can still be read.
	Oldest = VersionNGraphIntroduced
)

// Decoder binds a decoding layout to an inclusive range of versions.
type Decoder[T any] struct {
	MinVersion int
	MaxVersion int
	Layout     T
}

// DecoderTable is an ordered list of version ranges. A version is decoded by
// the first entry whose range contains it.
type DecoderTable[T any] []Decoder[T]

// Lookup returns the layout registered for version.
func (t DecoderTable[T]) Lookup(version int) (T, bool) {
	for _, d := range t {
		if version >= d.MinVersion && version <= d.MaxVersion {
			return d.Layout, true
		}
	}

	var zero T
	return zero, false
}
