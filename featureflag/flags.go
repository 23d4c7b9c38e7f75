package featureflag

type Flag string

const (
	// Shape graphs are stored without connectivity.
	FlagDisableShapeConnections Flag = "DISABLE_SHAPE_CONNECTIONS"

	// Point maps get a grid but their seeds are not filled.
	FlagDisablePointFill Flag = "DISABLE_POINT_FILL"

	// Hidden drawing layers are left out of the graph.
	FlagSkipHiddenLayers Flag = "SKIP_HIDDEN_LAYERS"
)
