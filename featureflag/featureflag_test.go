package featureflag

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlag(t *testing.T) {
	f := New([]string{string(FlagDisablePointFill)})
	require.True(t, f.IsSet(FlagDisablePointFill))
	require.False(t, f.IsSet(FlagSkipHiddenLayers))

	t.Run("run if enabled", func(t *testing.T) {
		var fillDisabled bool
		f.IfSet(FlagDisablePointFill, func() {
			fillDisabled = true
		})
		require.True(t, fillDisabled)

		var skipHidden bool
		f.IfSet(FlagSkipHiddenLayers, func() {
			skipHidden = true
		})
		require.False(t, skipHidden)
	})

	t.Run("run if disabled", func(t *testing.T) {
		var filled bool
		err := f.IfNotSet(FlagDisablePointFill, func() error {
			filled = true
			return nil
		})
		require.NoError(t, err)
		require.False(t, filled)

		err = f.IfNotSet(FlagDisableShapeConnections, func() error {
			return errors.New("connecting failed")
		})
		require.Error(t, err)
	})

	t.Run("nil flags", func(t *testing.T) {
		var none FeatureFlag
		require.False(t, none.IsSet(FlagDisablePointFill))
	})
}
