package option

import (
	"bytes"
	"testing"

	"github.com/rstms/isofs/pkg/logging"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		o := Apply()
		require.True(t, o.JolietEnabled)
		require.True(t, o.PreferJoliet)
		require.NotNil(t, o.Logger)
		require.NotNil(t, o.ExtractionProgressCallback)
	})

	t.Run("Overrides", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := logging.NewLogger(logging.NewSimpleLogger(buf, logging.LEVEL_DEBUG, false))
		calls := 0
		o := Apply(
			WithJolietEnabled(false),
			WithPreferJoliet(false),
			WithLogger(logger),
			WithExtractionProgress(func(string, int64, int64, int, int) { calls++ }),
		)
		require.False(t, o.JolietEnabled)
		require.False(t, o.PreferJoliet)
		require.Same(t, logger, o.Logger)
		o.ExtractionProgressCallback("A/B", 1, 2, 1, 1)
		require.Equal(t, 1, calls)
	})

	t.Run("NilValuesRestored", func(t *testing.T) {
		o := Apply(WithLogger(nil), WithExtractionProgress(nil))
		require.NotNil(t, o.Logger)
		require.NotPanics(t, func() { o.ExtractionProgressCallback("x", 0, 0, 0, 0) })
	})
}
