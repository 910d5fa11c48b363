package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultWeights().Validate())
	})

	t.Run("zero weights are valid", func(t *testing.T) {
		assert.NoError(t, Weights{}.Validate())
	})

	t.Run("negative weight is rejected with field name", func(t *testing.T) {
		w := DefaultWeights()
		w.Feasibility.RiskLevel = -0.1

		err := w.Validate()
		require.ErrorIs(t, err, ErrNegativeWeight)
		assert.Contains(t, err.Error(), "feasibility.riskLevel")
	})

	t.Run("weights need not sum to one", func(t *testing.T) {
		w := DefaultWeights()
		w.Impact.TimeSavings = 3.5

		assert.NoError(t, w.Validate())
	})
}
