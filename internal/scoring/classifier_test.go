package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ideahub/hub/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		impact      float64
		feasibility float64
		want        models.RecommendationClass
	}{
		{"high impact high feasibility", 85, 82, models.RecommendationQuickWin},
		{"quick win lower bounds", 70, 60, models.RecommendationQuickWin},
		{"high leverage", 85, 30, models.RecommendationHighLeverage},
		{"high leverage just below feasibility cutoff", 80, 59.9, models.RecommendationHighLeverage},
		{"strategic", 65, 50, models.RecommendationStrategic},
		{"strategic lower bounds", 60, 40, models.RecommendationStrategic},
		{"just below strategic", 59.9, 39.9, models.RecommendationEvaluate},
		{"low everything", 10, 10, models.RecommendationEvaluate},
		{"high feasibility low impact", 20, 95, models.RecommendationEvaluate},
		{"impact below quick win but not high leverage", 79.9, 60, models.RecommendationStrategic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.impact, tt.feasibility))
		})
	}

	t.Run("quick win wins the overlap at 80 60", func(t *testing.T) {
		// (80, 60) satisfies impact >= 80 as well; rule order decides.
		assert.Equal(t, models.RecommendationQuickWin, Classify(80, 60))
	})
}
