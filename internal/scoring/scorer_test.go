package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideahub/hub/internal/models"
)

func fp(v float64) *float64 { return &v }

func sp(s string) *string { return &s }

func TestImpactScore(t *testing.T) {
	weights := DefaultWeights().Impact

	t.Run("empty estimate scores zero", func(t *testing.T) {
		assert.InDelta(t, 0, ImpactScore(&models.KPIEstimate{}, weights), 1e-9)
	})

	t.Run("partial estimate normalizes by applied weights", func(t *testing.T) {
		// timeSavings 200/500 -> 40, costReduction 200000/500000 -> 40.
		// (40*0.20 + 40*0.25) / 0.45 = 40.
		estimate := &models.KPIEstimate{
			TimeSavingsHours: fp(200),
			CostReductionEur: fp(200000),
		}

		assert.InDelta(t, 40.0, ImpactScore(estimate, weights), 1e-9)
	})

	t.Run("missing metrics do not drag the score down", func(t *testing.T) {
		full := &models.KPIEstimate{
			TimeSavingsHours:           fp(250),
			CostReductionEur:           fp(250000),
			QualityImprovementPercent:  fp(50),
			EmployeeSatisfactionImpact: fp(0),
			ScalabilityPotential:       fp(50),
		}
		partial := &models.KPIEstimate{TimeSavingsHours: fp(250)}

		assert.InDelta(t, 50.0, ImpactScore(full, weights), 1e-9)
		assert.InDelta(t, 50.0, ImpactScore(partial, weights), 1e-9)
	})

	t.Run("stays within 0..100", func(t *testing.T) {
		maxed := &models.KPIEstimate{
			TimeSavingsHours:           fp(9999),
			CostReductionEur:           fp(9e9),
			QualityImprovementPercent:  fp(150),
			EmployeeSatisfactionImpact: fp(500),
			ScalabilityPotential:       fp(100),
		}

		assert.InDelta(t, 100.0, ImpactScore(maxed, weights), 1e-9)

		floored := &models.KPIEstimate{
			TimeSavingsHours:           fp(-10),
			EmployeeSatisfactionImpact: fp(-200),
		}

		assert.InDelta(t, 0.0, ImpactScore(floored, weights), 1e-9)
	})
}

func TestFeasibilityScore(t *testing.T) {
	weights := DefaultWeights().Feasibility

	t.Run("risk only", func(t *testing.T) {
		// Only the risk weight applies: 100*0.35/0.35 = 100.
		estimate := &models.KPIEstimate{RiskLevel: sp("low")}

		assert.InDelta(t, 100.0, FeasibilityScore(estimate, weights), 1e-9)
	})

	t.Run("effort only is inverted", func(t *testing.T) {
		// 365 days normalizes to 0 after inversion.
		estimate := &models.KPIEstimate{ImplementationEffortDays: fp(365)}

		assert.InDelta(t, 0.0, FeasibilityScore(estimate, weights), 1e-9)

		// 1 day is maximally feasible.
		estimate = &models.KPIEstimate{ImplementationEffortDays: fp(1)}

		assert.InDelta(t, 100.0, FeasibilityScore(estimate, weights), 1e-9)
	})

	t.Run("complexity requires both effort and risk", func(t *testing.T) {
		both := &models.KPIEstimate{
			ImplementationEffortDays: fp(1),
			RiskLevel:                sp("high"),
		}

		// effortNorm=100, risk=10, complexity=(100+10)/2=55.
		// (100*0.35 + 10*0.35 + 55*0.30) / 1.0 = 55.0
		assert.InDelta(t, 55.0, FeasibilityScore(both, weights), 1e-9)

		// Without risk, complexity must not contribute: 100*0.35/0.35 = 100.
		effortOnly := &models.KPIEstimate{ImplementationEffortDays: fp(1)}

		assert.InDelta(t, 100.0, FeasibilityScore(effortOnly, weights), 1e-9)
	})

	t.Run("unrecognized risk level scores neutral", func(t *testing.T) {
		estimate := &models.KPIEstimate{RiskLevel: sp("catastrophic")}

		assert.InDelta(t, 50.0, FeasibilityScore(estimate, weights), 1e-9)
	})

	t.Run("empty estimate scores zero", func(t *testing.T) {
		assert.InDelta(t, 0, FeasibilityScore(&models.KPIEstimate{}, weights), 1e-9)
	})
}

func TestScore(t *testing.T) {
	weights := DefaultWeights()

	t.Run("combines scores and classification", func(t *testing.T) {
		estimate := &models.KPIEstimate{
			TimeSavingsHours: fp(200),
			CostReductionEur: fp(200000),
			RiskLevel:        sp("low"),
		}

		result := Score(estimate, weights)

		assert.InDelta(t, 40.0, result.ImpactScore, 1e-9)
		assert.InDelta(t, 100.0, result.FeasibilityScore, 1e-9)
		assert.Equal(t, models.RecommendationEvaluate, result.RecommendationClass)
	})

	t.Run("deterministic", func(t *testing.T) {
		estimate := &models.KPIEstimate{
			TimeSavingsHours:          fp(321),
			QualityImprovementPercent: fp(63),
			ImplementationEffortDays:  fp(44),
			RiskLevel:                 sp("medium"),
		}

		first := Score(estimate, weights)

		for i := 0; i < 10; i++ {
			require.Equal(t, first, Score(estimate, weights))
		}
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		// timeSavings 123/500 -> 24.6, quality 37; (24.6*0.20 + 37*0.20)/0.40 = 30.8.
		estimate := &models.KPIEstimate{
			TimeSavingsHours:          fp(123),
			QualityImprovementPercent: fp(37),
		}

		result := Score(estimate, weights)

		assert.InDelta(t, 30.8, result.ImpactScore, 1e-9)
	})
}
