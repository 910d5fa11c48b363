// Package scoring turns LLM-extracted KPI estimates into normalized impact and
// feasibility scores and a recommendation class. All functions are pure and
// safe for concurrent use.
package scoring

import "github.com/ideahub/hub/internal/models"

// metricRange is the fixed domain of one KPI metric. Ranges are deployment
// constants, not discovered from data.
type metricRange struct {
	min float64
	max float64
}

var (
	rangeTimeSavingsHours           = metricRange{0, 500}     // hours/month
	rangeCostReductionEur           = metricRange{0, 500000}  // EUR/year
	rangeQualityImprovementPercent  = metricRange{0, 100}     // percent
	rangeEmployeeSatisfactionImpact = metricRange{-100, 100}  // -100..100
	rangeScalabilityPotential       = metricRange{0, 100}     // 0..100
	rangeImplementationEffortDays   = metricRange{1, 365}     // days; 0 clamps to 1
)

// riskLevelScores maps the categorical risk level to a feasibility sub-score.
// Unrecognized values fall back to defaultRiskScore instead of erroring.
var riskLevelScores = map[models.RiskLevel]float64{
	models.RiskLow:    100,
	models.RiskMedium: 50,
	models.RiskHigh:   10,
}

const defaultRiskScore = 50

// Normalize maps value into [0,100] given the metric domain [min,max].
// Out-of-range inputs are clamped, never rejected. When min == max the
// midpoint 50 is returned to avoid division by zero. With invert set, lower
// raw values score higher (used for implementation effort, where fewer days
// means more feasible).
func Normalize(value, min, max float64, invert bool) float64 {
	if value < min {
		value = min
	}

	if value > max {
		value = max
	}

	var normalized float64
	if max == min {
		normalized = 50.0
	} else {
		normalized = (value - min) / (max - min) * 100
	}

	if invert {
		normalized = 100 - normalized
	}

	return normalized
}

// riskScore returns the sub-score for a risk level string.
func riskScore(level string) float64 {
	if score, ok := riskLevelScores[models.RiskLevel(level)]; ok {
		return score
	}

	return defaultRiskScore
}
