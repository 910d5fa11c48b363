package scoring

import (
	"math"

	"github.com/ideahub/hub/internal/models"
)

// ImpactScore computes the weighted impact score from the impact metrics
// present in the estimate. Absent metrics contribute neither to the weighted
// sum nor to the weight total, so an estimate with two of five metrics is
// scored only on what is known rather than penalized for missing data.
// Returns 0 when no impact metric is present. Rounded to 2 decimals.
func ImpactScore(estimate *models.KPIEstimate, weights ImpactWeights) float64 {
	if estimate.IsEmpty() {
		return 0
	}

	var weightedSum, totalWeight float64

	if estimate.TimeSavingsHours != nil {
		n := Normalize(*estimate.TimeSavingsHours, rangeTimeSavingsHours.min, rangeTimeSavingsHours.max, false)
		weightedSum += n * weights.TimeSavings
		totalWeight += weights.TimeSavings
	}

	if estimate.CostReductionEur != nil {
		n := Normalize(*estimate.CostReductionEur, rangeCostReductionEur.min, rangeCostReductionEur.max, false)
		weightedSum += n * weights.CostReduction
		totalWeight += weights.CostReduction
	}

	if estimate.QualityImprovementPercent != nil {
		n := Normalize(*estimate.QualityImprovementPercent, rangeQualityImprovementPercent.min, rangeQualityImprovementPercent.max, false)
		weightedSum += n * weights.QualityImprovement
		totalWeight += weights.QualityImprovement
	}

	if estimate.EmployeeSatisfactionImpact != nil {
		n := Normalize(*estimate.EmployeeSatisfactionImpact, rangeEmployeeSatisfactionImpact.min, rangeEmployeeSatisfactionImpact.max, false)
		weightedSum += n * weights.EmployeeSatisfaction
		totalWeight += weights.EmployeeSatisfaction
	}

	if estimate.ScalabilityPotential != nil {
		n := Normalize(*estimate.ScalabilityPotential, rangeScalabilityPotential.min, rangeScalabilityPotential.max, false)
		weightedSum += n * weights.Scalability
		totalWeight += weights.Scalability
	}

	if totalWeight <= 0 {
		return 0
	}

	return round2(weightedSum / totalWeight)
}

// FeasibilityScore computes the weighted feasibility score from effort, risk,
// and the derived complexity metric. Complexity is the average of the inverted
// effort normalization and the risk score, and is computed only when both
// effort and risk are present; it is never derived from one alone.
func FeasibilityScore(estimate *models.KPIEstimate, weights FeasibilityWeights) float64 {
	if estimate.IsEmpty() {
		return 0
	}

	var weightedSum, totalWeight float64

	var effortNorm float64

	if estimate.ImplementationEffortDays != nil {
		effortNorm = Normalize(*estimate.ImplementationEffortDays, rangeImplementationEffortDays.min, rangeImplementationEffortDays.max, true)
		weightedSum += effortNorm * weights.ImplementationEffort
		totalWeight += weights.ImplementationEffort
	}

	if estimate.RiskLevel != nil {
		weightedSum += riskScore(*estimate.RiskLevel) * weights.RiskLevel
		totalWeight += weights.RiskLevel
	}

	if estimate.ImplementationEffortDays != nil && estimate.RiskLevel != nil {
		complexity := (effortNorm + riskScore(*estimate.RiskLevel)) / 2
		weightedSum += complexity * weights.Complexity
		totalWeight += weights.Complexity
	}

	if totalWeight <= 0 {
		return 0
	}

	return round2(weightedSum / totalWeight)
}

// Score computes impact, feasibility, and the recommendation class in one
// pass. Pure: identical inputs always yield identical results.
func Score(estimate *models.KPIEstimate, weights Weights) models.ScoreResult {
	impact := ImpactScore(estimate, weights.Impact)
	feasibility := FeasibilityScore(estimate, weights.Feasibility)

	return models.ScoreResult{
		ImpactScore:         impact,
		FeasibilityScore:    feasibility,
		RecommendationClass: Classify(impact, feasibility),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
