package models

// RiskLevel is the categorical implementation-risk estimate for an idea.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RecommendationClass is the discrete label derived from impact and
// feasibility scores.
type RecommendationClass string

const (
	RecommendationQuickWin     RecommendationClass = "quick_win"
	RecommendationHighLeverage RecommendationClass = "high_leverage"
	RecommendationStrategic    RecommendationClass = "strategic"
	RecommendationEvaluate     RecommendationClass = "evaluate"
	RecommendationUnclassified RecommendationClass = "unclassified"
)

// KPIEstimate holds the business-impact projections extracted from an idea by
// the LLM analysis step. Every metric is optional: a nil field means the
// analysis produced no estimate for it, which is not the same as zero. JSON
// field names are the external contract spellings.
type KPIEstimate struct {
	TimeSavingsHours           *float64 `json:"timeSavingsHours,omitempty"`
	CostReductionEur           *float64 `json:"costReductionEur,omitempty"`
	QualityImprovementPercent  *float64 `json:"qualityImprovementPercent,omitempty"`
	EmployeeSatisfactionImpact *float64 `json:"employeeSatisfactionImpact,omitempty"`
	ScalabilityPotential       *float64 `json:"scalabilityPotential,omitempty"`
	ImplementationEffortDays   *float64 `json:"implementationEffortDays,omitempty"`
	RiskLevel                  *string  `json:"riskLevel,omitempty"`
}

// IsEmpty reports whether no metric is present at all.
func (e *KPIEstimate) IsEmpty() bool {
	if e == nil {
		return true
	}

	return e.TimeSavingsHours == nil &&
		e.CostReductionEur == nil &&
		e.QualityImprovementPercent == nil &&
		e.EmployeeSatisfactionImpact == nil &&
		e.ScalabilityPotential == nil &&
		e.ImplementationEffortDays == nil &&
		e.RiskLevel == nil
}

// ScoreResult is the derived scoring outcome for one KPI estimate. It is a
// pure function of the estimate and the configured weights and is recomputed
// whenever either changes.
type ScoreResult struct {
	ImpactScore         float64             `json:"impactScore"`
	FeasibilityScore    float64             `json:"feasibilityScore"`
	RecommendationClass RecommendationClass `json:"recommendationClass"`
}
