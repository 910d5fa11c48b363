package scoring

import (
	"errors"
	"fmt"
)

// ErrNegativeWeight is returned when a weight is configured below zero.
// Negative weights indicate misconfiguration, not data variance, so they are
// rejected at construction time rather than absorbed.
var ErrNegativeWeight = errors.New("scoring: weight must be non-negative")

// ImpactWeights weights the five impact metrics. Weights need not sum to 1;
// the scorer normalizes by the sum of weights actually applied.
type ImpactWeights struct {
	TimeSavings          float64
	CostReduction        float64
	QualityImprovement   float64
	EmployeeSatisfaction float64
	Scalability          float64
}

// FeasibilityWeights weights the three feasibility metrics. Complexity is a
// derived metric, computed only when both effort and risk are present.
type FeasibilityWeights struct {
	ImplementationEffort float64
	RiskLevel            float64
	Complexity           float64
}

// Weights is the full scoring configuration.
type Weights struct {
	Impact      ImpactWeights
	Feasibility FeasibilityWeights
}

// DefaultWeights returns the deployment default weights.
func DefaultWeights() Weights {
	return Weights{
		Impact: ImpactWeights{
			TimeSavings:          0.20,
			CostReduction:        0.25,
			QualityImprovement:   0.20,
			EmployeeSatisfaction: 0.15,
			Scalability:          0.20,
		},
		Feasibility: FeasibilityWeights{
			ImplementationEffort: 0.35,
			RiskLevel:            0.35,
			Complexity:           0.30,
		},
	}
}

// Validate returns ErrNegativeWeight (wrapped with the field name) when any
// weight is below zero.
func (w Weights) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"impact.timeSavings", w.Impact.TimeSavings},
		{"impact.costReduction", w.Impact.CostReduction},
		{"impact.qualityImprovement", w.Impact.QualityImprovement},
		{"impact.employeeSatisfaction", w.Impact.EmployeeSatisfaction},
		{"impact.scalability", w.Impact.Scalability},
		{"feasibility.implementationEffort", w.Feasibility.ImplementationEffort},
		{"feasibility.riskLevel", w.Feasibility.RiskLevel},
		{"feasibility.complexity", w.Feasibility.Complexity},
	}

	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s is %v", ErrNegativeWeight, f.name, f.value)
		}
	}

	return nil
}
