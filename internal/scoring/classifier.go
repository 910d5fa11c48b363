package scoring

import "github.com/ideahub/hub/internal/models"

// classificationRule pairs a predicate over (impact, feasibility) with the
// class it yields.
type classificationRule struct {
	matches func(impact, feasibility float64) bool
	class   models.RecommendationClass
}

// classificationRules is evaluated in declaration order; the first match wins.
// The ranges overlap, so the order is load-bearing: impact=80, feasibility=60
// satisfies both the quick-win and high-leverage predicates and must classify
// as quick win because that rule is checked first.
var classificationRules = []classificationRule{
	{
		matches: func(impact, feasibility float64) bool { return impact >= 70 && feasibility >= 60 },
		class:   models.RecommendationQuickWin,
	},
	{
		matches: func(impact, feasibility float64) bool { return impact >= 80 && feasibility < 60 },
		class:   models.RecommendationHighLeverage,
	},
	{
		matches: func(impact, feasibility float64) bool { return impact >= 60 && feasibility >= 40 },
		class:   models.RecommendationStrategic,
	},
}

// Classify maps an (impact, feasibility) pair to a recommendation class.
// Pure total function: every input yields a class, falling through to
// Evaluate when no rule matches.
func Classify(impact, feasibility float64) models.RecommendationClass {
	for _, rule := range classificationRules {
		if rule.matches(impact, feasibility) {
			return rule.class
		}
	}

	return models.RecommendationEvaluate
}
