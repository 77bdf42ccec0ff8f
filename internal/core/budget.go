package core

import "math"

// BudgetStatus classifies spending against the user's ceiling.
type BudgetStatus string

const (
	WithinBudget BudgetStatus = "within-budget"
	Warning      BudgetStatus = "warning"
	OverBudget   BudgetStatus = "over-budget"
)

// BudgetReport compares an aggregated monthly total to a ceiling.
type BudgetReport struct {
	UsagePercent float64
	Remaining    float64
	Status       BudgetStatus
}

// EvaluateBudget is defined for every pair of non-negative inputs,
// including a zero ceiling: spending against no budget reports +Inf
// usage rather than dividing by zero. Remaining may go negative.
func EvaluateBudget(totalMonthly, ceiling float64) BudgetReport {
	var usage float64
	switch {
	case ceiling > 0:
		usage = totalMonthly / ceiling * 100
	case totalMonthly > 0:
		usage = math.Inf(1)
	}

	status := WithinBudget
	switch {
	case usage >= 100:
		status = OverBudget
	case usage >= 80:
		status = Warning
	}

	return BudgetReport{
		UsagePercent: usage,
		Remaining:    ceiling - totalMonthly,
		Status:       status,
	}
}
