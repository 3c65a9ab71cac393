package export

import (
	"familybudget/internal/analysis"
	"familybudget/internal/core"
)

var categoryLabels = map[core.Category]string{
	core.Food:      "Food",
	core.Rent:      "Rent",
	core.Transport: "Transport",
	core.Education: "Education",
	core.Health:    "Health",
	core.Leisure:   "Leisure",
	core.Utilities: "Utilities",
	core.Clothing:  "Clothing",
	core.Savings:   "Savings",
	core.Other:     "Other",
}

// CategoryLabel returns the display name of c, or c itself when unknown.
func CategoryLabel(c core.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func goalStateLabel(s analysis.GoalState) string {
	switch s {
	case analysis.GoalExceeded:
		return "Exceeded"
	case analysis.GoalWarning:
		return "Warning"
	default:
		return "OK"
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
