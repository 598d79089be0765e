package ai

import (
	"encoding/json"

	"executive-analytics/models"
)

// DefaultContextBudget is the number of characters of KPI context sent with a query.
const DefaultContextBudget = 2000

// BuildContext serializes the snapshot as indented JSON and cuts it to at
// most budget characters. A non-positive budget uses DefaultContextBudget.
func BuildContext(snap *models.KpiSnapshot, budget int) string {
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return ""
	}
	runes := []rune(string(data))
	if len(runes) <= budget {
		return string(data)
	}
	return string(runes[:budget])
}
