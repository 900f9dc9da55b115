package matching

import (
	"strings"

	"github.com/zulandar/swapyard/internal/models"
)

// BaseValue is the heuristic value of an item in a neutral category.
const BaseValue = 50.0

var categoryMultiplier = map[string]float64{
	"electronics": 1.5,
	"furniture":   1.2,
	"clothing":    1.0,
	"books":       0.8,
}

// EvaluateValue returns item.Value when positive. Otherwise it stores and
// returns BaseValue scaled by the category multiplier (1.0 when unknown).
func EvaluateValue(item *models.Item) float64 {
	if item.Value > 0 {
		return item.Value
	}
	m, ok := categoryMultiplier[strings.ToLower(item.Category)]
	if !ok {
		m = 1.0
	}
	item.Value = BaseValue * m
	return item.Value
}
