package services

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ItsHariii/EmoryHacks/models"
)

// unitGrams converts common household measures to grams. Volume units
// assume water density, which is close enough for logging purposes.
var unitGrams = map[string]float64{
	"g":           1,
	"gram":        1,
	"grams":       1,
	"ml":          1,
	"milliliter":  1,
	"milliliters": 1,
	"cup":         240,
	"cups":        240,
	"tbsp":        15,
	"tablespoon":  15,
	"tablespoons": 15,
	"tsp":         5,
	"teaspoon":    5,
	"teaspoons":   5,
	"oz":          28.35,
	"ounce":       28.35,
	"ounces":      28.35,
	"lb":          453.59,
	"pound":       453.59,
	"pounds":      453.59,
}

// ConsumedNutrition is the scaled nutrition snapshot frozen into a log
// entry at creation time.
type ConsumedNutrition struct {
	CaloriesLogged  float64            `json:"calories_logged"`
	NutrientsLogged map[string]float64 `json:"nutrients_logged"`
	ServingSizeUsed float64            `json:"serving_size_used"`
	ServingUnitUsed string             `json:"serving_unit_used"`
	Multiplier      float64            `json:"multiplier"`
}

// NutritionCalculator scales a food's base nutrition to the serving a user
// actually ate. It never fails a log write: any fault degrades to a zeroed
// snapshot.
type NutritionCalculator struct {
	logger *zap.Logger
}

func NewNutritionCalculator(logger *zap.Logger) *NutritionCalculator {
	return &NutritionCalculator{logger: logger}
}

// CalculateConsumedNutrition computes the frozen snapshot for a log entry.
// servingSize and servingUnit default to the food's own serving when nil,
// and quantity multiplies whatever serving was chosen.
func (nc *NutritionCalculator) CalculateConsumedNutrition(food *models.Food, servingSize *float64, servingUnit *string, quantity float64) ConsumedNutrition {
	if food == nil {
		nc.logger.Error("consumed nutrition requested for nil food")
		return zeroSnapshot(servingSize, servingUnit)
	}
	if quantity <= 0 {
		quantity = 1
	}

	size := food.ServingSize
	if servingSize != nil && *servingSize > 0 {
		size = *servingSize
	}
	unit := food.ServingUnit
	if servingUnit != nil && *servingUnit != "" {
		unit = *servingUnit
	}

	multiplier := nc.servingMultiplier(food, size, unit) * quantity

	nutrients := map[string]float64{
		"protein": round1(food.Protein * multiplier),
		"carbs":   round1(food.Carbs * multiplier),
		"fat":     round1(food.Fat * multiplier),
	}
	if food.Fiber != nil {
		nutrients["fiber"] = round1(*food.Fiber * multiplier)
	}
	if food.Sugar != nil {
		nutrients["sugar"] = round1(*food.Sugar * multiplier)
	}
	if food.Sodium != nil {
		nutrients["sodium"] = round1(*food.Sodium * multiplier)
	}
	for key, nutrient := range food.MicronutrientMap() {
		if key == "calories" {
			continue
		}
		nutrients[key] = round1(nutrient.Amount * multiplier)
	}

	return ConsumedNutrition{
		CaloriesLogged:  round1(food.Calories * multiplier),
		NutrientsLogged: nutrients,
		ServingSizeUsed: size,
		ServingUnitUsed: unit,
		Multiplier:      multiplier,
	}
}

// servingMultiplier converts the consumed serving into a ratio against the
// food's base serving by normalizing both to grams.
func (nc *NutritionCalculator) servingMultiplier(food *models.Food, size float64, unit string) float64 {
	normalizedUnit := strings.ToLower(strings.TrimSpace(unit))

	// "serving" means multiples of the food's own base serving.
	if normalizedUnit == "serving" || normalizedUnit == "servings" {
		return size
	}

	baseGrams := food.ServingSize * gramsPerUnit(food.ServingUnit, nc.logger, food.Name)
	if baseGrams <= 0 {
		// A zero base serving would divide to infinity. Substitute the
		// conventional 100g reference and flag the record.
		nc.logger.Warn("food has zero base serving size, assuming 100g",
			zap.String("food", food.Name), zap.String("food_id", food.ID))
		baseGrams = 100
	}

	consumedGrams := size * gramsPerUnit(normalizedUnit, nc.logger, food.Name)
	return consumedGrams / baseGrams
}

func gramsPerUnit(unit string, logger *zap.Logger, foodName string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(unit))
	if factor, ok := unitGrams[normalized]; ok {
		return factor
	}
	// Unknown units (like "slice" or "piece") pass through unchanged so the
	// serving size is taken at face value.
	if normalized != "" && normalized != "serving" && normalized != "servings" {
		logger.Debug("unknown serving unit, using factor 1.0",
			zap.String("unit", unit), zap.String("food", foodName))
	}
	return 1
}

func zeroSnapshot(servingSize *float64, servingUnit *string) ConsumedNutrition {
	size := 0.0
	if servingSize != nil {
		size = *servingSize
	}
	unit := ""
	if servingUnit != nil {
		unit = *servingUnit
	}
	return ConsumedNutrition{
		NutrientsLogged: map[string]float64{},
		ServingSizeUsed: size,
		ServingUnitUsed: unit,
	}
}

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}
