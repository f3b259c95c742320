package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ItsHariii/EmoryHacks/models"
)

func testFood() *models.Food {
	return &models.Food{
		Name:        "Banana",
		ServingSize: 118,
		ServingUnit: "g",
		Calories:    105,
		Protein:     1.3,
		Carbs:       27,
		Fat:         0.4,
		Fiber:       ptr(3.1),
		Micronutrients: datatypes.NewJSONType(map[string]models.Nutrient{
			"potassium": {Amount: 422, Unit: "mg"},
		}),
	}
}

func TestCalculateConsumedNutritionServings(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())

	result := calc.CalculateConsumedNutrition(testFood(), ptr(2.0), ptr("serving"), 1)

	assert.Equal(t, 2.0, result.Multiplier)
	assert.Equal(t, 210.0, result.CaloriesLogged)
	assert.Equal(t, 2.6, result.NutrientsLogged["protein"])
	assert.Equal(t, 54.0, result.NutrientsLogged["carbs"])
	assert.Equal(t, 6.2, result.NutrientsLogged["fiber"])
	assert.Equal(t, 844.0, result.NutrientsLogged["potassium"])
}

func TestCalculateConsumedNutritionGramRatio(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())

	result := calc.CalculateConsumedNutrition(testFood(), ptr(59.0), ptr("g"), 1)

	assert.Equal(t, 0.5, result.Multiplier)
	assert.Equal(t, 52.5, result.CaloriesLogged)
}

func TestCalculateConsumedNutritionCupConversion(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())
	food := testFood()
	food.ServingSize = 100
	food.Calories = 50

	result := calc.CalculateConsumedNutrition(food, ptr(1.0), ptr("cup"), 1)

	assert.Equal(t, 2.4, result.Multiplier)
	assert.Equal(t, 120.0, result.CaloriesLogged)
}

func TestCalculateConsumedNutritionFullWordUnits(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())
	food := testFood()
	food.ServingSize = 100
	food.Calories = 200

	cases := []struct {
		size       float64
		unit       string
		multiplier float64
		calories   float64
	}{
		{1, "tablespoon", 0.15, 30.0},
		{2, "teaspoons", 0.1, 20.0},
		{1, "milliliters", 0.01, 2.0},
		{1, "ounces", 0.2835, 56.7},
		{1, "pounds", 4.5359, 907.2},
	}
	for _, tc := range cases {
		result := calc.CalculateConsumedNutrition(food, ptr(tc.size), ptr(tc.unit), 1)
		assert.InDelta(t, tc.multiplier, result.Multiplier, 0.0001, "unit %q", tc.unit)
		assert.Equal(t, tc.calories, result.CaloriesLogged, "unit %q", tc.unit)
	}
}

func TestCalculateConsumedNutritionQuantityMultiplies(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())

	result := calc.CalculateConsumedNutrition(testFood(), nil, nil, 3)

	assert.Equal(t, 3.0, result.Multiplier)
	assert.Equal(t, 315.0, result.CaloriesLogged)
	assert.Equal(t, 118.0, result.ServingSizeUsed)
	assert.Equal(t, "g", result.ServingUnitUsed)
}

func TestCalculateConsumedNutritionZeroBaseServing(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())
	food := testFood()
	food.ServingSize = 0

	// A zero base serving is substituted with 100g rather than dividing
	// by zero.
	result := calc.CalculateConsumedNutrition(food, ptr(100.0), ptr("g"), 1)

	assert.Equal(t, 1.0, result.Multiplier)
	assert.Equal(t, 105.0, result.CaloriesLogged)
}

func TestCalculateConsumedNutritionUnknownUnit(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())
	food := testFood()
	food.ServingSize = 1
	food.ServingUnit = "slice"
	food.Calories = 80

	result := calc.CalculateConsumedNutrition(food, ptr(2.0), ptr("slice"), 1)

	assert.Equal(t, 2.0, result.Multiplier)
	assert.Equal(t, 160.0, result.CaloriesLogged)
}

func TestCalculateConsumedNutritionNilFood(t *testing.T) {
	calc := NewNutritionCalculator(zap.NewNop())

	result := calc.CalculateConsumedNutrition(nil, ptr(100.0), ptr("g"), 1)

	assert.Equal(t, 0.0, result.CaloriesLogged)
	assert.NotNil(t, result.NutrientsLogged)
	assert.Empty(t, result.NutrientsLogged)
}
