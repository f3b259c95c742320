package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ItsHariii/EmoryHacks/models"
)

// fakeGrocery is a scripted grocerySource.
type fakeGrocery struct {
	products       []SpoonacularProduct
	productInfo    *SpoonacularProductInfo
	ingredients    []SpoonacularIngredientHit
	ingredientInfo *SpoonacularIngredientInfo
	err            error

	searchCalls int
}

func (f *fakeGrocery) SearchProducts(_ context.Context, _ string, _ int) ([]SpoonacularProduct, error) {
	f.searchCalls++
	return f.products, f.err
}

func (f *fakeGrocery) SearchIngredients(_ context.Context, _ string, _ int) ([]SpoonacularIngredientHit, error) {
	f.searchCalls++
	return f.ingredients, f.err
}

func (f *fakeGrocery) GetProductInformation(_ context.Context, _ int64) (*SpoonacularProductInfo, error) {
	return f.productInfo, f.err
}

func (f *fakeGrocery) GetIngredientInformation(_ context.Context, _ int64, _ float64, _ string) (*SpoonacularIngredientInfo, error) {
	return f.ingredientInfo, f.err
}

// fakeGovernment is a scripted governmentSource.
type fakeGovernment struct {
	foods  []USDAFood
	detail *USDAFoodDetail
	err    error

	searchCalls int
}

func (f *fakeGovernment) SearchFoods(_ context.Context, _ string, _ int) ([]USDAFood, error) {
	f.searchCalls++
	return f.foods, f.err
}

func (f *fakeGovernment) GetFoodDetails(_ context.Context, _ int64) (*USDAFoodDetail, error) {
	return f.detail, f.err
}

func newTestFoodService(t *testing.T, grocery grocerySource, government governmentSource) (*FoodService, *gorm.DB) {
	db := newTestDB(t)
	logger := zap.NewNop()
	return NewFoodService(db, NewCacheService(db, logger), NewSafetyService(logger),
		NewQueryClassifier(), grocery, government, logger), db
}

func bananaDetail() *USDAFoodDetail {
	detail := &USDAFoodDetail{FdcID: 1102653, Description: "BANANA"}
	nutrient := USDAFoodNutrient{Amount: 89}
	nutrient.Nutrient.ID = 1008
	nutrient.Nutrient.Name = "Energy"
	nutrient.Nutrient.UnitName = "kcal"
	detail.FoodNutrients = append(detail.FoodNutrients, nutrient)
	return detail
}

func TestResolveIngredientPrefersGovernmentSource(t *testing.T) {
	grocery := &fakeGrocery{}
	government := &fakeGovernment{
		foods:  []USDAFood{{FdcID: 1102653, Description: "BANANA"}},
		detail: bananaDetail(),
	}
	svc, db := newTestFoodService(t, grocery, government)

	food, err := svc.Resolve(context.Background(), "banana", false)
	require.NoError(t, err)
	require.NotNil(t, food)

	assert.Equal(t, "Banana", food.Name)
	assert.Equal(t, models.SourceUSDA, food.Source)
	assert.Equal(t, 89.0, food.Calories)
	assert.Equal(t, models.SafetySafe, food.SafetyStatus)
	assert.Equal(t, 1, government.searchCalls)
	assert.Equal(t, 0, grocery.searchCalls)

	// The per-100g ingredient record is mirrored alongside the food,
	// carrying the source payload's nutrition and external id.
	var ingredient models.Ingredient
	require.NoError(t, db.Where("LOWER(name) = ?", "banana").First(&ingredient).Error)
	require.NotNil(t, ingredient.Calories)
	assert.Equal(t, 89.0, *ingredient.Calories)
	require.NotNil(t, ingredient.FdcID)
	assert.Equal(t, int64(1102653), *ingredient.FdcID)
	assert.Equal(t, models.SourceUSDA, ingredient.Source)
}

func TestResolveSecondQueryServedFromCache(t *testing.T) {
	government := &fakeGovernment{
		foods:  []USDAFood{{FdcID: 1102653, Description: "BANANA"}},
		detail: bananaDetail(),
	}
	svc, _ := newTestFoodService(t, &fakeGrocery{}, government)

	first, err := svc.Resolve(context.Background(), "banana", false)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, 1, government.searchCalls)

	second, err := svc.Resolve(context.Background(), "banana", false)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, government.searchCalls, "cached result should not hit external sources")
}

func TestResolveForceRefreshBypassesCache(t *testing.T) {
	government := &fakeGovernment{
		foods:  []USDAFood{{FdcID: 1102653, Description: "BANANA"}},
		detail: bananaDetail(),
	}
	svc, _ := newTestFoodService(t, &fakeGrocery{}, government)

	_, err := svc.Resolve(context.Background(), "banana", false)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), "banana", true)
	require.NoError(t, err)
	assert.Equal(t, 2, government.searchCalls)
}

func TestResolveProductPrefersGrocerySource(t *testing.T) {
	grocery := &fakeGrocery{
		products: []SpoonacularProduct{{ID: 99, Title: "Oreo Cookies"}},
		productInfo: &SpoonacularProductInfo{
			ID: 99, Title: "Oreo Cookies", Brand: "Nabisco",
			IngredientList: "sugar, wheat flour, palm oil",
		},
	}
	government := &fakeGovernment{}
	svc, _ := newTestFoodService(t, grocery, government)

	food, err := svc.Resolve(context.Background(), "oreo cookies", false)
	require.NoError(t, err)
	require.NotNil(t, food)

	assert.Equal(t, models.SourceSpoonacular, food.Source)
	assert.Equal(t, 0, government.searchCalls)
	assert.Contains(t, []string(food.Allergens), "wheat")
}

func TestResolveFallsBackWhenPreferredSourceEmpty(t *testing.T) {
	grocery := &fakeGrocery{
		ingredients:    []SpoonacularIngredientHit{{ID: 11, Name: "kumquat"}},
		ingredientInfo: &SpoonacularIngredientInfo{ID: 11, Name: "kumquat"},
	}
	government := &fakeGovernment{} // no results
	svc, db := newTestFoodService(t, grocery, government)

	food, err := svc.Resolve(context.Background(), "fresh kumquat", false)
	require.NoError(t, err)
	require.NotNil(t, food)
	assert.Equal(t, models.SourceSpoonacular, food.Source)
	assert.Equal(t, 1, government.searchCalls)

	// The grocery ingredient payload is mirrored too.
	var ingredient models.Ingredient
	require.NoError(t, db.Where("LOWER(name) = ?", "kumquat").First(&ingredient).Error)
	require.NotNil(t, ingredient.SpoonacularID)
	assert.Equal(t, int64(11), *ingredient.SpoonacularID)
}

func TestResolveNotFoundReturnsNilNil(t *testing.T) {
	svc, _ := newTestFoodService(t, &fakeGrocery{}, &fakeGovernment{})

	food, err := svc.Resolve(context.Background(), "no such food anywhere", false)
	assert.NoError(t, err)
	assert.Nil(t, food)
}

func TestResolveAllSourcesFailing(t *testing.T) {
	boom := errors.New("connection refused")
	svc, _ := newTestFoodService(t, &fakeGrocery{err: boom}, &fakeGovernment{err: boom})

	food, err := svc.Resolve(context.Background(), "banana", false)
	assert.Nil(t, food)
	assert.ErrorIs(t, err, ErrSourcesUnavailable)
}

func TestResolveEmptyQuery(t *testing.T) {
	svc, _ := newTestFoodService(t, &fakeGrocery{}, &fakeGovernment{})

	food, err := svc.Resolve(context.Background(), "   ", false)
	assert.NoError(t, err)
	assert.Nil(t, food)
}

func TestCreateManualFoodRunsSafetyAnalysis(t *testing.T) {
	svc, _ := newTestFoodService(t, &fakeGrocery{}, &fakeGovernment{})

	food, err := svc.CreateManualFood(&models.Food{
		Name: "Homemade Sushi", ServingSize: 200, ServingUnit: "g", Calories: 350,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SourceManual, food.Source)
	assert.Equal(t, models.SafetyAvoid, food.SafetyStatus)
}
