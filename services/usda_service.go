package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ItsHariii/EmoryHacks/models"
)

const usdaBaseURL = "https://api.nal.usda.gov/fdc/v1"

// USDAFood is one hit from the FoodData Central search endpoint.
type USDAFood struct {
	FdcID       int64  `json:"fdcId"`
	Description string `json:"description"`
	BrandOwner  string `json:"brandOwner"`
	DataType    string `json:"dataType"`
}

type usdaSearchResponse struct {
	Foods []USDAFood `json:"foods"`
}

// USDAFoodNutrient is one entry of a food's nutrient list.
type USDAFoodNutrient struct {
	Nutrient struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		UnitName string `json:"unitName"`
	} `json:"nutrient"`
	Amount            float64  `json:"amount"`
	PercentDailyValue *float64 `json:"percentDailyValue"`
}

// USDAFoodDetail is the detail payload for a single FDC id.
type USDAFoodDetail struct {
	FdcID         int64              `json:"fdcId"`
	Description   string             `json:"description"`
	BrandOwner    string             `json:"brandOwner"`
	BrandName     string             `json:"brandName"`
	Ingredients   string             `json:"ingredients"`
	FoodNutrients []USDAFoodNutrient `json:"foodNutrients"`
	FoodCategory  struct {
		Description string `json:"description"`
	} `json:"foodCategory"`
}

// usdaNutrientKeys maps FoodData Central nutrient ids to the canonical
// nutrient keys the aggregator reads.
var usdaNutrientKeys = map[int64]string{
	1008: "calories",  // Energy (kcal)
	1003: "protein",   // Protein
	1005: "carbs",     // Carbohydrate, by difference
	1004: "fat",       // Total lipid (fat)
	1079: "fiber",     // Fiber, total dietary
	2000: "sugar",     // Sugars, total
	1093: "sodium",    // Sodium, Na
	1087: "calcium",   // Calcium, Ca
	1089: "iron",      // Iron, Fe
	1106: "vitamin_a", // Vitamin A, RAE
	1162: "vitamin_c", // Vitamin C, total ascorbic acid
	1114: "vitamin_d", // Vitamin D (D2 + D3)
	1177: "folate",    // Folate, total
}

// USDAService is the government nutrient source client. A missing API key
// makes the source unavailable: searches return empty results rather than
// errors.
type USDAService struct {
	apiKey string
	client *apiClient
	logger *zap.Logger
}

func NewUSDAService(apiKey string, httpClient *http.Client, limiter *RateLimiter, logger *zap.Logger) *USDAService {
	return &USDAService{
		apiKey: apiKey,
		client: newAPIClient(httpClient, limiter, "usda", logger),
		logger: logger,
	}
}

// SearchFoods searches FoodData Central across survey and branded foods.
func (s *USDAService) SearchFoods(ctx context.Context, query string, pageSize int) ([]USDAFood, error) {
	if s.apiKey == "" {
		s.logger.Warn("USDA_API_KEY not configured")
		return nil, nil
	}
	if pageSize > 200 {
		pageSize = 200
	}

	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("query", query)
	params.Set("pageSize", fmt.Sprintf("%d", pageSize))
	params.Add("dataType", "Survey (FNDDS)")
	params.Add("dataType", "Branded")

	var resp usdaSearchResponse
	u := fmt.Sprintf("%s/foods/search?%s", usdaBaseURL, params.Encode())
	if err := s.client.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("usda search for %q: %w", query, err)
	}
	s.logger.Info("usda search results", zap.String("query", query), zap.Int("count", len(resp.Foods)))
	return resp.Foods, nil
}

// GetFoodDetails fetches the full record for one FDC id.
func (s *USDAService) GetFoodDetails(ctx context.Context, fdcID int64) (*USDAFoodDetail, error) {
	if s.apiKey == "" {
		s.logger.Warn("USDA_API_KEY not configured")
		return nil, nil
	}

	var detail USDAFoodDetail
	u := fmt.Sprintf("%s/food/%d?api_key=%s", usdaBaseURL, fdcID, s.apiKey)
	if err := s.client.getJSON(ctx, u, &detail); err != nil {
		return nil, fmt.Errorf("usda food %d: %w", fdcID, err)
	}
	return &detail, nil
}

// ToFood translates a USDA detail payload into the canonical Food shape.
// USDA nutrition is per 100g, so the base serving is fixed at 100g.
func (d *USDAFoodDetail) ToFood() *models.Food {
	food := &models.Food{
		Name:        capitalize(firstNonEmpty(d.Description, "Unknown Food")),
		Source:      models.SourceUSDA,
		FdcID:       ptr(d.FdcID),
		ServingSize: 100,
		ServingUnit: "g",
	}
	if brand := firstNonEmpty(d.BrandOwner, d.BrandName); brand != "" {
		food.Brand = ptr(brand)
	}
	if d.FoodCategory.Description != "" {
		food.Category = ptr(d.FoodCategory.Description)
	}
	if d.Ingredients != "" {
		food.Description = ptr(d.Ingredients)
		food.Ingredients = datatypes.JSONSlice[string](ParseIngredientList(d.Ingredients))
	}

	micros := make(map[string]models.Nutrient, len(d.FoodNutrients))
	for _, nutrient := range d.FoodNutrients {
		name := strings.ToLower(nutrient.Nutrient.Name)
		if name == "" {
			continue
		}
		key, known := usdaNutrientKeys[nutrient.Nutrient.ID]
		if !known {
			key = strings.ReplaceAll(name, " ", "_")
		}
		micros[key] = models.Nutrient{
			Amount:            nutrient.Amount,
			Unit:              nutrient.Nutrient.UnitName,
			PercentDailyValue: nutrient.PercentDailyValue,
		}

		switch key {
		case "calories":
			food.Calories = nutrient.Amount
		case "protein":
			food.Protein = nutrient.Amount
		case "carbs":
			food.Carbs = nutrient.Amount
		case "fat":
			food.Fat = nutrient.Amount
		case "fiber":
			food.Fiber = ptr(nutrient.Amount)
		case "sugar":
			food.Sugar = ptr(nutrient.Amount)
		case "sodium":
			food.Sodium = ptr(nutrient.Amount)
		}
	}
	if len(micros) > 0 {
		food.Micronutrients = datatypes.NewJSONType(micros)
	}
	return food
}

// ToIngredient translates the same payload into a per-100g Ingredient
// record.
func (d *USDAFoodDetail) ToIngredient() *models.Ingredient {
	food := d.ToFood()
	return &models.Ingredient{
		Name:           food.Name,
		Description:    food.Description,
		Category:       food.Category,
		Calories:       ptr(food.Calories),
		Protein:        ptr(food.Protein),
		Carbs:          ptr(food.Carbs),
		Fat:            ptr(food.Fat),
		Fiber:          food.Fiber,
		Sugar:          food.Sugar,
		Sodium:         food.Sodium,
		Micronutrients: food.Micronutrients,
		FdcID:          food.FdcID,
		Source:         models.SourceUSDA,
	}
}

// capitalize upper-cases the first rune and lower-cases the rest, matching
// USDA's all-caps descriptions to a display name.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
