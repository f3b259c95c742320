package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ItsHariii/EmoryHacks/models"
)

const spoonacularBaseURL = "https://api.spoonacular.com"

// SpoonacularProduct is one hit from the grocery-product search endpoint.
type SpoonacularProduct struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type productSearchResponse struct {
	Products []SpoonacularProduct `json:"products"`
}

// SpoonacularIngredientHit is one hit from the ingredient search endpoint.
type SpoonacularIngredientHit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ingredientSearchResponse struct {
	Results []SpoonacularIngredientHit `json:"results"`
}

// SpoonacularNutrient is one entry of a nutrition block.
type SpoonacularNutrient struct {
	Name                string   `json:"name"`
	Amount              float64  `json:"amount"`
	Unit                string   `json:"unit"`
	PercentOfDailyNeeds *float64 `json:"percentOfDailyNeeds"`
}

// SpoonacularNutrition is the nutrition block shared by the product and
// ingredient detail endpoints.
type SpoonacularNutrition struct {
	Nutrients   []SpoonacularNutrient `json:"nutrients"`
	Ingredients []struct {
		Name string `json:"name"`
	} `json:"ingredients"`
}

// SpoonacularProductInfo is the product detail payload.
type SpoonacularProductInfo struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Brand          string   `json:"brand"`
	Aisle          string   `json:"aisle"`
	GeneratedText  string   `json:"generatedText"`
	IngredientList string   `json:"ingredientList"`
	Badges         []string `json:"badges"`
	Servings       struct {
		Size float64 `json:"size"`
		Unit string  `json:"unit"`
	} `json:"servings"`
	Nutrition SpoonacularNutrition `json:"nutrition"`
}

// SpoonacularIngredientInfo is the ingredient detail payload (per the
// requested amount/unit, which the pipeline always fixes at 100g).
type SpoonacularIngredientInfo struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Original     string               `json:"original"`
	CategoryPath []string             `json:"categoryPath"`
	Nutrition    SpoonacularNutrition `json:"nutrition"`
}

// SpoonacularService is the grocery/recipe source client.
type SpoonacularService struct {
	apiKey string
	client *apiClient
	logger *zap.Logger
}

func NewSpoonacularService(apiKey string, httpClient *http.Client, limiter *RateLimiter, logger *zap.Logger) *SpoonacularService {
	return &SpoonacularService{
		apiKey: apiKey,
		client: newAPIClient(httpClient, limiter, "spoonacular", logger),
		logger: logger,
	}
}

// SearchProducts searches packaged grocery products.
func (s *SpoonacularService) SearchProducts(ctx context.Context, query string, limit int) ([]SpoonacularProduct, error) {
	u := fmt.Sprintf("%s/food/products/search?apiKey=%s&query=%s&number=%d",
		spoonacularBaseURL, s.apiKey, url.QueryEscape(query), limit)

	var resp productSearchResponse
	if err := s.client.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("spoonacular product search for %q: %w", query, err)
	}
	return resp.Products, nil
}

// SearchIngredients searches raw ingredients, trying both singular and
// plural forms and ranking exact and basic matches first.
func (s *SpoonacularService) SearchIngredients(ctx context.Context, query string, limit int) ([]SpoonacularIngredientHit, error) {
	queries := []string{query}
	if !strings.HasSuffix(query, "s") {
		queries = append(queries, query+"s")
	} else if len(query) > 3 {
		queries = append(queries, strings.TrimSuffix(query, "s"))
	}

	var all []SpoonacularIngredientHit
	seen := make(map[int64]bool)
	var lastErr error

	for _, q := range queries {
		u := fmt.Sprintf("%s/food/ingredients/search?apiKey=%s&query=%s&number=%d&sort=calories&sortDirection=desc",
			spoonacularBaseURL, s.apiKey, url.QueryEscape(q), limit)

		var resp ingredientSearchResponse
		if err := s.client.getJSON(ctx, u, &resp); err != nil {
			s.logger.Error("spoonacular ingredient search failed",
				zap.String("query", q), zap.Error(err))
			lastErr = err
			continue
		}
		for _, hit := range resp.Results {
			if !seen[hit.ID] {
				seen[hit.ID] = true
				all = append(all, hit)
			}
		}
	}
	if len(all) == 0 && lastErr != nil {
		return nil, fmt.Errorf("spoonacular ingredient search for %q: %w", query, lastErr)
	}

	sortIngredientHits(all, query)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// sortIngredientHits ranks exact matches, then singular/plural matches,
// then plain short names, ahead of processed variants.
func sortIngredientHits(hits []SpoonacularIngredientHit, query string) {
	q := strings.ToLower(query)
	priority := func(name string) int {
		name = strings.ToLower(name)
		switch {
		case name == q:
			return 0
		case name == q+"s" || name+"s" == q:
			return 1
		case len(strings.Fields(name)) <= 2 && !containsAny(name, "dried", "canned", "frozen", "juice", "sauce", "butter", "pie", "jelly", "jam"):
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return priority(hits[i].Name) < priority(hits[j].Name)
	})
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// GetProductInformation fetches product detail. The product endpoint often
// lacks usable nutrition, so it backfills from the ingredient endpoint when
// every key nutrient is zero.
func (s *SpoonacularService) GetProductInformation(ctx context.Context, productID int64) (*SpoonacularProductInfo, error) {
	u := fmt.Sprintf("%s/food/products/%d?apiKey=%s", spoonacularBaseURL, productID, s.apiKey)

	var info SpoonacularProductInfo
	if err := s.client.getJSON(ctx, u, &info); err != nil {
		return nil, fmt.Errorf("spoonacular product %d: %w", productID, err)
	}

	if !hasMeaningfulNutrition(info.Nutrition) {
		s.logger.Info("product endpoint returned no usable nutrition, trying ingredient endpoint",
			zap.Int64("product_id", productID))
		if ing, err := s.GetIngredientInformation(ctx, productID, 100, "g"); err == nil && hasMeaningfulNutrition(ing.Nutrition) {
			info.Nutrition = ing.Nutrition
		}
	}
	return &info, nil
}

func hasMeaningfulNutrition(n SpoonacularNutrition) bool {
	for _, nutrient := range n.Nutrients {
		name := strings.ToLower(nutrient.Name)
		if nutrient.Amount > 0 && containsAny(name, "calorie", "carbohydrate", "sugar", "protein", "fat") {
			return true
		}
	}
	return false
}

// GetIngredientInformation fetches ingredient detail scaled to the given
// amount and unit.
func (s *SpoonacularService) GetIngredientInformation(ctx context.Context, ingredientID int64, amount float64, unit string) (*SpoonacularIngredientInfo, error) {
	u := fmt.Sprintf("%s/food/ingredients/%d/information?apiKey=%s&amount=%g&unit=%s",
		spoonacularBaseURL, ingredientID, s.apiKey, amount, url.QueryEscape(unit))

	var info SpoonacularIngredientInfo
	if err := s.client.getJSON(ctx, u, &info); err != nil {
		return nil, fmt.Errorf("spoonacular ingredient %d: %w", ingredientID, err)
	}
	return &info, nil
}

// ToFood translates a product detail payload into the canonical Food shape.
// This is the single point where grocery-source schema drift is absorbed.
func (p *SpoonacularProductInfo) ToFood() *models.Food {
	food := &models.Food{
		Name:          firstNonEmpty(p.Title, "Unknown Food"),
		Source:        models.SourceSpoonacular,
		SpoonacularID: ptr(p.ID),
		ServingSize:   100,
		ServingUnit:   "g",
	}
	if p.GeneratedText != "" {
		food.Description = ptr(p.GeneratedText)
	}
	if p.Aisle != "" {
		food.Category = ptr(p.Aisle)
	}
	if p.Brand != "" {
		food.Brand = ptr(p.Brand)
	}
	if p.Servings.Size > 0 && p.Servings.Unit != "" {
		food.ServingSize = p.Servings.Size
		food.ServingUnit = p.Servings.Unit
	}
	list := ParseIngredientList(p.IngredientList)
	if len(list) == 0 {
		// Some products carry ingredient names only inside the nutrition
		// block.
		for _, ing := range p.Nutrition.Ingredients {
			if ing.Name != "" {
				list = append(list, ing.Name)
			}
		}
	}
	if len(list) > 0 {
		food.Ingredients = datatypes.JSONSlice[string](list)
	}
	applyNutrition(food, p.Nutrition)
	return food
}

// ToFood translates an ingredient detail payload (requested per 100g) into
// the canonical Food shape.
func (i *SpoonacularIngredientInfo) ToFood() *models.Food {
	food := &models.Food{
		Name:          firstNonEmpty(i.Name, "Unknown Food"),
		Source:        models.SourceSpoonacular,
		SpoonacularID: ptr(i.ID),
		ServingSize:   100,
		ServingUnit:   "g",
	}
	if i.Original != "" {
		food.Description = ptr(i.Original)
	}
	if len(i.CategoryPath) > 0 {
		food.Category = ptr(i.CategoryPath[0])
	}
	applyNutrition(food, i.Nutrition)
	return food
}

// ToIngredient translates the same payload into a per-100g Ingredient
// record.
func (i *SpoonacularIngredientInfo) ToIngredient() *models.Ingredient {
	food := i.ToFood()
	ing := &models.Ingredient{
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
		SpoonacularID:  food.SpoonacularID,
		Source:         models.SourceSpoonacular,
	}
	return ing
}

// applyNutrition maps a spoonacular nutrient block onto the canonical macro
// columns and the micronutrient map.
func applyNutrition(food *models.Food, nutrition SpoonacularNutrition) {
	micros := make(map[string]models.Nutrient, len(nutrition.Nutrients))
	for _, nutrient := range nutrition.Nutrients {
		name := strings.ToLower(nutrient.Name)
		key := strings.ReplaceAll(name, " ", "_")
		micros[key] = models.Nutrient{
			Amount:            nutrient.Amount,
			Unit:              nutrient.Unit,
			PercentDailyValue: nutrient.PercentOfDailyNeeds,
		}

		switch {
		case strings.Contains(name, "calories") || strings.Contains(name, "energy"):
			food.Calories = nutrient.Amount
		case strings.Contains(name, "protein"):
			food.Protein = nutrient.Amount
		case strings.Contains(name, "carbohydrates") || strings.Contains(name, "carbs"):
			food.Carbs = nutrient.Amount
		case strings.Contains(name, "fat") && !strings.Contains(name, "saturated"):
			food.Fat = nutrient.Amount
		case strings.Contains(name, "fiber"):
			food.Fiber = ptr(nutrient.Amount)
		case strings.Contains(name, "sugar"):
			food.Sugar = ptr(nutrient.Amount)
		case strings.Contains(name, "sodium"):
			food.Sodium = ptr(nutrient.Amount)
		}
	}
	if len(micros) > 0 {
		food.Micronutrients = datatypes.NewJSONType(micros)
	}
}

// ParseIngredientList splits a packaged product's free-text ingredient list
// on commas and semicolons.
func ParseIngredientList(list string) []string {
	if list == "" {
		return nil
	}
	var out []string
	for _, part := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ';' }) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func ptr[T any](v T) *T { return &v }
