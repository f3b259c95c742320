package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ItsHariii/EmoryHacks/models"
)

// ErrSourcesUnavailable is returned when every external source errored and
// the cache had nothing to offer. Upstream error details stay in the logs;
// callers only ever see this sentinel.
var ErrSourcesUnavailable = errors.New("all food data sources are currently unavailable")

// grocerySource is the packaged-product and recipe-ingredient API surface
// the pipeline depends on.
type grocerySource interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]SpoonacularProduct, error)
	SearchIngredients(ctx context.Context, query string, limit int) ([]SpoonacularIngredientHit, error)
	GetProductInformation(ctx context.Context, productID int64) (*SpoonacularProductInfo, error)
	GetIngredientInformation(ctx context.Context, ingredientID int64, amount float64, unit string) (*SpoonacularIngredientInfo, error)
}

// governmentSource is the government nutrient database API surface.
type governmentSource interface {
	SearchFoods(ctx context.Context, query string, pageSize int) ([]USDAFood, error)
	GetFoodDetails(ctx context.Context, fdcID int64) (*USDAFoodDetail, error)
}

// FoodService resolves free-text food queries through cache, grocery and
// government sources, enriches results with safety analysis and persists
// them for reuse.
type FoodService struct {
	db         *gorm.DB
	cache      *CacheService
	safety     *SafetyService
	classifier *QueryClassifier
	grocery    grocerySource
	government governmentSource
	logger     *zap.Logger
}

func NewFoodService(db *gorm.DB, cache *CacheService, safety *SafetyService, classifier *QueryClassifier, grocery grocerySource, government governmentSource, logger *zap.Logger) *FoodService {
	return &FoodService{
		db:         db,
		cache:      cache,
		safety:     safety,
		classifier: classifier,
		grocery:    grocery,
		government: government,
		logger:     logger,
	}
}

// Resolve turns a free-text query into a persisted food record. Cache is
// consulted first unless forceRefresh is set. Ingredient-classified queries
// prefer the government database for its cleaner whole-food data; product
// queries prefer the grocery source. Either way the other source serves as
// fallback. A nil food with nil error means the query matched nothing
// anywhere.
func (s *FoodService) Resolve(ctx context.Context, query string, forceRefresh bool) (*models.Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if !forceRefresh {
		if cached := s.cache.GetCachedFood(query, nil, nil); cached != nil {
			return cached, nil
		}
	}

	kind := s.classifier.Classify(query)
	s.logger.Info("resolving food query",
		zap.String("query", query), zap.String("kind", string(kind)), zap.Bool("force_refresh", forceRefresh))

	var resolvers []resolverFunc
	if kind == KindIngredient {
		resolvers = []resolverFunc{
			s.resolveGovernment,
			s.resolveGroceryIngredient,
			s.resolveGroceryProduct,
		}
	} else {
		resolvers = []resolverFunc{
			s.resolveGroceryProduct,
			s.resolveGroceryIngredient,
			s.resolveGovernment,
		}
	}

	sourceErrors := 0
	for _, resolve := range resolvers {
		food, ingredient, err := resolve(ctx, query)
		if err != nil {
			sourceErrors++
			continue
		}
		if food == nil {
			continue
		}

		s.analyzeSafety(food)
		cached, err := s.cache.CacheFood(food)
		if err != nil {
			s.logger.Error("failed to cache resolved food", zap.String("name", food.Name), zap.Error(err))
			// Still usable this request even if persistence failed.
			return food, nil
		}
		if kind == KindIngredient && ingredient != nil {
			s.upsertIngredientRecord(ingredient)
		}
		return cached, nil
	}

	if sourceErrors == len(resolvers) && len(resolvers) > 0 {
		return nil, ErrSourcesUnavailable
	}
	s.logger.Info("no food found for query", zap.String("query", query))
	return nil, nil
}

// resolverFunc is one source attempt. Ingredient-shaped payloads also yield
// the per-100g mirror record built by the source adapter.
type resolverFunc func(context.Context, string) (*models.Food, *models.Ingredient, error)

func (s *FoodService) resolveGovernment(ctx context.Context, query string) (*models.Food, *models.Ingredient, error) {
	hits, err := s.government.SearchFoods(ctx, query, 5)
	if err != nil {
		s.logger.Error("government food search failed", zap.String("query", query), zap.Error(err))
		return nil, nil, err
	}
	if len(hits) == 0 {
		return nil, nil, nil
	}

	detail, err := s.government.GetFoodDetails(ctx, hits[0].FdcID)
	if err != nil {
		s.logger.Error("government food detail failed",
			zap.Int64("fdc_id", hits[0].FdcID), zap.Error(err))
		return nil, nil, err
	}
	if detail == nil {
		return nil, nil, nil
	}
	return detail.ToFood(), detail.ToIngredient(), nil
}

func (s *FoodService) resolveGroceryIngredient(ctx context.Context, query string) (*models.Food, *models.Ingredient, error) {
	hits, err := s.grocery.SearchIngredients(ctx, query, 5)
	if err != nil {
		s.logger.Error("grocery ingredient search failed", zap.String("query", query), zap.Error(err))
		return nil, nil, err
	}
	if len(hits) == 0 {
		return nil, nil, nil
	}

	info, err := s.grocery.GetIngredientInformation(ctx, hits[0].ID, 100, "g")
	if err != nil {
		s.logger.Error("grocery ingredient detail failed", zap.Int64("id", hits[0].ID), zap.Error(err))
		return nil, nil, err
	}
	if info == nil {
		return nil, nil, nil
	}
	return info.ToFood(), info.ToIngredient(), nil
}

func (s *FoodService) resolveGroceryProduct(ctx context.Context, query string) (*models.Food, *models.Ingredient, error) {
	hits, err := s.grocery.SearchProducts(ctx, query, 5)
	if err != nil {
		s.logger.Error("grocery product search failed", zap.String("query", query), zap.Error(err))
		return nil, nil, err
	}
	if len(hits) == 0 {
		return nil, nil, nil
	}

	info, err := s.grocery.GetProductInformation(ctx, hits[0].ID)
	if err != nil {
		s.logger.Error("grocery product detail failed", zap.Int64("id", hits[0].ID), zap.Error(err))
		return nil, nil, err
	}
	if info == nil {
		return nil, nil, nil
	}
	return info.ToFood(), nil, nil
}

// analyzeSafety fills in the safety verdict and allergen list. Foods with
// no ingredient list are judged by their own name.
func (s *FoodService) analyzeSafety(food *models.Food) {
	ingredients := []string(food.Ingredients)
	if len(ingredients) == 0 {
		ingredients = []string{food.Name}
	}

	status, notes, _ := s.safety.CheckFoodSafety(ingredients)
	food.SafetyStatus = status
	food.SafetyNotes = ptr(notes)

	if allergens := s.safety.ExtractAllergens(ingredients); len(allergens) > 0 {
		food.Allergens = datatypes.JSONSlice[string](allergens)
	}
}

// upsertIngredientRecord mirrors an adapter-built ingredient payload into
// the reusable per-100g ingredient table. Failures are logged, never
// surfaced; the resolved food is the caller's real result.
func (s *FoodService) upsertIngredientRecord(ingredient *models.Ingredient) {
	var existing models.Ingredient
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(ingredient.Name)).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("ingredient lookup failed", zap.String("name", ingredient.Name), zap.Error(err))
		return
	}

	if err := s.db.Create(ingredient).Error; err != nil {
		s.logger.Error("ingredient upsert failed", zap.String("name", ingredient.Name), zap.Error(err))
	}
}

// GetFoodByID loads a single food record.
func (s *FoodService) GetFoodByID(id string) (*models.Food, error) {
	var food models.Food
	if err := s.db.First(&food, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

// CreateManualFood stores a user-entered food, running the same safety
// analysis and dedup merging as external results.
func (s *FoodService) CreateManualFood(food *models.Food) (*models.Food, error) {
	food.Source = models.SourceManual
	s.analyzeSafety(food)
	return s.cache.CacheFood(food)
}
