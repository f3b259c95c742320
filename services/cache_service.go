package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ItsHariii/EmoryHacks/models"
)

const (
	// duplicateThreshold is the Jaccard similarity above which two food
	// names are treated as the same record.
	duplicateThreshold = 0.8
	// cacheHitThreshold is the looser similarity a cached record must meet
	// to satisfy a free-text query.
	cacheHitThreshold = 0.7
)

// cacheTTL varies by provenance: grocery data drifts faster than the
// government database, and local edits are refreshed most aggressively.
var cacheTTL = map[models.FoodSource]time.Duration{
	models.SourceSpoonacular: 7 * 24 * time.Hour,
	models.SourceUSDA:        30 * 24 * time.Hour,
	models.SourceManual:      3 * 24 * time.Hour,
}

// CacheStats summarizes the food cache for monitoring.
type CacheStats struct {
	TotalFoods   int64            `json:"total_foods"`
	BySource     map[string]int64 `json:"by_source"`
	ValidCache   int64            `json:"valid_cache"`
	ExpiredCache int64            `json:"expired_cache"`
	HitRate      float64          `json:"cache_hit_rate"`
}

// CacheService handles caching, fuzzy duplicate detection and field-level
// merging of food records.
type CacheService struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewCacheService(db *gorm.DB, logger *zap.Logger) *CacheService {
	return &CacheService{db: db, logger: logger, now: time.Now}
}

// IsValid reports whether a cached record is still fresh for its source.
func (c *CacheService) IsValid(food *models.Food) bool {
	if food == nil || food.UpdatedAt.IsZero() {
		return false
	}
	ttl, ok := cacheTTL[food.Source]
	if !ok {
		ttl = cacheTTL[models.SourceManual]
	}
	return c.now().Before(food.UpdatedAt.Add(ttl))
}

// GetCachedFood returns a fresh cached record for the query, by external id
// first and then by fuzzy name match. Nil means cache miss.
func (c *CacheService) GetCachedFood(query string, spoonacularID, fdcID *int64) *models.Food {
	if spoonacularID != nil {
		var food models.Food
		if err := c.db.Where("spoonacular_id = ?", *spoonacularID).First(&food).Error; err == nil && c.IsValid(&food) {
			c.logger.Info("cache hit by grocery id", zap.Int64("spoonacular_id", *spoonacularID), zap.String("name", food.Name))
			return &food
		}
	}
	if fdcID != nil {
		var food models.Food
		if err := c.db.Where("fdc_id = ?", *fdcID).First(&food).Error; err == nil && c.IsValid(&food) {
			c.logger.Info("cache hit by government id", zap.Int64("fdc_id", *fdcID), zap.String("name", food.Name))
			return &food
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var candidates []models.Food
	if err := c.db.
		Where("LOWER(name) = ? OR LOWER(name) LIKE ?", q, "%"+q+"%").
		Order("updated_at DESC").
		Limit(3).
		Find(&candidates).Error; err != nil {
		c.logger.Error("cache lookup failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	for i := range candidates {
		food := &candidates[i]
		if !c.IsValid(food) {
			continue
		}
		if sim := jaccardSimilarity(q, strings.ToLower(food.Name)); sim > cacheHitThreshold {
			c.logger.Info("cache hit by name",
				zap.String("query", query), zap.String("name", food.Name), zap.Float64("similarity", sim))
			return food
		}
	}
	c.logger.Info("cache miss", zap.String("query", query))
	return nil
}

// FindDuplicates locates existing records that represent the same food, in
// priority order: external id match (authoritative), exact name+brand, then
// fuzzy name similarity above the duplicate threshold.
func (c *CacheService) FindDuplicates(name string, brand *string, spoonacularID, fdcID *int64) []models.Food {
	var duplicates []models.Food
	seen := make(map[string]bool)
	add := func(f models.Food) {
		if !seen[f.ID] {
			seen[f.ID] = true
			duplicates = append(duplicates, f)
		}
	}

	if spoonacularID != nil {
		var food models.Food
		if err := c.db.Where("spoonacular_id = ?", *spoonacularID).First(&food).Error; err == nil {
			add(food)
		}
	}
	if fdcID != nil {
		var food models.Food
		if err := c.db.Where("fdc_id = ?", *fdcID).First(&food).Error; err == nil {
			add(food)
		}
	}

	if brand != nil && *brand != "" {
		var food models.Food
		err := c.db.Where("LOWER(name) = ? AND LOWER(brand) = ?",
			strings.ToLower(name), strings.ToLower(*brand)).First(&food).Error
		if err == nil {
			add(food)
		}
	}

	if len(duplicates) == 0 {
		q := strings.ToLower(name)
		var candidates []models.Food
		if err := c.db.
			Where("LOWER(name) = ? OR LOWER(name) LIKE ?", q, "%"+q+"%").
			Limit(5).
			Find(&candidates).Error; err == nil {
			for _, candidate := range candidates {
				var candidateBrand *string
				if candidate.Brand != nil {
					candidateBrand = candidate.Brand
				}
				if similarity(name, candidate.Name, brand, candidateBrand) > duplicateThreshold {
					add(candidate)
				}
			}
		}
	}
	return duplicates
}

// CacheFood persists a newly fetched food, merging into an existing
// duplicate when one exists. A unique-constraint violation on insert means
// another request created the record concurrently; the race is resolved by
// re-running duplicate detection and merging into the winner.
func (c *CacheService) CacheFood(food *models.Food) (*models.Food, error) {
	merged, err := c.tryCacheFood(food)
	if err == nil {
		return merged, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	c.logger.Warn("concurrent insert detected, merging into existing record",
		zap.String("name", food.Name))
	duplicates := c.FindDuplicates(food.Name, food.Brand, food.SpoonacularID, food.FdcID)
	if len(duplicates) == 0 {
		return nil, fmt.Errorf("duplicate key on insert of %q but no existing record found: %w", food.Name, err)
	}
	existing := duplicates[0]
	return c.mergeInto(&existing, food)
}

func (c *CacheService) tryCacheFood(food *models.Food) (*models.Food, error) {
	duplicates := c.FindDuplicates(food.Name, food.Brand, food.SpoonacularID, food.FdcID)
	if len(duplicates) > 0 {
		existing := duplicates[0]
		return c.mergeInto(&existing, food)
	}

	if err := c.db.Create(food).Error; err != nil {
		return nil, err
	}
	c.logger.Info("cached new food", zap.String("name", food.Name), zap.String("source", string(food.Source)))
	return food, nil
}

// mergeInto applies the non-destructive merge policy to an existing record
// and saves it.
func (c *CacheService) mergeInto(existing, incoming *models.Food) (*models.Food, error) {
	mergeFood(existing, incoming)
	if err := c.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("failed to save merged food %q: %w", existing.Name, err)
	}
	c.logger.Info("merged food data into existing record",
		zap.String("name", incoming.Name), zap.String("existing_id", existing.ID))
	return existing, nil
}

// mergeFood merges incoming into existing field by field: non-null incoming
// values fill null existing fields, list fields take the deduplicated
// union, the micronutrient map is shallow-merged, missing external ids are
// backfilled, and a non-null existing field is never nulled out.
func mergeFood(existing, incoming *models.Food) {
	if existing.Name == "" && incoming.Name != "" {
		existing.Name = incoming.Name
	}
	if existing.Brand == nil && incoming.Brand != nil {
		existing.Brand = incoming.Brand
	}
	if existing.Description == nil && incoming.Description != nil {
		existing.Description = incoming.Description
	}
	if existing.Category == nil && incoming.Category != nil {
		existing.Category = incoming.Category
	}
	if existing.Calories == 0 && incoming.Calories != 0 {
		existing.Calories = incoming.Calories
	}
	if existing.Protein == 0 && incoming.Protein != 0 {
		existing.Protein = incoming.Protein
	}
	if existing.Carbs == 0 && incoming.Carbs != 0 {
		existing.Carbs = incoming.Carbs
	}
	if existing.Fat == 0 && incoming.Fat != 0 {
		existing.Fat = incoming.Fat
	}
	if existing.Fiber == nil && incoming.Fiber != nil {
		existing.Fiber = incoming.Fiber
	}
	if existing.Sugar == nil && incoming.Sugar != nil {
		existing.Sugar = incoming.Sugar
	}
	if existing.Sodium == nil && incoming.Sodium != nil {
		existing.Sodium = incoming.Sodium
	}

	existing.Ingredients = datatypes.JSONSlice[string](unionStrings(existing.Ingredients, incoming.Ingredients))
	existing.Allergens = datatypes.JSONSlice[string](unionStrings(existing.Allergens, incoming.Allergens))

	if incomingMicros := incoming.Micronutrients.Data(); len(incomingMicros) > 0 {
		merged := existing.MicronutrientMap()
		for key, value := range incomingMicros {
			merged[key] = value
		}
		existing.Micronutrients = datatypes.NewJSONType(merged)
	}

	// Safety information: prefer the more recent verdict.
	if incoming.SafetyStatus != "" {
		existing.SafetyStatus = incoming.SafetyStatus
	}
	if incoming.SafetyNotes != nil {
		existing.SafetyNotes = incoming.SafetyNotes
	}
	if existing.Confidence == nil && incoming.Confidence != nil {
		existing.Confidence = incoming.Confidence
	}

	if existing.SpoonacularID == nil && incoming.SpoonacularID != nil {
		existing.SpoonacularID = incoming.SpoonacularID
	}
	if existing.FdcID == nil && incoming.FdcID != nil {
		existing.FdcID = incoming.FdcID
	}
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Invalidate forces records to expire by pushing updated_at far into the
// past rather than deleting them, so log entries that reference them stay
// intact. Any combination of id, source and age filters may be given.
func (c *CacheService) Invalidate(foodID string, source models.FoodSource, olderThan time.Duration) (int64, error) {
	query := c.db.Model(&models.Food{})
	if foodID != "" {
		query = query.Where("id = ?", foodID)
	}
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if olderThan > 0 {
		query = query.Where("updated_at < ?", c.now().Add(-olderThan))
	}

	expired := c.now().AddDate(-1, 0, 0)
	result := query.UpdateColumn("updated_at", expired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to invalidate cache: %w", result.Error)
	}
	c.logger.Info("invalidated cached foods", zap.Int64("count", result.RowsAffected))
	return result.RowsAffected, nil
}

// Stats reports cache totals, a per-source breakdown and the valid/expired
// split.
func (c *CacheService) Stats() (*CacheStats, error) {
	stats := &CacheStats{BySource: make(map[string]int64)}

	if err := c.db.Model(&models.Food{}).Count(&stats.TotalFoods).Error; err != nil {
		return nil, fmt.Errorf("failed to count foods: %w", err)
	}
	for _, source := range []models.FoodSource{models.SourceSpoonacular, models.SourceUSDA, models.SourceManual} {
		var count int64
		if err := c.db.Model(&models.Food{}).Where("source = ?", source).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count foods by source: %w", err)
		}
		stats.BySource[string(source)] = count
	}

	var foods []models.Food
	if err := c.db.Select("id", "source", "updated_at").Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("failed to load foods for validity check: %w", err)
	}
	for i := range foods {
		if c.IsValid(&foods[i]) {
			stats.ValidCache++
		} else {
			stats.ExpiredCache++
		}
	}
	if stats.TotalFoods > 0 {
		stats.HitRate = float64(stats.ValidCache) / float64(stats.TotalFoods)
	}
	return stats, nil
}

// similarity scores two foods' likeness: word-set Jaccard over names,
// weighted 70/30 with brand similarity when both records have brands.
func similarity(name1, name2 string, brand1, brand2 *string) float64 {
	nameSim := jaccardSimilarity(strings.ToLower(name1), strings.ToLower(name2))
	if brand1 != nil && *brand1 != "" && brand2 != nil && *brand2 != "" {
		brandSim := jaccardSimilarity(strings.ToLower(*brand1), strings.ToLower(*brand2))
		return nameSim*0.7 + brandSim*0.3
	}
	return nameSim
}

// jaccardSimilarity is intersection-over-union of whitespace-tokenized word
// sets. It is order- and stemming-insensitive by design.
func jaccardSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	set1 := toSet(strings.Fields(s1))
	set2 := toSet(strings.Fields(s2))
	if len(set1) == 0 && len(set2) == 0 {
		return 1
	}

	intersection := 0
	for word := range set1 {
		if set2[word] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
