package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ItsHariii/EmoryHacks/models"
)

// SafetyRule maps an ingredient name to a pregnancy-safety verdict.
type SafetyRule struct {
	Key    string
	Status models.SafetyStatus
	Notes  string
}

// IngredientSafety is the per-ingredient result of a food safety check.
type IngredientSafety struct {
	Name   string              `json:"name"`
	Status models.SafetyStatus `json:"safety_status"`
	Notes  string              `json:"safety_notes"`
}

const unreviewedNotes = "Safety not reviewed yet - consume with caution during pregnancy"

// defaultSafetyRules is an ordered table: substring lookups scan it in
// declaration order and the first match wins, so the more specific
// raw/unpasteurized entries sit above the generic ones they would otherwise
// shadow.
var defaultSafetyRules = []SafetyRule{
	// Avoid outright.
	{"alcohol", models.SafetyAvoid, "No amount of alcohol is known to be safe during pregnancy"},
	{"wine", models.SafetyAvoid, "No amount of alcohol is known to be safe during pregnancy"},
	{"beer", models.SafetyAvoid, "No amount of alcohol is known to be safe during pregnancy"},
	{"raw fish", models.SafetyAvoid, "Raw fish may carry listeria and parasites"},
	{"sushi", models.SafetyAvoid, "Raw fish may carry listeria and parasites"},
	{"sashimi", models.SafetyAvoid, "Raw fish may carry listeria and parasites"},
	{"raw oyster", models.SafetyAvoid, "Raw shellfish may carry vibrio and norovirus"},
	{"raw egg", models.SafetyAvoid, "Raw eggs may carry salmonella; cook until firm"},
	{"cookie dough", models.SafetyAvoid, "Raw dough contains raw egg and raw flour"},
	{"unpasteurized", models.SafetyAvoid, "Unpasteurized products may carry listeria"},
	{"raw milk", models.SafetyAvoid, "Unpasteurized milk may carry listeria"},
	{"brie", models.SafetyAvoid, "Soft mold-ripened cheese may carry listeria unless cooked"},
	{"camembert", models.SafetyAvoid, "Soft mold-ripened cheese may carry listeria unless cooked"},
	{"blue cheese", models.SafetyAvoid, "Soft blue-veined cheese may carry listeria unless cooked"},
	{"shark", models.SafetyAvoid, "High mercury content"},
	{"swordfish", models.SafetyAvoid, "High mercury content"},
	{"king mackerel", models.SafetyAvoid, "High mercury content"},
	{"tilefish", models.SafetyAvoid, "High mercury content"},
	{"marlin", models.SafetyAvoid, "High mercury content"},
	{"liver", models.SafetyAvoid, "Very high in retinol (vitamin A)"},
	{"pate", models.SafetyAvoid, "May carry listeria and is high in vitamin A"},

	// Fine in moderation or with preparation caveats.
	{"deli meat", models.SafetyLimited, "Heat until steaming to kill listeria before eating"},
	{"cold cuts", models.SafetyLimited, "Heat until steaming to kill listeria before eating"},
	{"hot dog", models.SafetyLimited, "Heat until steaming to kill listeria before eating"},
	{"smoked salmon", models.SafetyLimited, "Refrigerated smoked seafood may carry listeria; shelf-stable is safer"},
	{"tuna", models.SafetyLimited, "Moderate mercury; limit to 2-3 servings per week"},
	{"coffee", models.SafetyLimited, "Keep caffeine under 200mg per day"},
	{"caffeine", models.SafetyLimited, "Keep caffeine under 200mg per day"},
	{"black tea", models.SafetyLimited, "Contains caffeine; count toward the 200mg daily limit"},
	{"green tea", models.SafetyLimited, "Contains caffeine; count toward the 200mg daily limit"},
	{"energy drink", models.SafetyLimited, "High caffeine; most exceed the daily limit in one can"},
	{"dark chocolate", models.SafetyLimited, "Contains caffeine; fine in small amounts"},
	{"herbal tea", models.SafetyLimited, "Safety varies by herb; check each blend"},
	{"artificial sweetener", models.SafetyLimited, "Moderation advised; avoid saccharin"},
	{"feta", models.SafetyLimited, "Safe only when made from pasteurized milk"},
	{"mayonnaise", models.SafetyLimited, "Commercial is pasteurized; avoid homemade with raw egg"},

	// Generally safe staples.
	{"banana", models.SafetySafe, "Good source of potassium and vitamin B6"},
	{"apple", models.SafetySafe, "Wash thoroughly before eating"},
	{"orange", models.SafetySafe, "Good source of vitamin C and folate"},
	{"strawberry", models.SafetySafe, "Wash thoroughly before eating"},
	{"spinach", models.SafetySafe, "Rich in folate and iron; wash thoroughly"},
	{"broccoli", models.SafetySafe, "Rich in folate, calcium and fiber"},
	{"carrot", models.SafetySafe, "Good source of beta-carotene"},
	{"lentils", models.SafetySafe, "Excellent source of folate, iron and protein"},
	{"beans", models.SafetySafe, "Good source of protein, iron and fiber"},
	{"oats", models.SafetySafe, "Good source of fiber and iron"},
	{"rice", models.SafetySafe, "Safe staple; vary grains for nutrient coverage"},
	{"yogurt", models.SafetySafe, "Pasteurized yogurt is a good calcium source"},
	{"cheddar", models.SafetySafe, "Hard cheeses are low risk for listeria"},
	{"milk", models.SafetySafe, "Pasteurized milk is a good calcium and vitamin D source"},
	{"chicken", models.SafetySafe, "Safe when cooked through to 165F"},
	{"beef", models.SafetySafe, "Safe when cooked to at least medium; avoid rare"},
	{"salmon", models.SafetySafe, "Low mercury and rich in omega-3 when cooked"},
	{"egg", models.SafetySafe, "Safe when cooked until yolk and white are firm"},
	{"peanut butter", models.SafetySafe, "Safe unless a peanut allergy is present"},
	{"bread", models.SafetySafe, "Fortified bread adds folate and iron"},
	{"water", models.SafetySafe, "Hydration matters; aim for 8-12 cups per day"},
}

// allergenKeywords maps canonical allergen names to the ingredient keywords
// that imply them.
var allergenKeywords = []struct {
	Allergen string
	Keywords []string
}{
	{"milk", []string{"milk", "dairy", "cheese", "butter", "cream", "yogurt", "whey", "casein"}},
	{"eggs", []string{"egg", "albumin", "mayonnaise"}},
	{"fish", []string{"fish", "salmon", "tuna", "cod", "sardine", "anchovy"}},
	{"shellfish", []string{"shrimp", "crab", "lobster", "oyster", "clam", "mussel"}},
	{"tree_nuts", []string{"almond", "walnut", "pecan", "cashew", "pistachio", "hazelnut", "brazil nut"}},
	{"peanuts", []string{"peanut", "groundnut"}},
	{"wheat", []string{"wheat", "flour", "gluten", "bread", "pasta"}},
	{"soy", []string{"soy", "soybean", "tofu", "tempeh", "miso"}},
}

// SafetyService maps ingredient names to pregnancy-safety verdicts using a
// static rule table loaded once at startup.
type SafetyService struct {
	rules  []SafetyRule
	logger *zap.Logger
}

func NewSafetyService(logger *zap.Logger) *SafetyService {
	s := &SafetyService{rules: defaultSafetyRules, logger: logger}
	logger.Info("loaded pregnancy safety rules", zap.Int("count", len(s.rules)))
	return s
}

// GetSafetyStatus looks up a single ingredient: exact match first, then
// substring match in either direction. Unknown ingredients default to
// limited, never safe.
func (s *SafetyService) GetSafetyStatus(ingredientName string) (models.SafetyStatus, string) {
	key := strings.ToLower(strings.TrimSpace(ingredientName))

	for _, rule := range s.rules {
		if rule.Key == key {
			return rule.Status, rule.Notes
		}
	}
	for _, rule := range s.rules {
		if strings.Contains(key, rule.Key) || strings.Contains(rule.Key, key) {
			return rule.Status, rule.Notes
		}
	}
	return models.SafetyLimited, unreviewedNotes
}

// CheckFoodSafety aggregates per-ingredient verdicts: any avoid makes the
// food avoid, otherwise any limited makes it limited, otherwise safe. The
// overall notes enumerate the offending ingredients.
func (s *SafetyService) CheckFoodSafety(ingredients []string) (models.SafetyStatus, string, []IngredientSafety) {
	overall := models.SafetySafe
	var avoidNames, limitedNames []string
	details := make([]IngredientSafety, 0, len(ingredients))

	for _, ingredient := range ingredients {
		status, notes := s.GetSafetyStatus(ingredient)
		details = append(details, IngredientSafety{Name: ingredient, Status: status, Notes: notes})

		switch status {
		case models.SafetyAvoid:
			avoidNames = append(avoidNames, ingredient)
			overall = models.SafetyAvoid
		case models.SafetyLimited:
			limitedNames = append(limitedNames, ingredient)
			if overall != models.SafetyAvoid {
				overall = models.SafetyLimited
			}
		}
	}

	var overallNotes string
	switch {
	case len(avoidNames) > 0:
		overallNotes = fmt.Sprintf("Avoid during pregnancy due to: %s", strings.Join(avoidNames, ", "))
	case len(limitedNames) > 0:
		overallNotes = fmt.Sprintf("Consume in moderation due to: %s", strings.Join(limitedNames, ", "))
	default:
		overallNotes = "Generally safe for consumption during pregnancy"
	}
	return overall, overallNotes, details
}

// ExtractAllergens derives the canonical allergen list from an ingredient
// list by keyword match.
func (s *SafetyService) ExtractAllergens(ingredients []string) []string {
	text := strings.ToLower(strings.Join(ingredients, " "))

	var allergens []string
	for _, entry := range allergenKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(text, keyword) {
				allergens = append(allergens, entry.Allergen)
				break
			}
		}
	}
	return allergens
}
