package services

import (
	"strings"
	"unicode"
)

// QueryKind is the classifier's guess at what a free-text food query names.
type QueryKind string

const (
	KindProduct    QueryKind = "product"
	KindIngredient QueryKind = "ingredient"
)

// productIndicators are brand names and packaging terms that suggest a
// packaged product.
var productIndicators = []string{
	// brand names
	"kraft", "nestle", "kellogg", "general mills", "pepsi", "coca cola", "frito lay",
	"campbell", "heinz", "oreo", "cheerios", "doritos", "lay's", "pringles",

	// packaged food terms
	"cereal", "crackers", "chips", "cookies", "frozen", "canned", "bottled",
	"packaged", "instant", "mix", "sauce", "dressing", "snack", "bar",
	"yogurt", "cheese", "bread", "pasta", "pizza", "soup", "juice",

	// label phrasing that rarely appears on raw ingredients
	"whole wheat", "low fat", "organic", "gluten free", "sugar free",
}

// ingredientIndicators are raw and whole-food terms.
var ingredientIndicators = []string{
	"fresh", "raw", "ground", "chopped", "diced", "sliced", "whole",
	"apple", "banana", "carrot", "onion", "garlic", "tomato", "potato",
	"chicken", "beef", "pork", "fish", "salmon", "tuna",
	"flour", "sugar", "salt", "pepper", "oil", "butter", "egg",
	"rice", "beans", "lentils", "quinoa", "oats",
}

// basicIngredients always classify as ingredient regardless of scoring, so
// the government-source fallback engages for common foods.
var basicIngredients = []string{
	"apple", "banana", "carrot", "onion", "garlic", "tomato", "potato",
	"chicken", "beef", "pork", "fish", "salmon", "tuna", "egg", "eggs",
	"flour", "sugar", "salt", "pepper", "oil", "butter",
	"rice", "beans", "lentils", "quinoa", "oats", "milk",
	"orange", "lemon", "lime", "strawberry", "blueberry", "grape",
	"lettuce", "spinach", "broccoli", "cauliflower", "cucumber",
	"cheese", "yogurt", "bread", "pasta",
}

// QueryClassifier scores free text as packaged product vs raw ingredient.
// It is a heuristic: misclassifications are expected and recovered by the
// pipeline's fallback search across both categories.
type QueryClassifier struct{}

func NewQueryClassifier() *QueryClassifier { return &QueryClassifier{} }

// Classify returns KindProduct when the product score strictly exceeds the
// ingredient score, KindIngredient otherwise. The basic-ingredient override
// wins over the scores.
func (qc *QueryClassifier) Classify(query string) QueryKind {
	if qc.IsBasicIngredient(query) {
		return KindIngredient
	}

	q := strings.ToLower(strings.TrimSpace(query))

	productScore := 0
	for _, indicator := range productIndicators {
		if strings.Contains(q, indicator) {
			productScore++
		}
	}

	ingredientScore := 0
	for _, indicator := range ingredientIndicators {
		if strings.Contains(q, indicator) {
			ingredientScore++
		}
	}

	// Multi-word queries and queries with digits are usually product names.
	if len(strings.Fields(query)) > 3 {
		productScore++
	}
	if strings.ContainsFunc(query, unicode.IsDigit) {
		productScore++
	}

	if productScore > ingredientScore {
		return KindProduct
	}
	return KindIngredient
}

// IsBasicIngredient matches the allowlist exactly, tolerating a trailing
// plural "s" in either direction.
func (qc *QueryClassifier) IsBasicIngredient(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, ingredient := range basicIngredients {
		if q == ingredient || q == ingredient+"s" || q+"s" == ingredient {
			return true
		}
	}
	return false
}
