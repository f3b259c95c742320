package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBasicIngredientOverride(t *testing.T) {
	qc := NewQueryClassifier()

	// "cheese" scores as a product indicator but the allowlist wins.
	assert.Equal(t, KindIngredient, qc.Classify("cheese"))
	assert.Equal(t, KindIngredient, qc.Classify("banana"))
	assert.Equal(t, KindIngredient, qc.Classify("Bananas"))
	assert.Equal(t, KindIngredient, qc.Classify("  egg "))
}

func TestClassifyProduct(t *testing.T) {
	qc := NewQueryClassifier()

	assert.Equal(t, KindProduct, qc.Classify("kraft macaroni and cheese dinner"))
	assert.Equal(t, KindProduct, qc.Classify("oreo cookies"))
	assert.Equal(t, KindProduct, qc.Classify("cheerios cereal"))
}

func TestClassifyIngredient(t *testing.T) {
	qc := NewQueryClassifier()

	assert.Equal(t, KindIngredient, qc.Classify("fresh ground beef"))
	assert.Equal(t, KindIngredient, qc.Classify("raw salmon fillet"))
}

func TestClassifyTiesGoToIngredient(t *testing.T) {
	qc := NewQueryClassifier()

	// No indicators at all: both scores are zero.
	assert.Equal(t, KindIngredient, qc.Classify("mystery item"))
}

func TestClassifyDigitsLeanProduct(t *testing.T) {
	qc := NewQueryClassifier()

	assert.Equal(t, KindProduct, qc.Classify("vitaminwater zero 20oz"))
}

func TestIsBasicIngredientPluralTolerance(t *testing.T) {
	qc := NewQueryClassifier()

	assert.True(t, qc.IsBasicIngredient("apples"))
	assert.True(t, qc.IsBasicIngredient("bean"))
	assert.False(t, qc.IsBasicIngredient("apple pie"))
}
