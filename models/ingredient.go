package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ingredient is an atomic nutrient entity. All values are per 100g; it has
// no brand and no serving-size semantics of its own.
type Ingredient struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"not null;index" json:"name"`
	Description *string `json:"description,omitempty"`
	Category    *string `gorm:"index" json:"category,omitempty"`

	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`

	Micronutrients datatypes.JSONType[map[string]Nutrient] `json:"micronutrients"`
	Allergens      datatypes.JSONSlice[string]             `json:"allergens"`

	SpoonacularID *int64 `gorm:"uniqueIndex" json:"spoonacular_id,omitempty"`
	FdcID         *int64 `gorm:"uniqueIndex" json:"fdc_id,omitempty"`

	SafetyStatus SafetyStatus `gorm:"size:20" json:"safety_status"`
	SafetyNotes  *string      `json:"safety_notes,omitempty"`
	Confidence   *float64     `json:"confidence,omitempty"`

	Source    FoodSource `gorm:"size:20;not null;default:manual" json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
