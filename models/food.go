package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SafetyStatus string

const (
	SafetySafe    SafetyStatus = "safe"
	SafetyLimited SafetyStatus = "limited"
	SafetyAvoid   SafetyStatus = "avoid"
)

type FoodSource string

const (
	SourceSpoonacular FoodSource = "spoonacular"
	SourceUSDA        FoodSource = "usda"
	SourceManual      FoodSource = "manual"
)

// Nutrient is one entry of a food's micronutrient map.
type Nutrient struct {
	Amount            float64  `json:"amount"`
	Unit              string   `json:"unit"`
	PercentDailyValue *float64 `json:"percent_daily_value,omitempty"`
}

// Food is the canonical, de-duplicated food/product record. Uniqueness is
// enforced per external id and on (name, brand, serving_size, serving_unit)
// so manual entries cannot duplicate an existing record either.
type Food struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null;index;uniqueIndex:uq_food_identity" json:"name"`
	Description *string `json:"description,omitempty"`
	Brand       *string `gorm:"size:100;index;uniqueIndex:uq_food_identity" json:"brand,omitempty"`
	Category    *string `gorm:"size:100;index" json:"category,omitempty"`

	ServingSize float64 `gorm:"not null;uniqueIndex:uq_food_identity" json:"serving_size"`
	ServingUnit string  `gorm:"size:20;not null;uniqueIndex:uq_food_identity" json:"serving_unit"`

	Calories float64  `gorm:"not null" json:"calories"`
	Protein  float64  `gorm:"not null;default:0" json:"protein"`
	Carbs    float64  `gorm:"not null;default:0" json:"carbs"`
	Fat      float64  `gorm:"not null;default:0" json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`

	Micronutrients datatypes.JSONType[map[string]Nutrient] `json:"micronutrients"`
	Ingredients    datatypes.JSONSlice[string]             `json:"ingredients"`
	Allergens      datatypes.JSONSlice[string]             `json:"allergens"`

	SpoonacularID *int64 `gorm:"uniqueIndex" json:"spoonacular_id,omitempty"`
	FdcID         *int64 `gorm:"uniqueIndex" json:"fdc_id,omitempty"`

	SafetyStatus SafetyStatus `gorm:"size:20;not null;default:safe" json:"safety_status"`
	SafetyNotes  *string      `json:"safety_notes,omitempty"`
	Confidence   *float64     `json:"confidence,omitempty"`

	Source     FoodSource `gorm:"size:20;not null;default:manual;index" json:"source"`
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (f *Food) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// MicronutrientMap returns the decoded micronutrient map, never nil.
func (f *Food) MicronutrientMap() map[string]Nutrient {
	m := f.Micronutrients.Data()
	if m == nil {
		return map[string]Nutrient{}
	}
	return m
}
