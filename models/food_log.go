package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FoodLog records one user eating a quantity of a Food. The nutrient
// snapshot (CaloriesLogged / NutrientsLogged) is frozen at write time and is
// never recomputed when the underlying Food changes later.
//
// Deletes are soft: DeletedAt tombstones the row and gorm's default scope
// excludes it from every query, which is what keeps tombstoned logs out of
// the aggregates.
type FoodLog struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	FoodID string `gorm:"type:uuid;not null;index" json:"food_id"`
	Food   *Food  `gorm:"foreignKey:FoodID" json:"food,omitempty"`

	// User-specified serving, independent of the food's base serving.
	ServingSize float64 `gorm:"not null" json:"serving_size"`
	ServingUnit string  `gorm:"size:20;not null" json:"serving_unit"`
	Quantity    float64 `gorm:"not null" json:"quantity"`

	MealType   string    `gorm:"size:20" json:"meal_type"`
	ConsumedAt time.Time `gorm:"not null;index" json:"consumed_at"`
	Notes      *string   `json:"notes,omitempty"`

	CaloriesLogged  float64                              `gorm:"not null;default:0" json:"calories_logged"`
	NutrientsLogged datatypes.JSONType[map[string]float64] `json:"nutrients_logged"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *FoodLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// LoggedNutrients returns the frozen nutrient snapshot, never nil.
func (l *FoodLog) LoggedNutrients() map[string]float64 {
	m := l.NutrientsLogged.Data()
	if m == nil {
		return map[string]float64{}
	}
	return m
}
