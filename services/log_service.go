package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ItsHariii/EmoryHacks/models"
)

var ErrLogNotFound = errors.New("food log not found")

// CreateLogInput is the request shape for logging a food.
type CreateLogInput struct {
	FoodID      string     `json:"food_id" binding:"required"`
	ServingSize *float64   `json:"serving_size"`
	ServingUnit *string    `json:"serving_unit"`
	Quantity    float64    `json:"quantity"`
	MealType    string     `json:"meal_type"`
	ConsumedAt  *time.Time `json:"consumed_at"`
	Notes       *string    `json:"notes"`
}

// UpdateLogInput carries the mutable fields of a log entry. Changing any
// serving field recomputes the frozen snapshot against the food as it is
// NOW; entries the user does not touch keep their original numbers.
type UpdateLogInput struct {
	ServingSize *float64   `json:"serving_size"`
	ServingUnit *string    `json:"serving_unit"`
	Quantity    *float64   `json:"quantity"`
	MealType    *string    `json:"meal_type"`
	ConsumedAt  *time.Time `json:"consumed_at"`
	Notes       *string    `json:"notes"`
}

// LogService owns the food journal: create, update, soft delete and list.
type LogService struct {
	db         *gorm.DB
	calculator *NutritionCalculator
	logger     *zap.Logger
}

func NewLogService(db *gorm.DB, calculator *NutritionCalculator, logger *zap.Logger) *LogService {
	return &LogService{db: db, calculator: calculator, logger: logger}
}

// CreateLog writes a journal entry with the nutrition snapshot frozen at
// write time.
func (s *LogService) CreateLog(userID string, input CreateLogInput) (*models.FoodLog, error) {
	var food models.Food
	if err := s.db.First(&food, "id = ?", input.FoodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("food %s not found", input.FoodID)
		}
		return nil, fmt.Errorf("failed to load food %s: %w", input.FoodID, err)
	}

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	consumedAt := time.Now().UTC()
	if input.ConsumedAt != nil {
		consumedAt = input.ConsumedAt.UTC()
	}

	snapshot := s.calculator.CalculateConsumedNutrition(&food, input.ServingSize, input.ServingUnit, quantity)

	log := &models.FoodLog{
		UserID:          userID,
		FoodID:          food.ID,
		ServingSize:     snapshot.ServingSizeUsed,
		ServingUnit:     snapshot.ServingUnitUsed,
		Quantity:        quantity,
		MealType:        input.MealType,
		ConsumedAt:      consumedAt,
		Notes:           input.Notes,
		CaloriesLogged:  snapshot.CaloriesLogged,
		NutrientsLogged: datatypes.NewJSONType(snapshot.NutrientsLogged),
	}
	if err := s.db.Create(log).Error; err != nil {
		return nil, fmt.Errorf("failed to create food log: %w", err)
	}

	s.logger.Info("food logged",
		zap.String("user_id", userID), zap.String("food", food.Name),
		zap.Float64("calories", snapshot.CaloriesLogged))
	log.Food = &food
	return log, nil
}

// UpdateLog modifies an entry owned by the user. Serving changes recompute
// the snapshot; metadata-only changes leave it untouched.
func (s *LogService) UpdateLog(userID, logID string, input UpdateLogInput) (*models.FoodLog, error) {
	log, err := s.getOwned(userID, logID)
	if err != nil {
		return nil, err
	}

	servingChanged := false
	if input.ServingSize != nil {
		log.ServingSize = *input.ServingSize
		servingChanged = true
	}
	if input.ServingUnit != nil {
		log.ServingUnit = *input.ServingUnit
		servingChanged = true
	}
	if input.Quantity != nil {
		log.Quantity = *input.Quantity
		servingChanged = true
	}
	if input.MealType != nil {
		log.MealType = *input.MealType
	}
	if input.ConsumedAt != nil {
		log.ConsumedAt = input.ConsumedAt.UTC()
	}
	if input.Notes != nil {
		log.Notes = input.Notes
	}

	if servingChanged {
		var food models.Food
		if err := s.db.First(&food, "id = ?", log.FoodID).Error; err != nil {
			return nil, fmt.Errorf("failed to load food for snapshot recompute: %w", err)
		}
		snapshot := s.calculator.CalculateConsumedNutrition(&food, &log.ServingSize, &log.ServingUnit, log.Quantity)
		log.CaloriesLogged = snapshot.CaloriesLogged
		log.NutrientsLogged = datatypes.NewJSONType(snapshot.NutrientsLogged)
	}

	if err := s.db.Save(log).Error; err != nil {
		return nil, fmt.Errorf("failed to update food log: %w", err)
	}
	return log, nil
}

// DeleteLog tombstones an entry. The row survives with a deleted_at stamp
// and drops out of every query and aggregate.
func (s *LogService) DeleteLog(userID, logID string) error {
	log, err := s.getOwned(userID, logID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(log).Error; err != nil {
		return fmt.Errorf("failed to delete food log: %w", err)
	}
	s.logger.Info("food log deleted", zap.String("user_id", userID), zap.String("log_id", logID))
	return nil
}

// ListLogs returns the user's entries for one UTC day, newest first.
func (s *LogService) ListLogs(userID string, day time.Time) ([]models.FoodLog, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var logs []models.FoodLog
	err := s.db.Preload("Food").
		Where("user_id = ? AND consumed_at >= ? AND consumed_at < ?", userID, start, end).
		Order("consumed_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list food logs: %w", err)
	}
	return logs, nil
}

func (s *LogService) getOwned(userID, logID string) (*models.FoodLog, error) {
	var log models.FoodLog
	err := s.db.Where("id = ? AND user_id = ?", logID, userID).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to load food log: %w", err)
	}
	return &log, nil
}
