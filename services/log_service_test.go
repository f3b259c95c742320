package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ItsHariii/EmoryHacks/models"
)

func newTestLogService(t *testing.T) (*LogService, *gorm.DB, *models.Food) {
	db := newTestDB(t)
	svc := NewLogService(db, NewNutritionCalculator(zap.NewNop()), zap.NewNop())

	food := &models.Food{
		Name: "Banana", ServingSize: 118, ServingUnit: "g",
		Calories: 105, Protein: 1.3, Source: models.SourceUSDA,
	}
	require.NoError(t, db.Create(food).Error)
	return svc, db, food
}

func TestCreateLogFreezesSnapshot(t *testing.T) {
	svc, db, food := newTestLogService(t)

	log, err := svc.CreateLog("user-1", CreateLogInput{
		FoodID: food.ID, Quantity: 2, MealType: "breakfast",
	})
	require.NoError(t, err)

	assert.Equal(t, 210.0, log.CaloriesLogged)
	assert.Equal(t, 2.6, log.LoggedNutrients()["protein"])

	// Later edits to the food do not touch the frozen snapshot.
	require.NoError(t, db.Model(food).Update("calories", 500).Error)

	var reloaded models.FoodLog
	require.NoError(t, db.First(&reloaded, "id = ?", log.ID).Error)
	assert.Equal(t, 210.0, reloaded.CaloriesLogged)
}

func TestCreateLogUnknownFood(t *testing.T) {
	svc, _, _ := newTestLogService(t)

	_, err := svc.CreateLog("user-1", CreateLogInput{FoodID: "missing-id", Quantity: 1})
	assert.Error(t, err)
}

func TestUpdateLogRecomputesOnServingChange(t *testing.T) {
	svc, _, food := newTestLogService(t)

	log, err := svc.CreateLog("user-1", CreateLogInput{FoodID: food.ID, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, 105.0, log.CaloriesLogged)

	updated, err := svc.UpdateLog("user-1", log.ID, UpdateLogInput{Quantity: ptr(2.0)})
	require.NoError(t, err)
	assert.Equal(t, 210.0, updated.CaloriesLogged)
}

func TestUpdateLogMetadataKeepsSnapshot(t *testing.T) {
	svc, _, food := newTestLogService(t)

	log, err := svc.CreateLog("user-1", CreateLogInput{FoodID: food.ID, Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateLog("user-1", log.ID, UpdateLogInput{MealType: ptr("dinner")})
	require.NoError(t, err)
	assert.Equal(t, "dinner", updated.MealType)
	assert.Equal(t, 105.0, updated.CaloriesLogged)
}

func TestUpdateLogWrongUser(t *testing.T) {
	svc, _, food := newTestLogService(t)

	log, err := svc.CreateLog("user-1", CreateLogInput{FoodID: food.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.UpdateLog("user-2", log.ID, UpdateLogInput{Quantity: ptr(2.0)})
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestDeleteLogIsSoft(t *testing.T) {
	svc, db, food := newTestLogService(t)

	log, err := svc.CreateLog("user-1", CreateLogInput{FoodID: food.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLog("user-1", log.ID))

	// Gone from default queries.
	var visible int64
	require.NoError(t, db.Model(&models.FoodLog{}).Count(&visible).Error)
	assert.Equal(t, int64(0), visible)

	// Row still exists with a tombstone.
	var total int64
	require.NoError(t, db.Unscoped().Model(&models.FoodLog{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestListLogsScopedToUserAndDay(t *testing.T) {
	svc, _, food := newTestLogService(t)

	today := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	_, err := svc.CreateLog("user-1", CreateLogInput{FoodID: food.ID, Quantity: 1, ConsumedAt: &today})
	require.NoError(t, err)
	_, err = svc.CreateLog("user-1", CreateLogInput{FoodID: food.ID, Quantity: 1, ConsumedAt: &yesterday})
	require.NoError(t, err)
	_, err = svc.CreateLog("user-2", CreateLogInput{FoodID: food.ID, Quantity: 1, ConsumedAt: &today})
	require.NoError(t, err)

	logs, err := svc.ListLogs("user-1", today)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
