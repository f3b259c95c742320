package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ItsHariii/EmoryHacks/models"
)

// trackedNutrients are the canonical keys every daily summary reports, in
// display order. Absent data shows as zero rather than a missing key.
var trackedNutrients = []string{
	"protein", "carbs", "fat", "fiber", "sugar", "sodium",
	"calcium", "iron", "vitamin_a", "vitamin_c", "vitamin_d", "folate",
}

// NutrientTarget is a daily goal for one nutrient during pregnancy.
type NutrientTarget struct {
	Nutrient string  `json:"nutrient"`
	Target   float64 `json:"target"`
	Unit     string  `json:"unit"`
}

// trimesterTargets holds per-trimester calorie and protein goals plus the
// targets shared across all trimesters.
var trimesterTargets = map[int][]NutrientTarget{
	1: {
		{"calories", 2200, "kcal"},
		{"protein", 75, "g"},
	},
	2: {
		{"calories", 2400, "kcal"},
		{"protein", 80, "g"},
	},
	3: {
		{"calories", 2600, "kcal"},
		{"protein", 85, "g"},
	},
}

var commonTargets = []NutrientTarget{
	{"calcium", 1000, "mg"},
	{"iron", 27, "mg"},
	{"folate", 600, "mcg"},
	{"vitamin_d", 15, "mcg"},
	{"fiber", 28, "g"},
}

// gapRule flags a nutrient as deficient when intake falls below the given
// fraction of its target.
type gapRule struct {
	Threshold float64
	Priority  string
}

var gapRules = map[string]gapRule{
	"protein": {0.8, "high"},
	"calcium": {0.7, "high"},
	"iron":    {0.8, "high"},
	"folate":  {0.8, "high"},
	"fiber":   {0.7, "medium"},
}

// NutrientGap is one identified shortfall against the trimester targets.
type NutrientGap struct {
	Nutrient string  `json:"nutrient"`
	Consumed float64 `json:"consumed"`
	Target   float64 `json:"target"`
	Unit     string  `json:"unit"`
	Percent  float64 `json:"percent_of_target"`
	Priority string  `json:"priority"`
}

// FoodSuggestion pairs a deficient nutrient with foods rich in it.
type FoodSuggestion struct {
	Nutrient string   `json:"nutrient"`
	Priority string   `json:"priority"`
	Reason   string   `json:"reason"`
	Foods    []string `json:"foods"`
}

// nutrientRichFoods is the curated suggestion table keyed by nutrient.
var nutrientRichFoods = map[string][]string{
	"protein": {"Greek yogurt", "Lentils", "Chicken breast", "Eggs", "Cottage cheese"},
	"calcium": {"Pasteurized milk", "Cheddar cheese", "Fortified orange juice", "Tofu", "Kale"},
	"iron":    {"Lean beef", "Spinach", "Fortified cereal", "Lentils", "Pumpkin seeds"},
	"folate":  {"Leafy greens", "Fortified bread", "Oranges", "Black beans", "Asparagus"},
	"fiber":   {"Oats", "Raspberries", "Pears", "Chia seeds", "Whole grain bread"},
}

// DailyNutrition is one day's aggregated intake with progress against the
// trimester targets.
type DailyNutrition struct {
	Date       string             `json:"date"`
	Trimester  int                `json:"trimester"`
	Calories   float64            `json:"calories"`
	Nutrients  map[string]float64 `json:"nutrients"`
	Targets    []NutrientTarget   `json:"targets"`
	Gaps       []NutrientGap      `json:"gaps"`
	EntryCount int                `json:"entry_count"`
}

// NutritionService aggregates the food journal into daily and weekly
// summaries and derives deficiency-driven suggestions.
type NutritionService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewNutritionService(db *gorm.DB, logger *zap.Logger) *NutritionService {
	return &NutritionService{db: db, logger: logger}
}

// DailySummary sums the frozen snapshots of all live log entries in the
// UTC day containing the given time. Soft-deleted entries never count.
func (s *NutritionService) DailySummary(userID string, day time.Time) (*DailyNutrition, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var logs []models.FoodLog
	err := s.db.
		Where("user_id = ? AND consumed_at >= ? AND consumed_at < ?", userID, start, end).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load logs for daily summary: %w", err)
	}

	summary := &DailyNutrition{
		Date:       start.Format("2006-01-02"),
		Nutrients:  make(map[string]float64, len(trackedNutrients)),
		EntryCount: len(logs),
	}
	for _, key := range trackedNutrients {
		summary.Nutrients[key] = 0
	}

	for i := range logs {
		summary.Calories += logs[i].CaloriesLogged
		for key, amount := range logs[i].LoggedNutrients() {
			if _, tracked := summary.Nutrients[key]; tracked {
				summary.Nutrients[key] += amount
			}
		}
	}
	summary.Calories = round1(summary.Calories)
	for key, total := range summary.Nutrients {
		summary.Nutrients[key] = round1(total)
	}

	summary.Trimester = s.trimesterFor(userID, day)
	summary.Targets = TargetsForTrimester(summary.Trimester)
	summary.Gaps = IdentifyGaps(summary.Calories, summary.Nutrients, summary.Targets)
	return summary, nil
}

// WeeklySummary returns the seven daily summaries starting on the given
// day, in ascending date order. Days with no entries appear zero-filled.
func (s *NutritionService) WeeklySummary(userID string, startDay time.Time) ([]DailyNutrition, error) {
	days := make([]DailyNutrition, 0, 7)
	for offset := 0; offset < 7; offset++ {
		daily, err := s.DailySummary(userID, startDay.AddDate(0, 0, offset))
		if err != nil {
			return nil, err
		}
		days = append(days, *daily)
	}
	return days, nil
}

// Suggestions turns today's nutrient gaps into concrete food suggestions.
func (s *NutritionService) Suggestions(userID string, day time.Time) ([]FoodSuggestion, error) {
	daily, err := s.DailySummary(userID, day)
	if err != nil {
		return nil, err
	}

	suggestions := make([]FoodSuggestion, 0, len(daily.Gaps))
	for _, gap := range daily.Gaps {
		foods, ok := nutrientRichFoods[gap.Nutrient]
		if !ok {
			continue
		}
		suggestions = append(suggestions, FoodSuggestion{
			Nutrient: gap.Nutrient,
			Priority: gap.Priority,
			Reason: fmt.Sprintf("You are at %.0f%% of your daily %s target (%.1f of %.1f %s)",
				gap.Percent, gap.Nutrient, gap.Consumed, gap.Target, gap.Unit),
			Foods: foods,
		})
	}
	return suggestions, nil
}

// TargetsForTrimester merges the per-trimester calorie and protein goals
// with the shared micronutrient targets.
func TargetsForTrimester(trimester int) []NutrientTarget {
	specific, ok := trimesterTargets[trimester]
	if !ok {
		specific = trimesterTargets[1]
	}
	targets := make([]NutrientTarget, 0, len(specific)+len(commonTargets))
	targets = append(targets, specific...)
	targets = append(targets, commonTargets...)
	return targets
}

// IdentifyGaps flags every gap-rule nutrient whose intake is below its
// threshold fraction of the target.
func IdentifyGaps(calories float64, nutrients map[string]float64, targets []NutrientTarget) []NutrientGap {
	var gaps []NutrientGap
	for _, target := range targets {
		rule, ruled := gapRules[target.Nutrient]
		if !ruled {
			continue
		}
		consumed := nutrients[target.Nutrient]
		if target.Nutrient == "calories" {
			consumed = calories
		}
		if target.Target <= 0 || consumed >= target.Target*rule.Threshold {
			continue
		}
		gaps = append(gaps, NutrientGap{
			Nutrient: target.Nutrient,
			Consumed: round1(consumed),
			Target:   target.Target,
			Unit:     target.Unit,
			Percent:  round1(consumed / target.Target * 100),
			Priority: rule.Priority,
		})
	}
	return gaps
}

func (s *NutritionService) trimesterFor(userID string, at time.Time) int {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return 1
	}
	return user.TrimesterAt(at)
}
