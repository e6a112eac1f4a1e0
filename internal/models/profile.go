// ABOUTME: Profile, Totals and DayRecord models for intake tracking.
// ABOUTME: UserRecord is the unit of storage, one per user identifier.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the fixed biometric and preference data for a user.
// A Profile only exists fully populated; the setup dialogue commits it
// in one piece once every field has been collected.
type Profile struct {
	WeightKg        float64      `json:"weight_kg"`
	HeightCm        float64      `json:"height_cm"`
	AgeYears        int          `json:"age_years"`
	Gender          Gender       `json:"gender"`
	ActivityMinutes int          `json:"activity_minutes"`
	ActivityType    ActivityType `json:"activity_type"`
	City            string       `json:"city"`
	WaterGoalML     float64      `json:"water_goal_ml"`
	CalorieGoalKcal float64      `json:"calorie_goal_kcal"`
}

// Totals are the running counters for the current day. They reset to
// zero when the day rolls over.
type Totals struct {
	LoggedWaterML      float64 `json:"logged_water_ml"`
	LoggedCaloriesKcal float64 `json:"logged_calories_kcal"`
	BurnedCaloriesKcal float64 `json:"burned_calories_kcal"`
}

// UserRecord is the per-user storage unit: profile plus today's totals.
type UserRecord struct {
	Profile   Profile   `json:"profile"`
	Totals    Totals    `json:"totals"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayRecord archives one finished day at the moment of a new-day reset.
type DayRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          int64     `json:"user_id"`
	Date            time.Time `json:"date"`
	WaterLoggedML   float64   `json:"water_logged_ml"`
	WaterGoalML     float64   `json:"water_goal_ml"`
	CaloriesLogged  float64   `json:"calories_logged"`
	CaloriesBurned  float64   `json:"calories_burned"`
	CalorieGoalKcal float64   `json:"calorie_goal_kcal"`
	WaterGoalMet    bool      `json:"water_goal_met"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewDayRecord creates a DayRecord with generated UUID and current timestamp.
func NewDayRecord(userID int64, p Profile, t Totals) *DayRecord {
	now := time.Now()
	return &DayRecord{
		ID:              uuid.New(),
		UserID:          userID,
		Date:            now,
		WaterLoggedML:   t.LoggedWaterML,
		WaterGoalML:     p.WaterGoalML,
		CaloriesLogged:  t.LoggedCaloriesKcal,
		CaloriesBurned:  t.BurnedCaloriesKcal,
		CalorieGoalKcal: p.CalorieGoalKcal,
		WaterGoalMet:    t.LoggedWaterML >= p.WaterGoalML,
		CreatedAt:       now,
	}
}
