// ABOUTME: Deterministic formulas for water goal, calorie goal and workouts.
// ABOUTME: Constants live on Formula so the numeric policy is swappable.
package engine

import (
	"fmt"

	"github.com/avolkov/aquacal/internal/models"
)

// Formula bundles every numeric constant the goal calculations use.
// Changing the policy (for example a different per-minute rate for
// strength training) is a one-line edit to Default.
type Formula struct {
	// WaterPerKgML is the base daily water in ml per kg of body weight.
	WaterPerKgML float64
	// ActivityWaterML is added per full 30 minutes of daily activity.
	ActivityWaterML float64
	// HotCutoffC and HotBonusML add extra water above a temperature.
	HotCutoffC float64
	HotBonusML float64

	// CalorieRates are kcal burned per minute by activity type.
	CalorieRates map[models.ActivityType]float64
	// WorkoutWaterML is the bonus water per full 30 minutes of workout.
	WorkoutWaterML map[models.ActivityType]float64
	// GenderOffsets are the Mifflin-St Jeor constants.
	GenderOffsets map[models.Gender]float64
}

// Default returns the canonical formula set.
func Default() Formula {
	return Formula{
		WaterPerKgML:    30,
		ActivityWaterML: 500,
		HotCutoffC:      25,
		HotBonusML:      500,
		CalorieRates: map[models.ActivityType]float64{
			models.ActivityRunning:  10,
			models.ActivitySwimming: 8,
			models.ActivityStrength: 6,
			models.ActivityYoga:     3,
		},
		WorkoutWaterML: map[models.ActivityType]float64{
			models.ActivityRunning:  200,
			models.ActivityYoga:     150,
			models.ActivitySwimming: 250,
			models.ActivityStrength: 200,
		},
		GenderOffsets: map[models.Gender]float64{
			models.GenderMale:   5,
			models.GenderFemale: -161,
		},
	}
}

// WaterGoal computes the daily water target in milliliters.
func (f Formula) WaterGoal(weightKg float64, activityMinutes int, temperatureC float64) float64 {
	goal := weightKg*f.WaterPerKgML + float64(activityMinutes/30)*f.ActivityWaterML
	if temperatureC > f.HotCutoffC {
		goal += f.HotBonusML
	}
	return goal
}

// CalorieGoal computes the daily calorie target in kcal from the
// Mifflin-St Jeor base plus an activity contribution.
func (f Formula) CalorieGoal(p models.Profile) float64 {
	bmr := p.WeightKg*10 + p.HeightCm*6.25 + float64(p.AgeYears)*5 + f.GenderOffsets[p.Gender]
	return bmr + float64(p.ActivityMinutes)*f.CalorieRates[p.ActivityType]
}

// Effect is the result of a single logged workout.
type Effect struct {
	CaloriesBurned float64
	BonusWaterML   float64
}

// WorkoutEffect computes calories burned and the water bonus for a
// workout. An unknown activity type is a validation error, never a
// silent zero.
func (f Formula) WorkoutEffect(activity models.ActivityType, durationMinutes int) (Effect, error) {
	rate, ok := f.CalorieRates[activity]
	if !ok {
		return Effect{}, fmt.Errorf("%w: %s", models.ErrUnknownActivity, activity)
	}
	return Effect{
		CaloriesBurned: float64(durationMinutes) * rate,
		BonusWaterML:   float64(durationMinutes/30) * f.WorkoutWaterML[activity],
	}, nil
}
