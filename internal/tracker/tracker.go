// ABOUTME: Progress and day-cycle operations over the ledger.
// ABOUTME: Wires the external lookups into logging and the new-day reset.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avolkov/aquacal/internal/engine"
	"github.com/avolkov/aquacal/internal/ledger"
	"github.com/avolkov/aquacal/internal/models"
)

// DefaultFoodWeightG is assumed when a food log omits the weight.
const DefaultFoodWeightG = 100

// TemperatureProvider is the external weather lookup.
type TemperatureProvider interface {
	Temperature(ctx context.Context, city string) (float64, error)
}

// CalorieLookup is the external food-composition lookup. A product
// that cannot be found yields zero calories, not an error.
type CalorieLookup interface {
	Calories(ctx context.Context, product string, weightG float64) (float64, error)
}

// Tracker exposes the user-visible logging and reporting operations.
type Tracker struct {
	ledger  *ledger.Ledger
	formula engine.Formula
	weather TemperatureProvider
	food    CalorieLookup
}

// New creates a Tracker.
func New(l *ledger.Ledger, formula engine.Formula, weather TemperatureProvider, food CalorieLookup) *Tracker {
	return &Tracker{ledger: l, formula: formula, weather: weather, food: food}
}

// WaterLog is the result of logging water.
type WaterLog struct {
	AddedML     float64
	LoggedML    float64
	RemainingML float64
}

// LogWater records consumed water.
func (t *Tracker) LogWater(userID int64, amountML float64) (WaterLog, error) {
	snap, err := t.ledger.ApplyWater(userID, amountML)
	if err != nil {
		return WaterLog{}, err
	}
	return WaterLog{
		AddedML:     amountML,
		LoggedML:    snap.Water.LoggedML,
		RemainingML: snap.Water.RemainingML,
	}, nil
}

// FoodLog is the result of logging food.
type FoodLog struct {
	Product    string
	WeightG    float64
	Calories   float64
	LoggedKcal float64
}

// LogFood looks up the product's calories and records them. A weight
// of zero means the 100 g default. Unknown products log zero calories.
func (t *Tracker) LogFood(ctx context.Context, userID int64, product string, weightG float64) (FoodLog, error) {
	if weightG < 0 {
		return FoodLog{}, ledger.ErrInvalidAmount
	}
	if weightG == 0 {
		weightG = DefaultFoodWeightG
	}
	product = strings.ToLower(strings.TrimSpace(product))
	if product == "" {
		return FoodLog{}, fmt.Errorf("%w: empty product name", ledger.ErrInvalidAmount)
	}

	// Check the profile before the remote call so an unconfigured user
	// fails fast without a network round trip.
	if _, err := t.ledger.Profile(userID); err != nil {
		return FoodLog{}, err
	}

	calories, err := t.food.Calories(ctx, product, weightG)
	if err != nil {
		return FoodLog{}, fmt.Errorf("food lookup for %q: %w", product, err)
	}

	snap, err := t.ledger.ApplyFood(userID, calories)
	if err != nil {
		return FoodLog{}, err
	}
	return FoodLog{
		Product:    product,
		WeightG:    weightG,
		Calories:   calories,
		LoggedKcal: snap.Calories.LoggedKcal,
	}, nil
}

// WorkoutLog is the result of logging a workout.
type WorkoutLog struct {
	Activity       models.ActivityType
	Minutes        int
	CaloriesBurned float64
	BonusWaterML   float64
	WaterGoalML    float64
}

// LogWorkout computes the workout effect and applies it.
func (t *Tracker) LogWorkout(userID int64, activity string, minutes int) (WorkoutLog, error) {
	if minutes <= 0 {
		return WorkoutLog{}, fmt.Errorf("%w: duration must be positive minutes", ledger.ErrInvalidAmount)
	}
	at, err := models.ParseActivityType(activity)
	if err != nil {
		return WorkoutLog{}, err
	}

	eff, err := t.formula.WorkoutEffect(at, minutes)
	if err != nil {
		return WorkoutLog{}, err
	}

	snap, err := t.ledger.ApplyWorkout(userID, eff.CaloriesBurned, eff.BonusWaterML)
	if err != nil {
		return WorkoutLog{}, err
	}
	return WorkoutLog{
		Activity:       at,
		Minutes:        minutes,
		CaloriesBurned: eff.CaloriesBurned,
		BonusWaterML:   eff.BonusWaterML,
		WaterGoalML:    snap.Water.GoalML,
	}, nil
}

// Progress is the current snapshot plus the numeric series an external
// presentation layer renders as charts.
type Progress struct {
	Snapshot ledger.Snapshot
	// WaterSeries is [logged, remaining].
	WaterSeries [2]float64
	// CalorieSeries is [logged, burned, goal].
	CalorieSeries [3]float64
}

// CheckProgress returns the current day's progress.
func (t *Tracker) CheckProgress(userID int64) (Progress, error) {
	snap, err := t.ledger.Snapshot(userID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Snapshot:      snap,
		WaterSeries:   [2]float64{snap.Water.LoggedML, snap.Water.RemainingML},
		CalorieSeries: [3]float64{snap.Calories.LoggedKcal, snap.Calories.BurnedKcal, snap.Calories.GoalKcal},
	}, nil
}

// DayRoll is the result of a new-day reset.
type DayRoll struct {
	Previous       ledger.Snapshot
	Record         *models.DayRecord
	City           string
	TemperatureC   float64
	NewWaterGoalML float64
}

// Summary renders the finished day as user-facing text.
func (d DayRoll) Summary() string {
	var b strings.Builder
	b.WriteString("Yesterday's results:\n")
	if d.Previous.Water.RemainingML == 0 {
		fmt.Fprintf(&b, "Water goal of %.0f ml met.\n", d.Previous.Water.GoalML)
	} else {
		fmt.Fprintf(&b, "Water goal missed by %.0f ml.\n", d.Previous.Water.RemainingML)
	}
	balance := d.Previous.Calories.BalanceKcal
	switch {
	case balance > 0:
		fmt.Fprintf(&b, "Calorie balance +%.0f kcal, expect weight gain.", balance)
	case balance < 0:
		fmt.Fprintf(&b, "Calorie balance %.0f kcal, expect weight loss.", balance)
	default:
		b.WriteString("Calorie balance neutral, expect stable weight.")
	}
	return b.String()
}

// NewDay archives the finished day and starts a fresh one, refetching
// the temperature to recompute the water goal.
func (t *Tracker) NewDay(ctx context.Context, userID int64) (DayRoll, error) {
	p, err := t.ledger.Profile(userID)
	if err != nil {
		return DayRoll{}, err
	}

	temp, err := t.weather.Temperature(ctx, p.City)
	if err != nil {
		return DayRoll{}, fmt.Errorf("weather lookup for %q: %w", p.City, err)
	}

	prev, rec, err := t.ledger.RollNewDay(userID, temp)
	if err != nil {
		return DayRoll{}, err
	}
	return DayRoll{
		Previous:       prev,
		Record:         rec,
		City:           p.City,
		TemperatureC:   temp,
		NewWaterGoalML: t.formula.WaterGoal(p.WeightKg, p.ActivityMinutes, temp),
	}, nil
}

// ProfileInfo returns the user's current profile.
func (t *Tracker) ProfileInfo(userID int64) (models.Profile, error) {
	return t.ledger.Profile(userID)
}

// History returns archived days, most recent first.
func (t *Tracker) History(userID int64, limit int) ([]*models.DayRecord, error) {
	return t.ledger.History(userID, limit)
}

// IsNotConfigured reports whether err means the user must run setup.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ledger.ErrNotConfigured)
}
