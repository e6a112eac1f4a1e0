// ABOUTME: Tests for the goal and workout formulas.
// ABOUTME: Covers worked scenarios, monotonicity and boundary blocks.
package engine

import (
	"errors"
	"testing"

	"github.com/avolkov/aquacal/internal/models"
)

func TestWaterGoalScenario(t *testing.T) {
	f := Default()

	// 70 kg, 60 min activity, 30°C: 70*30 + 2*500 + 500 = 3600.
	got := f.WaterGoal(70, 60, 30)
	if got != 3600 {
		t.Errorf("WaterGoal(70, 60, 30) = %v, want 3600", got)
	}
}

func TestWaterGoalTemperatureThreshold(t *testing.T) {
	f := Default()

	cool := f.WaterGoal(70, 60, 25)
	hot := f.WaterGoal(70, 60, 25.1)
	if hot-cool != 500 {
		t.Errorf("crossing 25°C should add exactly 500 ml, got %v", hot-cool)
	}
}

func TestWaterGoalMonotonic(t *testing.T) {
	f := Default()

	prev := 0.0
	for w := 40.0; w <= 120; w += 5 {
		g := f.WaterGoal(w, 30, 20)
		if g < prev {
			t.Fatalf("WaterGoal not monotonic in weight at %v kg", w)
		}
		prev = g
	}

	prev = 0
	for m := 0; m <= 240; m += 10 {
		g := f.WaterGoal(70, m, 20)
		if g < prev {
			t.Fatalf("WaterGoal not monotonic in activity at %d min", m)
		}
		prev = g
	}
}

func TestCalorieGoal(t *testing.T) {
	f := Default()

	p := models.Profile{
		WeightKg:        70,
		HeightCm:        170,
		AgeYears:        30,
		Gender:          models.GenderMale,
		ActivityMinutes: 60,
		ActivityType:    models.ActivityRunning,
	}
	// 700 + 1062.5 + 150 + 5 + 60*10 = 2517.5
	if got := f.CalorieGoal(p); got != 2517.5 {
		t.Errorf("CalorieGoal male = %v, want 2517.5", got)
	}

	p.Gender = models.GenderFemale
	// Male offset +5, female -161: difference of 166.
	if diff := f.CalorieGoal(models.Profile{
		WeightKg: 70, HeightCm: 170, AgeYears: 30, Gender: models.GenderMale,
		ActivityMinutes: 60, ActivityType: models.ActivityRunning,
	}) - f.CalorieGoal(p); diff != 166 {
		t.Errorf("gender offset difference = %v, want 166", diff)
	}
}

func TestWorkoutEffect(t *testing.T) {
	f := Default()

	cases := []struct {
		activity     models.ActivityType
		minutes      int
		wantCalories float64
		wantWater    float64
	}{
		{models.ActivityRunning, 45, 450, 200},
		{models.ActivityRunning, 29, 290, 0},
		{models.ActivityRunning, 30, 300, 200},
		{models.ActivityRunning, 59, 590, 200},
		{models.ActivityRunning, 60, 600, 400},
		{models.ActivityYoga, 90, 270, 450},
		{models.ActivitySwimming, 30, 240, 250},
		{models.ActivityStrength, 40, 240, 200},
	}

	for _, c := range cases {
		eff, err := f.WorkoutEffect(c.activity, c.minutes)
		if err != nil {
			t.Fatalf("WorkoutEffect(%s, %d) failed: %v", c.activity, c.minutes, err)
		}
		if eff.CaloriesBurned != c.wantCalories {
			t.Errorf("WorkoutEffect(%s, %d) calories = %v, want %v",
				c.activity, c.minutes, eff.CaloriesBurned, c.wantCalories)
		}
		if eff.BonusWaterML != c.wantWater {
			t.Errorf("WorkoutEffect(%s, %d) water = %v, want %v",
				c.activity, c.minutes, eff.BonusWaterML, c.wantWater)
		}
	}
}

func TestWorkoutEffectUnknownActivity(t *testing.T) {
	f := Default()

	_, err := f.WorkoutEffect(models.ActivityType("crossfit"), 30)
	if !errors.Is(err, models.ErrUnknownActivity) {
		t.Errorf("expected ErrUnknownActivity, got %v", err)
	}
}
