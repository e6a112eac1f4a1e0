// ABOUTME: Tests for ledger invariants over the memory store.
// ABOUTME: Covers accumulation, snapshots, day rollover and error paths.
package ledger

import (
	"errors"
	"testing"

	"github.com/avolkov/aquacal/internal/engine"
	"github.com/avolkov/aquacal/internal/models"
	"github.com/avolkov/aquacal/internal/storage"
)

func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(storage.NewMemoryStore(), engine.Default())
}

func configuredProfile() models.Profile {
	return models.Profile{
		WeightKg:        70,
		HeightCm:        170,
		AgeYears:        30,
		Gender:          models.GenderMale,
		ActivityMinutes: 60,
		ActivityType:    models.ActivityRunning,
		City:            "Moscow",
		WaterGoalML:     3100,
		CalorieGoalKcal: 2500,
	}
}

func TestOperationsRequireProfile(t *testing.T) {
	l := setupLedger(t)

	if _, err := l.ApplyWater(1, 200); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ApplyWater: expected ErrNotConfigured, got %v", err)
	}
	if _, err := l.ApplyFood(1, 100); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ApplyFood: expected ErrNotConfigured, got %v", err)
	}
	if _, err := l.Snapshot(1); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Snapshot: expected ErrNotConfigured, got %v", err)
	}
	if _, _, err := l.RollNewDay(1, 20); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("RollNewDay: expected ErrNotConfigured, got %v", err)
	}
	if _, err := l.Profile(1); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Profile: expected ErrNotConfigured, got %v", err)
	}
}

func TestApplyWater(t *testing.T) {
	l := setupLedger(t)
	if err := l.CommitProfile(1, configuredProfile()); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}

	snap, err := l.ApplyWater(1, 250)
	if err != nil {
		t.Fatalf("ApplyWater failed: %v", err)
	}
	if snap.Water.LoggedML != 250 {
		t.Errorf("LoggedML = %v, want 250", snap.Water.LoggedML)
	}
	if snap.Water.RemainingML != 2850 {
		t.Errorf("RemainingML = %v, want 2850", snap.Water.RemainingML)
	}

	// Remaining clamps at zero when the goal is exceeded.
	snap, err = l.ApplyWater(1, 5000)
	if err != nil {
		t.Fatalf("ApplyWater failed: %v", err)
	}
	if snap.Water.RemainingML != 0 {
		t.Errorf("RemainingML = %v, want 0", snap.Water.RemainingML)
	}
}

func TestApplyWaterInvalidAmount(t *testing.T) {
	l := setupLedger(t)
	if err := l.CommitProfile(1, configuredProfile()); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}

	for _, amount := range []float64{0, -1} {
		if _, err := l.ApplyWater(1, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ApplyWater(%v): expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	// A rejected amount leaves the totals untouched.
	snap, err := l.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Water.LoggedML != 0 {
		t.Errorf("LoggedML = %v after rejected amounts, want 0", snap.Water.LoggedML)
	}
}

func TestApplyFoodAllowsZero(t *testing.T) {
	l := setupLedger(t)
	if err := l.CommitProfile(1, configuredProfile()); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}

	// Unknown products log zero calories without failing.
	if _, err := l.ApplyFood(1, 0); err != nil {
		t.Errorf("ApplyFood(0) failed: %v", err)
	}
	if _, err := l.ApplyFood(1, -10); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ApplyFood(-10): expected ErrInvalidAmount, got %v", err)
	}
}

func TestApplyWorkoutRaisesWaterGoal(t *testing.T) {
	l := setupLedger(t)
	if err := l.CommitProfile(1, configuredProfile()); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}

	snap, err := l.ApplyWorkout(1, 450, 200)
	if err != nil {
		t.Fatalf("ApplyWorkout failed: %v", err)
	}
	if snap.Calories.BurnedKcal != 450 {
		t.Errorf("BurnedKcal = %v, want 450", snap.Calories.BurnedKcal)
	}
	if snap.Water.GoalML != 3300 {
		t.Errorf("GoalML = %v, want 3300", snap.Water.GoalML)
	}
	if snap.Calories.BalanceKcal != -450 {
		t.Errorf("BalanceKcal = %v, want -450", snap.Calories.BalanceKcal)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	l := setupLedger(t)
	if err := l.CommitProfile(1, configuredProfile()); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}
	if _, err := l.ApplyWater(1, 300); err != nil {
		t.Fatalf("ApplyWater failed: %v", err)
	}

	first, err := l.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	second, err := l.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if first != second {
		t.Errorf("snapshots differ without intervening writes: %+v vs %+v", first, second)
	}
}

func TestRollNewDay(t *testing.T) {
	l := setupLedger(t)
	p := configuredProfile()
	if err := l.CommitProfile(1, p); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}
	if _, err := l.ApplyWater(1, 500); err != nil {
		t.Fatalf("ApplyWater failed: %v", err)
	}
	if _, err := l.ApplyFood(1, 800); err != nil {
		t.Fatalf("ApplyFood failed: %v", err)
	}
	if _, err := l.ApplyWorkout(1, 450, 200); err != nil {
		t.Fatalf("ApplyWorkout failed: %v", err)
	}

	prev, day, err := l.RollNewDay(1, 30)
	if err != nil {
		t.Fatalf("RollNewDay failed: %v", err)
	}
	if prev.Water.LoggedML != 500 || prev.Calories.LoggedKcal != 800 || prev.Calories.BurnedKcal != 450 {
		t.Errorf("previous-day snapshot wrong: %+v", prev)
	}
	if day.WaterLoggedML != 500 || day.CaloriesBurned != 450 {
		t.Errorf("day record wrong: %+v", day)
	}

	snap, err := l.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Water.LoggedML != 0 || snap.Calories.LoggedKcal != 0 || snap.Calories.BurnedKcal != 0 {
		t.Errorf("totals not zeroed: %+v", snap)
	}
	// Water goal recomputed from formula: 70*30 + 2*500 + 500 = 3600,
	// workout bonus gone.
	if snap.Water.GoalML != 3600 {
		t.Errorf("GoalML = %v, want 3600", snap.Water.GoalML)
	}
	// Calorie goal survives the rollover.
	if snap.Calories.GoalKcal != 2500 {
		t.Errorf("GoalKcal = %v, want 2500", snap.Calories.GoalKcal)
	}

	days, err := l.History(1, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(days) != 1 {
		t.Errorf("expected 1 archived day, got %d", len(days))
	}
}

func TestCommitProfileResetsTotals(t *testing.T) {
	l := setupLedger(t)
	if err := l.CommitProfile(1, configuredProfile()); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}
	if _, err := l.ApplyWater(1, 500); err != nil {
		t.Fatalf("ApplyWater failed: %v", err)
	}

	if err := l.CommitProfile(1, configuredProfile()); err != nil {
		t.Fatalf("CommitProfile failed: %v", err)
	}
	snap, err := l.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Water.LoggedML != 0 {
		t.Errorf("re-running setup should zero totals, got %v", snap.Water.LoggedML)
	}
}
