// ABOUTME: User ledger owning all mutation of profiles and daily totals.
// ABOUTME: Serializes operations per user and recomputes goals via engine.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avolkov/aquacal/internal/engine"
	"github.com/avolkov/aquacal/internal/models"
	"github.com/avolkov/aquacal/internal/storage"
)

var (
	// ErrNotConfigured is returned when a user has no completed profile.
	ErrNotConfigured = errors.New("profile not configured")
	// ErrInvalidAmount is returned for non-positive logged amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// WaterProgress is the water part of a snapshot.
type WaterProgress struct {
	LoggedML    float64 `json:"logged_ml"`
	GoalML      float64 `json:"goal_ml"`
	RemainingML float64 `json:"remaining_ml"`
}

// CalorieProgress is the calorie part of a snapshot. Balance is net
// intake: logged minus burned, positive trends toward weight gain.
type CalorieProgress struct {
	LoggedKcal  float64 `json:"logged_kcal"`
	BurnedKcal  float64 `json:"burned_kcal"`
	GoalKcal    float64 `json:"goal_kcal"`
	BalanceKcal float64 `json:"balance_kcal"`
}

// Snapshot is a point-in-time view of a user's day.
type Snapshot struct {
	Water    WaterProgress   `json:"water"`
	Calories CalorieProgress `json:"calories"`
}

// Ledger owns all profile and totals mutation. Every operation for a
// given user runs under that user's lock; different users proceed in
// parallel.
type Ledger struct {
	store   storage.Store
	formula engine.Formula

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a Ledger over the given store and formula.
func New(store storage.Store, formula engine.Formula) *Ledger {
	return &Ledger{
		store:   store,
		formula: formula,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// userLock returns the mutex serializing one user's operations.
func (l *Ledger) userLock(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[userID]
	if !ok {
		lk = &sync.Mutex{}
		l.locks[userID] = lk
	}
	return lk
}

// load fetches a user record, mapping a missing record to ErrNotConfigured.
func (l *Ledger) load(userID int64) (*models.UserRecord, error) {
	rec, err := l.store.LoadUser(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return rec, nil
}

func (l *Ledger) save(userID int64, rec *models.UserRecord) error {
	rec.UpdatedAt = time.Now()
	if err := l.store.SaveUser(userID, rec); err != nil {
		return fmt.Errorf("save user %d: %w", userID, err)
	}
	return nil
}

func snapshot(rec *models.UserRecord) Snapshot {
	remaining := rec.Profile.WaterGoalML - rec.Totals.LoggedWaterML
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Water: WaterProgress{
			LoggedML:    rec.Totals.LoggedWaterML,
			GoalML:      rec.Profile.WaterGoalML,
			RemainingML: remaining,
		},
		Calories: CalorieProgress{
			LoggedKcal:  rec.Totals.LoggedCaloriesKcal,
			BurnedKcal:  rec.Totals.BurnedCaloriesKcal,
			GoalKcal:    rec.Profile.CalorieGoalKcal,
			BalanceKcal: rec.Totals.LoggedCaloriesKcal - rec.Totals.BurnedCaloriesKcal,
		},
	}
}

// CommitProfile installs a fully populated profile with zeroed totals.
// A re-run of setup replaces the record wholesale, discarding the
// prior day's counters; a profile mid-collection never reaches the
// ledger, so existing data stays usable until the new run completes.
func (l *Ledger) CommitProfile(userID int64, p models.Profile) error {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	return l.save(userID, &models.UserRecord{Profile: p})
}

// Profile returns the user's current profile.
func (l *Ledger) Profile(userID int64) (models.Profile, error) {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	rec, err := l.load(userID)
	if err != nil {
		return models.Profile{}, err
	}
	return rec.Profile, nil
}

// ApplyWater adds consumed water and returns the updated snapshot.
func (l *Ledger) ApplyWater(userID int64, amountML float64) (Snapshot, error) {
	if amountML <= 0 {
		return Snapshot{}, ErrInvalidAmount
	}

	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	rec, err := l.load(userID)
	if err != nil {
		return Snapshot{}, err
	}
	rec.Totals.LoggedWaterML += amountML
	if err := l.save(userID, rec); err != nil {
		return Snapshot{}, err
	}
	return snapshot(rec), nil
}

// ApplyFood adds consumed calories and returns the updated snapshot.
// Zero is allowed: an unknown product logs with no effect.
func (l *Ledger) ApplyFood(userID int64, calories float64) (Snapshot, error) {
	if calories < 0 {
		return Snapshot{}, ErrInvalidAmount
	}

	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	rec, err := l.load(userID)
	if err != nil {
		return Snapshot{}, err
	}
	rec.Totals.LoggedCaloriesKcal += calories
	if err := l.save(userID, rec); err != nil {
		return Snapshot{}, err
	}
	return snapshot(rec), nil
}

// ApplyWorkout adds burned calories and raises the water goal by the
// workout bonus. The goal only ever drops again on a new-day reset.
func (l *Ledger) ApplyWorkout(userID int64, caloriesBurned, bonusWaterML float64) (Snapshot, error) {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	rec, err := l.load(userID)
	if err != nil {
		return Snapshot{}, err
	}
	rec.Totals.BurnedCaloriesKcal += caloriesBurned
	rec.Profile.WaterGoalML += bonusWaterML
	if err := l.save(userID, rec); err != nil {
		return Snapshot{}, err
	}
	return snapshot(rec), nil
}

// Snapshot returns the current progress without mutating anything.
func (l *Ledger) Snapshot(userID int64) (Snapshot, error) {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	rec, err := l.load(userID)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshot(rec), nil
}

// RollNewDay archives the finished day, zeroes the running totals and
// recomputes the water goal for the new temperature. The calorie goal
// is untouched: it only changes on a full profile re-run.
func (l *Ledger) RollNewDay(userID int64, temperatureC float64) (Snapshot, *models.DayRecord, error) {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	rec, err := l.load(userID)
	if err != nil {
		return Snapshot{}, nil, err
	}

	prev := snapshot(rec)
	day := models.NewDayRecord(userID, rec.Profile, rec.Totals)
	if err := l.store.AppendDay(day); err != nil {
		return Snapshot{}, nil, fmt.Errorf("archive day for user %d: %w", userID, err)
	}

	rec.Totals = models.Totals{}
	rec.Profile.WaterGoalML = l.formula.WaterGoal(
		rec.Profile.WeightKg, rec.Profile.ActivityMinutes, temperatureC)
	if err := l.save(userID, rec); err != nil {
		return Snapshot{}, nil, err
	}
	return prev, day, nil
}

// History returns archived days, most recent first.
func (l *Ledger) History(userID int64, limit int) ([]*models.DayRecord, error) {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	if _, err := l.load(userID); err != nil {
		return nil, err
	}
	return l.store.ListDays(userID, limit)
}
