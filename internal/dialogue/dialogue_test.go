// ABOUTME: Tests for the profile setup state machine.
// ABOUTME: Walks the happy path and exercises every validation branch.
package dialogue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avolkov/aquacal/internal/engine"
	"github.com/avolkov/aquacal/internal/ledger"
	"github.com/avolkov/aquacal/internal/storage"
)

type fakeWeather struct {
	temp float64
	err  error
	city string
}

func (f *fakeWeather) Temperature(_ context.Context, city string) (float64, error) {
	f.city = city
	return f.temp, f.err
}

func setupFlow(t *testing.T, weather TemperatureProvider, opts ...Option) (*Flow, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(storage.NewMemoryStore(), engine.Default())
	return New(l, engine.Default(), weather, opts...), l
}

func mustInput(t *testing.T, f *Flow, userID int64, text string) Reply {
	t.Helper()
	r, err := f.Input(context.Background(), userID, text)
	if err != nil {
		t.Fatalf("Input(%q) failed: %v", text, err)
	}
	return r
}

func TestFullWalkthrough(t *testing.T) {
	w := &fakeWeather{temp: 30}
	f, l := setupFlow(t, w)

	f.Start(1)
	mustInput(t, f, 1, "70")
	mustInput(t, f, 1, "170")
	mustInput(t, f, 1, "30")
	mustInput(t, f, 1, "м")

	r := mustInput(t, f, 1, "60")
	if len(r.Options) != 4 {
		t.Fatalf("expected 4 activity options, got %v", r.Options)
	}

	mustInput(t, f, 1, "running")
	mustInput(t, f, 1, "moscow")
	if w.city != "Moscow" {
		t.Errorf("city not title-cased for lookup: %q", w.city)
	}

	r = mustInput(t, f, 1, "-")
	if !r.Done {
		t.Fatal("expected dialogue to complete")
	}
	if r.Profile == nil {
		t.Fatal("expected completed profile in reply")
	}

	p, err := l.Profile(1)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	// 70*30 + 2*500 + 500 (30°C) = 3600.
	if p.WaterGoalML != 3600 {
		t.Errorf("WaterGoalML = %v, want 3600", p.WaterGoalML)
	}
	// 700 + 1062.5 + 150 + 5 + 600 = 2517.5.
	if p.CalorieGoalKcal != 2517.5 {
		t.Errorf("CalorieGoalKcal = %v, want 2517.5", p.CalorieGoalKcal)
	}
	if p.City != "Moscow" {
		t.Errorf("City = %q, want Moscow", p.City)
	}

	// Session is discarded on completion.
	if f.Active(1) {
		t.Error("session should be gone after completion")
	}
}

func TestManualCalorieGoal(t *testing.T) {
	f, l := setupFlow(t, &fakeWeather{temp: 10})

	f.Start(1)
	for _, in := range []string{"70", "170", "30", "ж", "45", "yoga", "Kazan"} {
		mustInput(t, f, 1, in)
	}

	r := mustInput(t, f, 1, "1900")
	if !r.Done {
		t.Fatal("expected completion")
	}
	p, err := l.Profile(1)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.CalorieGoalKcal != 1900 {
		t.Errorf("CalorieGoalKcal = %v, want 1900", p.CalorieGoalKcal)
	}
}

func TestValidationKeepsStep(t *testing.T) {
	f, _ := setupFlow(t, &fakeWeather{temp: 20})
	f.Start(1)

	cases := []struct {
		step    Step
		bad     []string
		advance string
	}{
		{StepWeight, []string{"0", "-5", "abc", "NaN", "+Inf"}, "70"},
		{StepHeight, []string{"0", "x", "nan", "Inf"}, "170"},
		{StepAge, []string{"13", "101", "30.5"}, "30"},
		{StepGender, []string{"x", "7"}, "м"},
		{StepActivityMinutes, []string{"0", "1441", "30.5"}, "60"},
		{StepActivityType, []string{"parkour", "5"}, "running"},
	}

	for _, c := range cases {
		for _, bad := range c.bad {
			mustInput(t, f, 1, bad)
			if got, _ := f.Step(1); got != c.step {
				t.Fatalf("input %q at %s advanced to %s", bad, c.step, got)
			}
		}
		mustInput(t, f, 1, c.advance)
	}
}

func TestCityLookupFailureReprompts(t *testing.T) {
	w := &fakeWeather{err: errors.New("boom")}
	f, _ := setupFlow(t, w, WithDefaultCity("Moscow"))

	f.Start(1)
	for _, in := range []string{"70", "170", "30", "м", "60", "running"} {
		mustInput(t, f, 1, in)
	}

	mustInput(t, f, 1, "Atlantis")
	if got, _ := f.Step(1); got != StepCity {
		t.Fatalf("lookup failure should keep the city step, got %s", got)
	}

	// The sentinel always succeeds, falling back to 20°C.
	r := mustInput(t, f, 1, "+")
	if got, _ := f.Step(1); got != StepCalorieGoal {
		t.Fatalf("sentinel should advance to calorie goal, got %s", got)
	}
	if r.Text == "" {
		t.Error("expected a prompt after the sentinel")
	}

	r = mustInput(t, f, 1, "-")
	if !r.Done {
		t.Fatal("expected completion")
	}
	// 70*30 + 2*500, no hot bonus at the 20°C fallback.
	if r.Profile.WaterGoalML != 3100 {
		t.Errorf("WaterGoalML = %v, want 3100", r.Profile.WaterGoalML)
	}
	if r.Profile.City != "Moscow" {
		t.Errorf("City = %q, want default Moscow", r.Profile.City)
	}
}

func TestCalorieGoalRejectsNonFinite(t *testing.T) {
	f, _ := setupFlow(t, &fakeWeather{temp: 20})
	f.Start(1)
	for _, in := range []string{"70", "170", "30", "м", "60", "running", "Moscow"} {
		mustInput(t, f, 1, in)
	}

	for _, bad := range []string{"NaN", "+Inf", "-Inf", "-100"} {
		mustInput(t, f, 1, bad)
		if got, _ := f.Step(1); got != StepCalorieGoal {
			t.Fatalf("input %q advanced past the calorie goal step to %s", bad, got)
		}
	}

	r := mustInput(t, f, 1, "2000")
	if !r.Done {
		t.Fatal("expected completion after a finite goal")
	}
}

func TestConcurrentInputsSerialized(t *testing.T) {
	f, _ := setupFlow(t, &fakeWeather{temp: 20})
	f.Start(1)

	// All inputs race on one session. "70" is a valid weight, height
	// and age but never a gender, so any serial order lands on the
	// gender step with the same accumulated profile.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Input(context.Background(), 1, "70"); err != nil {
				t.Errorf("Input failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got, _ := f.Step(1); got != StepGender {
		t.Errorf("after 8 serialized inputs step = %s, want %s", got, StepGender)
	}
}

func TestNoSession(t *testing.T) {
	f, _ := setupFlow(t, &fakeWeather{})

	_, err := f.Input(context.Background(), 1, "70")
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	f, _ := setupFlow(t, &fakeWeather{}, WithSessionTTL(10*time.Millisecond))

	f.Start(1)
	mustInput(t, f, 1, "70")
	time.Sleep(20 * time.Millisecond)

	if f.Active(1) {
		t.Error("session should have expired")
	}
	if _, err := f.Input(context.Background(), 1, "170"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after expiry, got %v", err)
	}
}

func TestRestartDiscardsProgress(t *testing.T) {
	f, _ := setupFlow(t, &fakeWeather{})

	f.Start(1)
	mustInput(t, f, 1, "70")
	f.Start(1)

	if got, _ := f.Step(1); got != StepWeight {
		t.Errorf("restart should reset to weight step, got %s", got)
	}
}
