// ABOUTME: Finite-state dialogue that collects a user profile step by step.
// ABOUTME: Validates each field, looks up weather on the city step, commits once.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/avolkov/aquacal/internal/engine"
	"github.com/avolkov/aquacal/internal/ledger"
	"github.com/avolkov/aquacal/internal/models"
)

// Step identifies the field the dialogue is currently collecting.
type Step string

const (
	StepWeight          Step = "weight"
	StepHeight          Step = "height"
	StepAge             Step = "age"
	StepGender          Step = "gender"
	StepActivityMinutes Step = "activity_minutes"
	StepActivityType    Step = "activity_type"
	StepCity            Step = "city"
	StepCalorieGoal     Step = "calorie_goal"
)

const (
	// CityDefaultSentinel assigns the default city with a fallback
	// temperature when the weather lookup keeps rejecting the input.
	CityDefaultSentinel = "+"
	// AutoCalorieSentinel asks for the calorie goal to be computed
	// from the collected profile.
	AutoCalorieSentinel = "-"

	fallbackTemperatureC = 20
)

// ErrNoSession is returned when input arrives for a user who is not
// mid-setup.
var ErrNoSession = errors.New("no active profile session")

// TemperatureProvider is the external weather lookup.
type TemperatureProvider interface {
	Temperature(ctx context.Context, city string) (float64, error)
}

// Session is the transient per-user setup state. It accumulates
// profile fields and is discarded once the profile commits.
type Session struct {
	Step       Step
	Profile    models.Profile
	LastActive time.Time
}

// Reply is what the transport renders back to the user.
type Reply struct {
	Text string
	// Options is non-empty when the step expects a menu selection.
	Options []string
	// Done is set when the profile has been committed; Profile then
	// carries the final record for summary rendering.
	Done    bool
	Profile *models.Profile
}

// Flow drives the profile-acquisition state machine for all users.
// Every operation for a given user runs under that user's lock, held
// for the whole step including the city-step weather lookup; different
// users proceed in parallel.
type Flow struct {
	ledger      *ledger.Ledger
	formula     engine.Formula
	weather     TemperatureProvider
	defaultCity string
	ttl         time.Duration

	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
}

// Option configures a Flow.
type Option func(*Flow)

// WithSessionTTL sets how long an abandoned session survives. Expiry
// is checked lazily on the next input; there are no timers.
func WithSessionTTL(ttl time.Duration) Option {
	return func(f *Flow) { f.ttl = ttl }
}

// WithDefaultCity sets the city assigned by the "+" sentinel.
func WithDefaultCity(city string) Option {
	return func(f *Flow) { f.defaultCity = city }
}

// New creates a Flow.
func New(l *ledger.Ledger, formula engine.Formula, weather TemperatureProvider, opts ...Option) *Flow {
	f := &Flow{
		ledger:      l,
		formula:     formula,
		weather:     weather,
		defaultCity: "Moscow",
		ttl:         30 * time.Minute,
		sessions:    make(map[int64]*Session),
		locks:       make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// userLock returns the mutex serializing one user's dialogue operations.
func (f *Flow) userLock(userID int64) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	lk, ok := f.locks[userID]
	if !ok {
		lk = &sync.Mutex{}
		f.locks[userID] = lk
	}
	return lk
}

// Start begins (or restarts) profile setup for a user and returns the
// first prompt. Any previous session is discarded.
func (f *Flow) Start(userID int64) Reply {
	lk := f.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	f.mu.Lock()
	f.sessions[userID] = &Session{Step: StepWeight, LastActive: time.Now()}
	f.mu.Unlock()

	return Reply{Text: "Enter your weight in kilograms:"}
}

// Active reports whether the user is mid-setup. Expired sessions are
// dropped here so stale free text falls through to command handling.
func (f *Flow) Active(userID int64) bool {
	lk := f.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[userID]
	if !ok {
		return false
	}
	if time.Since(s.LastActive) > f.ttl {
		delete(f.sessions, userID)
		return false
	}
	return true
}

// Cancel discards the user's session, if any.
func (f *Flow) Cancel(userID int64) {
	lk := f.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	f.mu.Lock()
	delete(f.sessions, userID)
	f.mu.Unlock()
}

// Step returns the user's current step, for transports that render
// step-specific affordances.
func (f *Flow) Step(userID int64) (Step, bool) {
	lk := f.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[userID]
	if !ok {
		return "", false
	}
	return s.Step, true
}

// Input feeds one message into the state machine. A validation failure
// keeps the session on the same step and re-prompts; only the absence
// of a session or an unexpected internal failure is an error. The
// user's lock is held for the whole step so concurrent transports
// (the MCP server dispatches tool calls on separate goroutines) never
// interleave on one session.
func (f *Flow) Input(ctx context.Context, userID int64, text string) (Reply, error) {
	lk := f.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	f.mu.Lock()
	s, ok := f.sessions[userID]
	if ok && time.Since(s.LastActive) > f.ttl {
		delete(f.sessions, userID)
		ok = false
	}
	f.mu.Unlock()
	if !ok {
		return Reply{}, ErrNoSession
	}

	text = strings.TrimSpace(text)
	s.LastActive = time.Now()

	switch s.Step {
	case StepWeight:
		return f.handleWeight(s, text), nil
	case StepHeight:
		return f.handleHeight(s, text), nil
	case StepAge:
		return f.handleAge(s, text), nil
	case StepGender:
		return f.handleGender(s, text), nil
	case StepActivityMinutes:
		return f.handleActivityMinutes(s, text), nil
	case StepActivityType:
		return f.handleActivityType(s, text), nil
	case StepCity:
		return f.handleCity(ctx, s, text), nil
	case StepCalorieGoal:
		return f.handleCalorieGoal(userID, s, text)
	default:
		return Reply{}, fmt.Errorf("unexpected dialogue step %q", s.Step)
	}
}

func (f *Flow) handleWeight(s *Session, text string) Reply {
	w, err := strconv.ParseFloat(text, 64)
	if err != nil || !isFinite(w) || w <= 0 {
		return Reply{Text: "Please enter your weight as a positive number."}
	}
	s.Profile.WeightKg = w
	s.Step = StepHeight
	return Reply{Text: "Enter your height in centimeters:"}
}

func (f *Flow) handleHeight(s *Session, text string) Reply {
	h, err := strconv.ParseFloat(text, 64)
	if err != nil || !isFinite(h) || h <= 0 {
		return Reply{Text: "Please enter your height as a positive number."}
	}
	s.Profile.HeightCm = h
	s.Step = StepAge
	return Reply{Text: "Enter your age in years:"}
}

func (f *Flow) handleAge(s *Session, text string) Reply {
	age, err := strconv.Atoi(text)
	if err != nil || age < 14 || age > 100 {
		return Reply{Text: "Please enter your age as a whole number from 14 to 100."}
	}
	s.Profile.AgeYears = age
	s.Step = StepGender
	return Reply{Text: "Enter your gender, male (m/м) or female (f/ж):"}
}

func (f *Flow) handleGender(s *Session, text string) Reply {
	g, err := models.ParseGender(text)
	if err != nil {
		return Reply{Text: "Please answer 'm' (male) or 'f' (female)."}
	}
	s.Profile.Gender = g
	s.Step = StepActivityMinutes
	return Reply{Text: "Enter your daily activity in minutes:"}
}

func (f *Flow) handleActivityMinutes(s *Session, text string) Reply {
	minutes, err := strconv.Atoi(text)
	if err != nil || minutes <= 0 || minutes > 1440 {
		return Reply{Text: "Please enter whole minutes per day, from 1 to 1440."}
	}
	s.Profile.ActivityMinutes = minutes
	s.Step = StepActivityType
	return Reply{
		Text:    "Pick your preferred activity type:",
		Options: activityOptions(),
	}
}

func (f *Flow) handleActivityType(s *Session, text string) Reply {
	at, err := models.ParseActivityType(text)
	if err != nil {
		return Reply{
			Text:    "Unknown activity, pick one of the options:",
			Options: activityOptions(),
		}
	}
	s.Profile.ActivityType = at
	s.Step = StepCity
	return Reply{Text: fmt.Sprintf(
		"You picked %s.\nEnter your city so I can check the temperature:", at)}
}

// handleCity resolves the city's current temperature and derives the
// water goal. A lookup failure re-prompts rather than defaulting; the
// "+" sentinel always succeeds with the default city and, if the
// lookup fails there too, a fixed fallback temperature.
func (f *Flow) handleCity(ctx context.Context, s *Session, text string) Reply {
	city := titleCase(text)
	sentinel := text == CityDefaultSentinel
	if sentinel {
		city = f.defaultCity
	}
	if city == "" {
		return Reply{Text: "Please enter a city name."}
	}

	temp, err := f.weather.Temperature(ctx, city)
	if err != nil {
		if !sentinel {
			return Reply{Text: "I couldn't find that city, try again.\n" +
				"If you are sure the name is right, send '+' to use the default city."}
		}
		temp = fallbackTemperatureC
	}

	s.Profile.City = city
	s.Profile.WaterGoalML = f.formula.WaterGoal(
		s.Profile.WeightKg, s.Profile.ActivityMinutes, temp)
	s.Step = StepCalorieGoal
	return Reply{Text: fmt.Sprintf(
		"It is %.0f°C in %s right now.\n"+
			"Enter your daily calorie goal (or send '-' to compute it automatically):",
		temp, city)}
}

func (f *Flow) handleCalorieGoal(userID int64, s *Session, text string) (Reply, error) {
	if text == AutoCalorieSentinel {
		s.Profile.CalorieGoalKcal = f.formula.CalorieGoal(s.Profile)
	} else {
		goal, err := strconv.ParseFloat(text, 64)
		if err != nil || !isFinite(goal) || goal < 0 {
			return Reply{Text: "Please enter a non-negative number of calories, or '-' to auto-compute."}, nil
		}
		s.Profile.CalorieGoalKcal = goal
	}

	if err := f.ledger.CommitProfile(userID, s.Profile); err != nil {
		return Reply{}, fmt.Errorf("commit profile for user %d: %w", userID, err)
	}

	f.mu.Lock()
	delete(f.sessions, userID)
	f.mu.Unlock()

	p := s.Profile
	return Reply{Text: Summary(p), Done: true, Profile: &p}, nil
}

// Summary renders a completed profile as user-facing text.
func Summary(p models.Profile) string {
	return fmt.Sprintf(
		"Your profile:\n"+
			"Weight: %.1f kg\n"+
			"Height: %.1f cm\n"+
			"Age: %d years\n"+
			"Gender: %s\n"+
			"Activity: %d minutes per day\n"+
			"Preferred activity: %s\n"+
			"City: %s\n"+
			"Water goal: %.0f ml\n"+
			"Calorie goal: %.0f kcal",
		p.WeightKg, p.HeightCm, p.AgeYears, p.Gender,
		p.ActivityMinutes, p.ActivityType, p.City,
		p.WaterGoalML, p.CalorieGoalKcal)
}

func activityOptions() []string {
	opts := make([]string, 0, len(models.AllActivityTypes))
	for _, at := range models.AllActivityTypes {
		opts = append(opts, string(at))
	}
	return opts
}

// isFinite rejects the NaN and infinity spellings ParseFloat accepts,
// which would otherwise slip past the sign checks.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// titleCase capitalizes the first letter of each word, so "nizhny
// novgorod" matches what the weather service expects.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
