// ABOUTME: ActivityType and Gender enums with input normalization.
// ABOUTME: Accepts canonical English names plus the Russian bot aliases.
package models

import (
	"errors"
	"strings"
)

// ActivityType represents the kind of exercise a user prefers or logs.
type ActivityType string

const (
	ActivityRunning  ActivityType = "running"
	ActivityYoga     ActivityType = "yoga"
	ActivitySwimming ActivityType = "swimming"
	ActivityStrength ActivityType = "strength"
)

// AllActivityTypes returns all valid activity types.
var AllActivityTypes = []ActivityType{
	ActivityRunning, ActivityYoga, ActivitySwimming, ActivityStrength,
}

// ErrUnknownActivity is returned when an activity selector is not one
// of the four known types.
var ErrUnknownActivity = errors.New("unknown activity type")

// activityAliases maps accepted spellings to canonical types. The bot
// historically ran in Russian, so those forms stay accepted.
var activityAliases = map[string]ActivityType{
	"running":  ActivityRunning,
	"run":      ActivityRunning,
	"бег":      ActivityRunning,
	"yoga":     ActivityYoga,
	"йога":     ActivityYoga,
	"swimming": ActivitySwimming,
	"swim":     ActivitySwimming,
	"плавание": ActivitySwimming,
	"strength": ActivityStrength,
	"lift":     ActivityStrength,
	"силовая":  ActivityStrength,
}

// ParseActivityType normalizes user input into an ActivityType.
func ParseActivityType(s string) (ActivityType, error) {
	at, ok := activityAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrUnknownActivity
	}
	return at, nil
}

// Gender is used by the calorie goal formula.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ErrUnknownGender is returned for gender input outside the accepted forms.
var ErrUnknownGender = errors.New("unknown gender")

var genderAliases = map[string]Gender{
	"male":   GenderMale,
	"m":      GenderMale,
	"м":      GenderMale,
	"female": GenderFemale,
	"f":      GenderFemale,
	"ж":      GenderFemale,
}

// ParseGender normalizes user input into a Gender.
func ParseGender(s string) (Gender, error) {
	g, ok := genderAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrUnknownGender
	}
	return g, nil
}
