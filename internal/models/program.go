package models

import (
	"fmt"
	"time"
)

// DaysPerWeek is the fixed number of sections in every program.
const DaysPerWeek = 7

// Weekdays are the fixed section labels, in program order.
var Weekdays = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Difficulty is the trainer-assigned difficulty of a program.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("invalid difficulty %q", s)
	}
	return d, nil
}

// Focus is a program focus tag.
type Focus string

const (
	FocusStrength    Focus = "strength"
	FocusCardio      Focus = "cardio"
	FocusFlexibility Focus = "flexibility"
	FocusBalance     Focus = "balance"
	FocusMixed       Focus = "mixed"
)

// Focuses lists the selectable focus tags in display order.
var Focuses = []Focus{FocusStrength, FocusCardio, FocusFlexibility, FocusBalance, FocusMixed}

// Valid reports whether f is one of the known focus tags.
func (f Focus) Valid() bool {
	for _, known := range Focuses {
		if f == known {
			return true
		}
	}
	return false
}

// Set is one unit of work within an exercise. Exactly one of Reps and Time
// is non-nil, chosen by the exercise type.
type Set struct {
	SetNumber int  `json:"set_number"`
	Reps      *int `json:"reps"`
	Time      *int `json:"time"`
	Rest      int  `json:"rest"`
}

// Exercise is a template instance placed in a day.
type Exercise struct {
	TemplateID int          `json:"template_id,omitempty"`
	Name       string       `json:"name"`
	Type       ExerciseType `json:"exercise_type"`
	Sets       []Set        `json:"sets"`
}

// DaySection is one weekday slot of a program.
type DaySection struct {
	Weekday   string     `json:"format"`
	Subtitle  string     `json:"type"`
	IsRestDay bool       `json:"is_rest_day"`
	Exercises []Exercise `json:"exercises"`
}

// IsRest reports whether the day counts as a rest day. A day without
// exercises is a rest day whatever its flag says.
func (s DaySection) IsRest() bool {
	return len(s.Exercises) == 0 || s.IsRestDay
}

// Program is a trainer-authored 7-day program.
type Program struct {
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Focus         []Focus                 `json:"focus"`
	Difficulty    Difficulty              `json:"difficulty"`
	SessionLength int                     `json:"session_length"`
	Sections      [DaysPerWeek]DaySection `json:"sections"`
}

// ProgramSummary is the Program Service representation of a stored program.
type ProgramSummary struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Focus           FocusList  `json:"focus"`
	Difficulty      Difficulty `json:"difficulty"`
	WeeklyFrequency int        `json:"weekly_frequency"`
	SessionLength   int        `json:"session_length"`
	IsSubscription  bool       `json:"is_subscription"`
	IsPublished     bool       `json:"is_published"`
	Trainer         *int       `json:"trainer,omitempty"`
	TrainerName     string     `json:"trainer_name,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}
