// Package editor holds the program draft and its pure state transitions.
// Every operation returns a new draft that shares no slices with its input.
package editor

import (
	"fmt"
	"unicode/utf8"

	"github.com/claude/fitplan/internal/models"
)

// MaxSubtitleLen is the longest accepted day subtitle, in characters.
const MaxSubtitleLen = 30

const defaultSessionLength = 45

// NewDraft returns an empty program: seven rest days with no exercises.
func NewDraft() models.Program {
	p := models.Program{
		Difficulty:    models.DifficultyBeginner,
		SessionLength: defaultSessionLength,
	}
	for i := range p.Sections {
		p.Sections[i] = models.DaySection{Weekday: models.Weekdays[i]}
	}
	return p
}

// FromSummary seeds a draft from a stored program. The Program Service does
// not return sections, so every day starts empty.
func FromSummary(s models.ProgramSummary) models.Program {
	p := NewDraft()
	p.Name = s.Name
	p.Description = s.Description
	p.Focus = append([]models.Focus(nil), s.Focus...)
	if s.Difficulty.Valid() {
		p.Difficulty = s.Difficulty
	}
	if s.SessionLength > 0 {
		p.SessionLength = s.SessionLength
	}
	return p
}

// DetailsOnly returns p's metadata over an empty week.
func DetailsOnly(p models.Program) models.Program {
	out := NewDraft()
	out.Name = p.Name
	out.Description = p.Description
	out.Focus = append([]models.Focus(nil), p.Focus...)
	out.Difficulty = p.Difficulty
	out.SessionLength = p.SessionLength
	return out
}

// HasDayEdits reports whether any day carries a subtitle, a rest flag or
// exercises.
func HasDayEdits(p models.Program) bool {
	for _, sec := range p.Sections {
		if sec.Subtitle != "" || sec.IsRestDay || len(sec.Exercises) > 0 {
			return true
		}
	}
	return false
}

// Clone deep-copies a draft.
func Clone(p models.Program) models.Program {
	out := p
	out.Focus = append([]models.Focus(nil), p.Focus...)
	for i := range p.Sections {
		out.Sections[i].Exercises = cloneExercises(p.Sections[i].Exercises)
	}
	return out
}

func cloneExercises(in []models.Exercise) []models.Exercise {
	if in == nil {
		return nil
	}
	out := make([]models.Exercise, len(in))
	for i, ex := range in {
		out[i] = ex
		out[i].Sets = cloneSets(ex.Sets)
	}
	return out
}

func cloneSets(in []models.Set) []models.Set {
	if in == nil {
		return nil
	}
	out := make([]models.Set, len(in))
	for i, s := range in {
		out[i] = s
		if s.Reps != nil {
			v := *s.Reps
			out[i].Reps = &v
		}
		if s.Time != nil {
			v := *s.Time
			out[i].Time = &v
		}
	}
	return out
}

func validDay(day int) bool {
	return day >= 0 && day < models.DaysPerWeek
}

// SetName replaces the program name.
func SetName(p models.Program, name string) models.Program {
	out := Clone(p)
	out.Name = name
	return out
}

// SetDescription replaces the program description.
func SetDescription(p models.Program, description string) models.Program {
	out := Clone(p)
	out.Description = description
	return out
}

// ToggleFocus adds the tag if absent and removes it if present.
func ToggleFocus(p models.Program, f models.Focus) models.Program {
	out := Clone(p)
	for i, existing := range out.Focus {
		if existing == f {
			out.Focus = append(out.Focus[:i], out.Focus[i+1:]...)
			return out
		}
	}
	out.Focus = append(out.Focus, f)
	return out
}

// SetDifficulty replaces the difficulty. Unknown values are ignored.
func SetDifficulty(p models.Program, d models.Difficulty) models.Program {
	out := Clone(p)
	if d.Valid() {
		out.Difficulty = d
	}
	return out
}

// SetSessionLength replaces the target session length in minutes.
func SetSessionLength(p models.Program, minutes int) models.Program {
	out := Clone(p)
	out.SessionLength = minutes
	return out
}

// SetDaySubtitle replaces a day's subtitle. Text longer than MaxSubtitleLen
// is rejected and the draft is returned unchanged.
func SetDaySubtitle(p models.Program, day int, text string) models.Program {
	out := Clone(p)
	if !validDay(day) || utf8.RuneCountInString(text) > MaxSubtitleLen {
		return out
	}
	out.Sections[day].Subtitle = text
	return out
}

// RestDayProposal is a pending destructive rest-day toggle. It takes effect
// only through ConfirmRestDay; dropping it cancels.
type RestDayProposal struct {
	DayIndex      int `json:"day_index"`
	ExerciseCount int `json:"exercise_count"`
}

// ToggleRestDay flips a day's rest flag. When the day is a workout day with
// exercises, the draft is returned unchanged together with a proposal that
// must be confirmed.
func ToggleRestDay(p models.Program, day int) (models.Program, *RestDayProposal) {
	out := Clone(p)
	if !validDay(day) {
		return out, nil
	}
	sec := &out.Sections[day]
	if !sec.IsRestDay && len(sec.Exercises) > 0 {
		return out, &RestDayProposal{DayIndex: day, ExerciseCount: len(sec.Exercises)}
	}
	sec.IsRestDay = !sec.IsRestDay
	return out, nil
}

// ConfirmRestDay applies a proposal: the day's exercises are cleared and it
// is flagged as a rest day.
func ConfirmRestDay(p models.Program, prop RestDayProposal) models.Program {
	out := Clone(p)
	if !validDay(prop.DayIndex) {
		return out
	}
	out.Sections[prop.DayIndex].IsRestDay = true
	out.Sections[prop.DayIndex].Exercises = nil
	return out
}

// AddExercise builds an exercise from a template and set configs, appends it
// to the day and demotes the day from rest to workout.
func AddExercise(p models.Program, day int, tmpl models.ExerciseTemplate, sets []SetConfig) (models.Program, error) {
	if !validDay(day) {
		return Clone(p), fmt.Errorf("day index %d out of range", day)
	}
	ex, err := BuildExercise(tmpl, sets)
	if err != nil {
		return Clone(p), err
	}
	out := Clone(p)
	sec := &out.Sections[day]
	sec.Exercises = append(sec.Exercises, ex)
	sec.IsRestDay = false
	return out, nil
}

// RemoveExercise deletes one exercise; later exercises shift down. Set
// numbers belong to the exercise and are not touched.
func RemoveExercise(p models.Program, day, index int) models.Program {
	out := Clone(p)
	if !validDay(day) {
		return out
	}
	exs := out.Sections[day].Exercises
	if index < 0 || index >= len(exs) {
		return out
	}
	out.Sections[day].Exercises = append(exs[:index], exs[index+1:]...)
	return out
}

// ReorderExercise moves one exercise within a day: remove at from, then
// insert at to. The relative order of all other exercises is preserved.
func ReorderExercise(p models.Program, day, from, to int) models.Program {
	out := Clone(p)
	if !validDay(day) {
		return out
	}
	exs := out.Sections[day].Exercises
	if from < 0 || from >= len(exs) || to < 0 || to >= len(exs) || from == to {
		return out
	}
	moved := exs[from]
	exs = append(exs[:from], exs[from+1:]...)
	exs = append(exs[:to], append([]models.Exercise{moved}, exs[to:]...)...)
	out.Sections[day].Exercises = exs
	return out
}

// MoveExercise is the drag-and-drop entry point. Moves across days are
// ignored and leave both days unchanged.
func MoveExercise(p models.Program, fromDay, from, toDay, to int) models.Program {
	if fromDay != toDay {
		return Clone(p)
	}
	return ReorderExercise(p, fromDay, from, to)
}

// WeekSummary counts workout and rest days.
type WeekSummary struct {
	WorkoutDays int `json:"workout_days"`
	RestDays    int `json:"rest_days"`
}

// Summary counts days with at least one exercise as workout days.
func Summary(p models.Program) WeekSummary {
	var s WeekSummary
	for _, sec := range p.Sections {
		if len(sec.Exercises) > 0 {
			s.WorkoutDays++
		}
	}
	s.RestDays = models.DaysPerWeek - s.WorkoutDays
	return s
}
