package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/fitplan/internal/models"
)

// Set count bounds for a single exercise.
const (
	MinSets     = 1
	MaxSets     = 10
	DefaultSets = 3
)

// Defaults for newly added set rows.
const (
	DefaultReps = "10"
	DefaultTime = "30"
	DefaultRest = "60"
)

// SetConfig is one set row as typed into the form. Values stay strings until
// the exercise is built so partially typed input survives resizing.
type SetConfig struct {
	Reps string `json:"reps"`
	Time string `json:"time"`
	Rest string `json:"rest"`
}

// DefaultSetConfig returns the default row for an exercise type.
func DefaultSetConfig(t models.ExerciseType) SetConfig {
	c := SetConfig{Rest: DefaultRest}
	switch t {
	case models.ExerciseReps:
		c.Reps = DefaultReps
	case models.ExerciseTime:
		c.Time = DefaultTime
	}
	return c
}

// ExerciseForm is an exercise being composed: the chosen template plus its
// set rows.
type ExerciseForm struct {
	Template models.ExerciseTemplate `json:"template"`
	Sets     []SetConfig             `json:"sets"`
}

// NewExerciseForm starts a form with DefaultSets default rows.
func NewExerciseForm(tmpl models.ExerciseTemplate) ExerciseForm {
	sets := make([]SetConfig, DefaultSets)
	for i := range sets {
		sets[i] = DefaultSetConfig(tmpl.Type)
	}
	return ExerciseForm{Template: tmpl, Sets: sets}
}

// ResizeSetCount clamps n to [MinSets, MaxSets], truncates from the tail or
// appends default rows. Retained rows are kept verbatim.
func ResizeSetCount(form ExerciseForm, n int) ExerciseForm {
	n = max(MinSets, min(MaxSets, n))
	sets := make([]SetConfig, n)
	for i := range sets {
		if i < len(form.Sets) {
			sets[i] = form.Sets[i]
		} else {
			sets[i] = DefaultSetConfig(form.Template.Type)
		}
	}
	return ExerciseForm{Template: form.Template, Sets: sets}
}

// UpdateSetField sets one field ("reps", "time" or "rest") of one row.
func UpdateSetField(form ExerciseForm, index int, field, value string) (ExerciseForm, error) {
	out := ExerciseForm{Template: form.Template, Sets: append([]SetConfig(nil), form.Sets...)}
	if index < 0 || index >= len(out.Sets) {
		return out, fmt.Errorf("set index %d out of range", index)
	}
	switch field {
	case "reps":
		out.Sets[index].Reps = value
	case "time":
		out.Sets[index].Time = value
	case "rest":
		out.Sets[index].Rest = value
	default:
		return out, fmt.Errorf("unknown set field %q", field)
	}
	return out, nil
}

// BuildExercise converts set rows into an exercise. Each row's primary value
// (reps or time by template type) must be a positive integer; rest falls
// back to 0 when blank, non-numeric or negative.
func BuildExercise(tmpl models.ExerciseTemplate, rows []SetConfig) (models.Exercise, error) {
	if !tmpl.Type.Valid() {
		return models.Exercise{}, &ValidationError{Fields: map[string]string{
			"template": fmt.Sprintf("Unknown exercise type %q", tmpl.Type),
		}}
	}
	if len(rows) < MinSets || len(rows) > MaxSets {
		return models.Exercise{}, &ValidationError{Fields: map[string]string{
			"sets": fmt.Sprintf("Choose between %d and %d sets", MinSets, MaxSets),
		}}
	}

	sets := make([]models.Set, len(rows))
	for i, row := range rows {
		raw := row.Reps
		if tmpl.Type == models.ExerciseTime {
			raw = row.Time
		}
		v, ok := positiveInt(raw)
		if !ok {
			return models.Exercise{}, &ValidationError{Fields: map[string]string{
				"sets": "Please fill in all set configurations",
			}}
		}
		s := models.Set{SetNumber: i + 1, Rest: restSeconds(row.Rest)}
		if tmpl.Type == models.ExerciseReps {
			s.Reps = &v
		} else {
			s.Time = &v
		}
		sets[i] = s
	}

	return models.Exercise{
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Type:       tmpl.Type,
		Sets:       sets,
	}, nil
}

func positiveInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func restSeconds(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
