package editor

import (
	"errors"
	"reflect"
	"strings"

	"github.com/claude/fitplan/internal/models"
	"github.com/go-playground/validator/v10"
)

// Session length bounds accepted at submit, in minutes.
const (
	MinSessionLength = 5
	MaxSessionLength = 180
)

// Serialize produces the Program Service payload. weekly_frequency counts
// days with at least one exercise; an empty day is always sent as a rest day.
func Serialize(p models.Program) models.ProgramPayload {
	payload := models.ProgramPayload{
		Name:            p.Name,
		Description:     p.Description,
		Focus:           append([]models.Focus{}, p.Focus...),
		Difficulty:      p.Difficulty,
		WeeklyFrequency: Summary(p).WorkoutDays,
		SessionLength:   p.SessionLength,
		Sections:        make([]models.SectionPayload, 0, models.DaysPerWeek),
	}
	for i, sec := range p.Sections {
		exs := make([]models.ExercisePayload, 0, len(sec.Exercises))
		for j, ex := range sec.Exercises {
			sets := cloneSets(ex.Sets)
			if sets == nil {
				sets = []models.Set{}
			}
			exs = append(exs, models.ExercisePayload{Name: ex.Name, Order: j, Sets: sets})
		}
		payload.Sections = append(payload.Sections, models.SectionPayload{
			Format:    sec.Weekday,
			Type:      sec.Subtitle,
			IsRestDay: sec.IsRest(),
			Order:     i,
			Exercises: exs,
		})
	}
	return payload
}

// submitForm is the shape checked before a draft may be sent.
type submitForm struct {
	Name          string         `form:"programName" validate:"required"`
	Description   string         `form:"description" validate:"required"`
	Focus         []models.Focus `form:"focuses" validate:"min=1,dive,focus"`
	Difficulty    string         `form:"difficulty" validate:"oneof=beginner intermediate advanced"`
	SessionLength int            `form:"session_length" validate:"min=5,max=180"`
	WorkoutDays   int            `form:"sections" validate:"min=1"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	_ = v.RegisterValidation("focus", func(fl validator.FieldLevel) bool {
		return models.Focus(fl.Field().String()).Valid()
	})
	return v
}

var fieldMessages = map[string]string{
	"programName.required": "Program name is required",
	"description.required": "Description is required",
	"focuses.min":          "Select at least one focus",
	"focuses.focus":        "Invalid focus",
	"difficulty.oneof":     "Invalid difficulty",
	"session_length.min":   "Enter 5-180 minutes per session",
	"session_length.max":   "Enter 5-180 minutes per session",
	"sections.min":         "Add at least one workout day with exercises",
}

// Validate checks a draft for submission. It returns a *ValidationError
// listing every failing field, or nil.
func Validate(p models.Program) error {
	form := submitForm{
		Name:          strings.TrimSpace(p.Name),
		Description:   strings.TrimSpace(p.Description),
		Focus:         p.Focus,
		Difficulty:    string(p.Difficulty),
		SessionLength: p.SessionLength,
		WorkoutDays:   Summary(p).WorkoutDays,
	}

	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		if _, seen := fields[name]; seen {
			continue
		}
		msg, ok := fieldMessages[name+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		fields[name] = msg
	}
	return &ValidationError{Fields: fields}
}
