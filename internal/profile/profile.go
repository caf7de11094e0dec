// Package profile validates fitness and trainer profile forms before they
// are saved to the Program Service.
package profile

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
)

// Accepted ages, inclusive.
const (
	MinAge = 13
	MaxAge = 120
)

// MaxYearsOfExperience is the largest accepted trainer experience.
const MaxYearsOfExperience = 50

// Form is a fitness profile as typed by the user.
type Form struct {
	Age              string `json:"age" validate:"required,number"`
	ExperienceLevel  string `json:"experience_level" validate:"required,experience"`
	TrainingLocation string `json:"training_location" validate:"required,location"`
	FitnessFocus     string `json:"fitness_focus" validate:"required,fitness_focus"`
}

// FormFrom fills a form from a stored profile.
func FormFrom(p models.UserProfile) Form {
	f := Form{
		ExperienceLevel:  p.ExperienceLevel,
		TrainingLocation: p.TrainingLocation,
		FitnessFocus:     p.FitnessFocus,
	}
	if p.Age != nil {
		f.Age = strconv.Itoa(*p.Age)
	}
	return f
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("experience", oneOf(models.ExperienceLevels))
	_ = v.RegisterValidation("location", oneOf(models.TrainingLocations))
	_ = v.RegisterValidation("fitness_focus", oneOf(models.FitnessFocuses))
	return v
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, a := range allowed {
			if val == a {
				return true
			}
		}
		return false
	}
}

var messages = map[string]string{
	"age.required":                "Age is required",
	"age.number":                  "Age must be a number",
	"age.min":                     "You must be at least 13 years old",
	"age.max":                     "Please enter a valid age",
	"experience_level.required":   "Experience level is required",
	"experience_level.experience": "Invalid experience level. Choose from: " + strings.Join(models.ExperienceLevels, ", "),
	"training_location.required":  "Training location is required",
	"training_location.location":  "Invalid training location. Choose from: " + strings.Join(models.TrainingLocations, ", "),
	"fitness_focus.required":      "Fitness focus is required",
	"fitness_focus.fitness_focus": "Invalid fitness focus. Choose from: " + strings.Join(models.FitnessFocuses, ", "),
	"years_of_experience.min":     "Years of experience cannot be negative",
	"years_of_experience.max":     "Please enter a valid number of years",
}

// Validate checks the form and converts it into a profile. Failures are
// reported as a *editor.ValidationError keyed by JSON field name.
func Validate(f Form) (models.UserProfile, error) {
	f.Age = strings.TrimSpace(f.Age)
	fields := collect(validate.Struct(f))

	var age int
	if _, bad := fields["age"]; !bad {
		age, _ = strconv.Atoi(f.Age)
		switch {
		case age < MinAge:
			fields["age"] = messages["age.min"]
		case age > MaxAge:
			fields["age"] = messages["age.max"]
		}
	}

	if len(fields) > 0 {
		return models.UserProfile{}, &editor.ValidationError{Fields: fields}
	}
	return models.UserProfile{
		Age:              &age,
		ExperienceLevel:  f.ExperienceLevel,
		TrainingLocation: f.TrainingLocation,
		FitnessFocus:     f.FitnessFocus,
	}, nil
}

type trainerForm struct {
	YearsOfExperience int `json:"years_of_experience" validate:"min=0,max=50"`
}

// ValidateTrainer checks a trainer profile before saving.
func ValidateTrainer(p models.TrainerProfile) error {
	fields := collect(validate.Struct(trainerForm{YearsOfExperience: p.YearsOfExperience}))
	if len(fields) > 0 {
		return &editor.ValidationError{Fields: fields}
	}
	return nil
}

// collect keeps the first message per field.
func collect(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		fields[fe.Field()] = msg
	}
	return fields
}
