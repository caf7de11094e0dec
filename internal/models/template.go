package models

import (
	"encoding/json"
	"fmt"
)

// ExerciseType decides whether sets of an exercise count reps or seconds.
type ExerciseType string

const (
	ExerciseReps ExerciseType = "reps"
	ExerciseTime ExerciseType = "time"
)

// Valid reports whether t is reps or time.
func (t ExerciseType) Valid() bool {
	return t == ExerciseReps || t == ExerciseTime
}

// ExerciseTemplate is a read-only catalog entry.
type ExerciseTemplate struct {
	ID                     int          `json:"id"`
	Name                   string       `json:"name"`
	Description            string       `json:"description"`
	MuscleGroups           []string     `json:"muscle_groups"`
	Type                   ExerciseType `json:"exercise_type"`
	DefaultRecommendations string       `json:"default_recommendations"`
	IsDefault              bool         `json:"is_default"`
}

// TemplateSearchResponse is the body of GET /api/exercise-templates/.
type TemplateSearchResponse struct {
	Exercises []ExerciseTemplate `json:"exercises"`
}

// FocusList accepts both the list form sent on create and the single-string
// form some Program Service endpoints return.
type FocusList []Focus

func (l *FocusList) UnmarshalJSON(data []byte) error {
	var many []Focus
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("cannot parse focus %s: %w", data, err)
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = FocusList{Focus(one)}
	return nil
}
