package models

// ProgramPayload is the body of POST /api/programs/.
type ProgramPayload struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Focus           []Focus          `json:"focus"`
	Difficulty      Difficulty       `json:"difficulty"`
	WeeklyFrequency int              `json:"weekly_frequency"`
	SessionLength   int              `json:"session_length"`
	Sections        []SectionPayload `json:"sections"`
}

// SectionPayload is one day in a ProgramPayload.
type SectionPayload struct {
	Format    string            `json:"format"`
	Type      string            `json:"type"`
	IsRestDay bool              `json:"is_rest_day"`
	Order     int               `json:"order"`
	Exercises []ExercisePayload `json:"exercises"`
}

// ExercisePayload is one exercise in a SectionPayload.
type ExercisePayload struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
	Sets  []Set  `json:"sets"`
}

// ProgramUpdate is the body of PUT /api/programs/{id}/.
type ProgramUpdate struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Focus           []Focus    `json:"focus"`
	Difficulty      Difficulty `json:"difficulty"`
	WeeklyFrequency int        `json:"weekly_frequency"`
	SessionLength   int        `json:"session_length"`
	IsSubscription  bool       `json:"is_subscription"`
	IsPublished     bool       `json:"is_published"`
}

// PublishRequest is the body of POST /api/programs/{id}/publish/.
type PublishRequest struct {
	IsPublished bool `json:"is_published"`
}
