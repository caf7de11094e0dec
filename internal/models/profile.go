package models

// ExperienceLevel values accepted by the profile endpoint.
var ExperienceLevels = []string{"beginner", "intermediate", "advanced"}

// TrainingLocations values accepted by the profile endpoint.
var TrainingLocations = []string{"home", "gym"}

// FitnessFocuses values accepted by the profile endpoint.
var FitnessFocuses = []string{"strength", "cardio", "flexibility", "mixed"}

// UserProfile is the end-user fitness profile (GET/PUT /api/profile/me/).
type UserProfile struct {
	ID               int    `json:"id,omitempty"`
	Age              *int   `json:"age"`
	ExperienceLevel  string `json:"experience_level"`
	TrainingLocation string `json:"training_location"`
	FitnessFocus     string `json:"fitness_focus"`
}

// TrainerProfile is the trainer public profile (GET/PUT /api/trainer/me/).
type TrainerProfile struct {
	ID                      int    `json:"id,omitempty"`
	Bio                     string `json:"bio"`
	YearsOfExperience       int    `json:"years_of_experience"`
	SpecialtyStrength       bool   `json:"specialty_strength"`
	SpecialtyCardio         bool   `json:"specialty_cardio"`
	SpecialtyFlexibility    bool   `json:"specialty_flexibility"`
	SpecialtySports         bool   `json:"specialty_sports"`
	SpecialtyRehabilitation bool   `json:"specialty_rehabilitation"`
	Certifications          string `json:"certifications"`
}
