package plandef

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
)

const programYAML = `
name: Strength Base
description: Three full-body days
focus: [strength, Mixed]
difficulty: intermediate
session_length: 50
days:
  - day: monday
    subtitle: Legs
    exercises:
      - template: squat
        sets:
          - reps: 10
            rest: 90
          - reps: 8
      - template_id: 2
        count: 2
        time: 45
  - day: "2"
    rest: true
  - day: Fri
    subtitle: Pull
    exercises:
      - template: Squat
`

type fakeCatalog struct {
	templates []models.ExerciseTemplate
	queries   []string
}

func (f *fakeCatalog) SearchTemplates(ctx context.Context, q string) ([]models.ExerciseTemplate, error) {
	f.queries = append(f.queries, q)
	var out []models.ExerciseTemplate
	for _, t := range f.templates {
		if q == "" || strings.Contains(strings.ToLower(t.Name), strings.ToLower(q)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func newLookup() *CatalogLookup {
	return NewCatalogLookup(&fakeCatalog{templates: []models.ExerciseTemplate{
		{ID: 1, Name: "Squat", Type: models.ExerciseReps},
		{ID: 2, Name: "Plank", Type: models.ExerciseTime},
		{ID: 3, Name: "Squat Jump", Type: models.ExerciseReps},
	}})
}

func parse(t *testing.T, s string) *Definition {
	t.Helper()
	def, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return def
}

func ptr(v int) *int { return &v }

// TestBuildProgram verifies a definition becomes the expected draft.
func TestBuildProgram(t *testing.T) {
	p, err := Build(context.Background(), parse(t, programYAML), newLookup())
	if err != nil {
		t.Fatal(err)
	}

	if p.Name != "Strength Base" || p.Difficulty != models.DifficultyIntermediate || p.SessionLength != 50 {
		t.Errorf("details = %q %q %d", p.Name, p.Difficulty, p.SessionLength)
	}
	if diff := cmp.Diff([]models.Focus{models.FocusStrength, models.FocusMixed}, p.Focus); diff != "" {
		t.Errorf("focus mismatch (-want +got):\n%s", diff)
	}

	mon := p.Sections[0]
	if mon.Subtitle != "Legs" || len(mon.Exercises) != 2 {
		t.Fatalf("monday = %+v", mon)
	}
	wantSquat := []models.Set{
		{SetNumber: 1, Reps: ptr(10), Rest: 90},
		{SetNumber: 2, Reps: ptr(8), Rest: 60},
	}
	if diff := cmp.Diff(wantSquat, mon.Exercises[0].Sets); diff != "" {
		t.Errorf("squat sets mismatch (-want +got):\n%s", diff)
	}
	wantPlank := []models.Set{
		{SetNumber: 1, Time: ptr(45), Rest: 60},
		{SetNumber: 2, Time: ptr(45), Rest: 60},
	}
	if diff := cmp.Diff(wantPlank, mon.Exercises[1].Sets); diff != "" {
		t.Errorf("plank sets mismatch (-want +got):\n%s", diff)
	}

	if !p.Sections[2].IsRestDay {
		t.Error("wednesday should be flagged as rest")
	}
	fri := p.Sections[4]
	if len(fri.Exercises) != 1 || len(fri.Exercises[0].Sets) != editor.DefaultSets {
		t.Errorf("friday = %+v", fri)
	}
	if got := editor.Summary(p).WorkoutDays; got != 2 {
		t.Errorf("workout days = %d, want 2", got)
	}
}

// TestApplyRestConfirmsAutomatically verifies a rest day in the file clears
// the exercises already on that day.
func TestApplyRestConfirmsAutomatically(t *testing.T) {
	lookup := newLookup()
	base, err := Build(context.Background(), parse(t, programYAML), lookup)
	if err != nil {
		t.Fatal(err)
	}

	p, err := Apply(context.Background(), base, parse(t, "days:\n  - day: monday\n    rest: true\n"), lookup)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Sections[0].IsRestDay || len(p.Sections[0].Exercises) != 0 {
		t.Errorf("monday = %+v", p.Sections[0])
	}
	if len(base.Sections[0].Exercises) != 2 {
		t.Error("base draft was modified")
	}
	if p.Name != base.Name {
		t.Errorf("name = %q, want %q", p.Name, base.Name)
	}
}

// TestBuildErrors covers definitions that must be rejected.
func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown template", "days:\n  - day: mon\n    exercises:\n      - template: Deadlift\n", `no template named "Deadlift"`},
		{"unknown id", "days:\n  - day: mon\n    exercises:\n      - template_id: 42\n", "no template with id 42"},
		{"bad day", "days:\n  - day: someday\n", `unknown day "someday"`},
		{"day out of range", "days:\n  - day: 7\n", "out of range"},
		{"duplicate day", "days:\n  - day: mon\n  - day: Monday\n", "listed twice"},
		{"rest with exercises", "days:\n  - day: tue\n    rest: true\n    exercises:\n      - template: Squat\n", "rest day cannot list exercises"},
		{"bad reps", "days:\n  - day: mon\n    exercises:\n      - template: Squat\n        reps: none\n", "Please fill in all set configurations"},
		{"listed set without reps", "days:\n  - day: mon\n    exercises:\n      - template: Squat\n        sets:\n          - rest: 30\n", "Please fill in all set configurations"},
		{"listed set without time", "days:\n  - day: mon\n    exercises:\n      - template: Plank\n        sets:\n          - time: 20\n          - reps: 5\n", "Please fill in all set configurations"},
		{"too many sets", "days:\n  - day: mon\n    exercises:\n      - template: Squat\n        count: 11\n", "Choose between 1 and 10 sets"},
		{"unknown focus", "focus: [yoga]\n", `unknown focus "yoga"`},
		{"long subtitle", "days:\n  - day: mon\n    subtitle: This subtitle is far too long to fit\n", "longer than 30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(context.Background(), parse(t, tt.yaml), newLookup())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

// TestParseRejectsUnknownKeys verifies typos in the file are caught.
func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse(strings.NewReader("nmae: typo\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
