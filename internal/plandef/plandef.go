// Package plandef reads program definitions from YAML files and replays
// them through the editor, so a file-built program obeys the same rules as
// one assembled interactively.
package plandef

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/claude/fitplan/internal/catalog"
	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
)

// Definition is a whole program as written in a YAML file.
type Definition struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Focus         []string `yaml:"focus"`
	Difficulty    string   `yaml:"difficulty"`
	SessionLength int      `yaml:"session_length"`
	Days          []Day    `yaml:"days"`
}

// Day describes one weekday. Days not listed stay empty rest days.
type Day struct {
	Day       string     `yaml:"day"` // weekday name or 0-6
	Subtitle  string     `yaml:"subtitle"`
	Rest      bool       `yaml:"rest"`
	Exercises []Exercise `yaml:"exercises"`
}

// Exercise references a catalog template by name or id. Sets may be listed
// one by one, or as Count copies of Reps/Time/Rest. Blank values in the
// Count form and blank rests take the editor's set defaults; a listed set
// without its reps or time is rejected.
type Exercise struct {
	Template   string `yaml:"template"`
	TemplateID int    `yaml:"template_id"`
	Sets       []Set  `yaml:"sets"`
	Count      int    `yaml:"count"`
	Reps       string `yaml:"reps"`
	Time       string `yaml:"time"`
	Rest       string `yaml:"rest"`
}

// Set is one set row, typed like the editor form.
type Set struct {
	Reps string `yaml:"reps"`
	Time string `yaml:"time"`
	Rest string `yaml:"rest"`
}

// Parse decodes a definition. Unknown keys are rejected.
func Parse(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing program definition: %w", err)
	}
	return &def, nil
}

// Load reads a definition from a file.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening program definition: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Lookup resolves template references.
type Lookup interface {
	Template(ctx context.Context, name string, id int) (models.ExerciseTemplate, error)
}

// CatalogLookup resolves templates through the Program Service catalog.
// Names match case-insensitively; ids are looked up in the full catalog.
type CatalogLookup struct {
	src catalog.Source
	all []models.ExerciseTemplate
}

// NewCatalogLookup creates a lookup backed by src.
func NewCatalogLookup(src catalog.Source) *CatalogLookup {
	return &CatalogLookup{src: src}
}

func (l *CatalogLookup) Template(ctx context.Context, name string, id int) (models.ExerciseTemplate, error) {
	if id > 0 {
		if l.all == nil {
			all, err := l.src.SearchTemplates(ctx, "")
			if err != nil {
				return models.ExerciseTemplate{}, fmt.Errorf("listing templates: %w", err)
			}
			l.all = all
		}
		for _, t := range l.all {
			if t.ID == id {
				return t, nil
			}
		}
		return models.ExerciseTemplate{}, fmt.Errorf("no template with id %d", id)
	}

	results, err := l.src.SearchTemplates(ctx, name)
	if err != nil {
		return models.ExerciseTemplate{}, fmt.Errorf("searching templates for %q: %w", name, err)
	}
	for _, t := range results {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return models.ExerciseTemplate{}, fmt.Errorf("no template named %q", name)
}

// Build creates a fresh draft from def.
func Build(ctx context.Context, def *Definition, lookup Lookup) (models.Program, error) {
	return Apply(ctx, editor.NewDraft(), def, lookup)
}

// Apply replays def onto base. Every listed day replaces that day's
// content; a day marked rest discards its exercises without asking.
func Apply(ctx context.Context, base models.Program, def *Definition, lookup Lookup) (models.Program, error) {
	p := editor.Clone(base)
	if def.Name != "" {
		p = editor.SetName(p, def.Name)
	}
	if def.Description != "" {
		p = editor.SetDescription(p, def.Description)
	}
	if len(def.Focus) > 0 {
		p.Focus = nil
		for _, f := range def.Focus {
			focus := models.Focus(strings.ToLower(f))
			if !focus.Valid() {
				return base, fmt.Errorf("unknown focus %q", f)
			}
			p = editor.ToggleFocus(p, focus)
		}
	}
	if def.Difficulty != "" {
		d, err := models.ParseDifficulty(strings.ToLower(def.Difficulty))
		if err != nil {
			return base, err
		}
		p = editor.SetDifficulty(p, d)
	}
	if def.SessionLength != 0 {
		p = editor.SetSessionLength(p, def.SessionLength)
	}

	seen := map[int]bool{}
	for _, day := range def.Days {
		idx, err := dayIndex(day.Day)
		if err != nil {
			return base, err
		}
		if seen[idx] {
			return base, fmt.Errorf("day %s listed twice", models.Weekdays[idx])
		}
		seen[idx] = true

		p, err = applyDay(ctx, p, idx, day, lookup)
		if err != nil {
			return base, fmt.Errorf("%s: %w", models.Weekdays[idx], err)
		}
	}
	return p, nil
}

func applyDay(ctx context.Context, p models.Program, idx int, day Day, lookup Lookup) (models.Program, error) {
	if day.Rest && len(day.Exercises) > 0 {
		return p, fmt.Errorf("a rest day cannot list exercises")
	}
	if len([]rune(day.Subtitle)) > editor.MaxSubtitleLen {
		return p, fmt.Errorf("subtitle %q is longer than %d characters", day.Subtitle, editor.MaxSubtitleLen)
	}
	p = editor.SetDaySubtitle(p, idx, day.Subtitle)

	for len(p.Sections[idx].Exercises) > 0 {
		p = editor.RemoveExercise(p, idx, 0)
	}

	if day.Rest {
		if !p.Sections[idx].IsRestDay {
			next, prop := editor.ToggleRestDay(p, idx)
			if prop != nil {
				next = editor.ConfirmRestDay(next, *prop)
			}
			p = next
		}
		return p, nil
	}

	for i, ex := range day.Exercises {
		tmpl, err := lookup.Template(ctx, ex.Template, ex.TemplateID)
		if err != nil {
			return p, fmt.Errorf("exercise %d: %w", i+1, err)
		}
		next, err := editor.AddExercise(p, idx, tmpl, setRows(tmpl, ex))
		if err != nil {
			return p, fmt.Errorf("exercise %d (%s): %w", i+1, tmpl.Name, err)
		}
		p = next
	}
	return p, nil
}

// setRows expands an exercise's sets into form rows. The Count shorthand
// takes the form defaults for blank values; listed sets must carry their
// own reps or time, and only a blank rest takes the default.
func setRows(tmpl models.ExerciseTemplate, ex Exercise) []editor.SetConfig {
	def := editor.DefaultSetConfig(tmpl.Type)
	var rows []editor.SetConfig
	if len(ex.Sets) > 0 {
		for _, s := range ex.Sets {
			rows = append(rows, editor.SetConfig{Reps: s.Reps, Time: s.Time, Rest: orDefault(s.Rest, def.Rest)})
		}
		return rows
	}

	n := ex.Count
	if n == 0 {
		n = editor.DefaultSets
	}
	for range n {
		rows = append(rows, editor.SetConfig{
			Reps: orDefault(ex.Reps, def.Reps),
			Time: orDefault(ex.Time, def.Time),
			Rest: orDefault(ex.Rest, def.Rest),
		})
	}
	return rows
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func dayIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= models.DaysPerWeek {
			return 0, fmt.Errorf("day %d out of range 0-%d", n, models.DaysPerWeek-1)
		}
		return n, nil
	}
	for i, name := range models.Weekdays {
		if strings.EqualFold(name, s) || strings.EqualFold(name[:3], s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}
