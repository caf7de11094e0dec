package editor

import (
	"github.com/claude/fitplan/internal/models"
)

// Modal identifies which dialog the editor has open.
type Modal string

const (
	ModalNone        Modal = ""
	ModalLibrary     Modal = "library"
	ModalSets        Modal = "sets"
	ModalConfirmRest Modal = "confirm_rest"
)

// DragRef points at the exercise being dragged.
type DragRef struct {
	Day      int `json:"day"`
	Exercise int `json:"exercise"`
}

// ViewState is the editor UI state kept apart from the draft. It is a plain
// value: transitions take one and return a new one.
type ViewState struct {
	Modal       Modal             `json:"modal"`
	DayIndex    *int              `json:"day_index,omitempty"`
	Form        *ExerciseForm     `json:"form,omitempty"`
	PendingRest *RestDayProposal  `json:"pending_rest,omitempty"`
	Dragged     *DragRef          `json:"dragged,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

func (v ViewState) clone() ViewState {
	out := v
	if v.DayIndex != nil {
		d := *v.DayIndex
		out.DayIndex = &d
	}
	if v.Form != nil {
		f := ExerciseForm{Template: v.Form.Template, Sets: append([]SetConfig(nil), v.Form.Sets...)}
		out.Form = &f
	}
	if v.PendingRest != nil {
		p := *v.PendingRest
		out.PendingRest = &p
	}
	if v.Dragged != nil {
		d := *v.Dragged
		out.Dragged = &d
	}
	if v.Errors != nil {
		out.Errors = make(map[string]string, len(v.Errors))
		for k, msg := range v.Errors {
			out.Errors[k] = msg
		}
	}
	return out
}

// OpenLibrary opens the template library for a day.
func OpenLibrary(v ViewState, day int) ViewState {
	out := v.clone()
	if !validDay(day) {
		return out
	}
	out.Modal = ModalLibrary
	out.DayIndex = &day
	out.Form = nil
	return out
}

// CloseModals closes the library and set dialogs and forgets the form.
func CloseModals(v ViewState) ViewState {
	out := v.clone()
	out.Modal = ModalNone
	out.DayIndex = nil
	out.Form = nil
	delete(out.Errors, "sets")
	return out
}

// SelectTemplate starts configuring sets for the chosen template.
func SelectTemplate(v ViewState, tmpl models.ExerciseTemplate) ViewState {
	out := v.clone()
	if out.DayIndex == nil {
		return out
	}
	form := NewExerciseForm(tmpl)
	out.Form = &form
	out.Modal = ModalSets
	return out
}

// ResizeForm changes the number of set rows in the open form.
func ResizeForm(v ViewState, n int) ViewState {
	out := v.clone()
	if out.Form == nil {
		return out
	}
	form := ResizeSetCount(*out.Form, n)
	out.Form = &form
	return out
}

// UpdateFormSet edits one field of one row in the open form.
func UpdateFormSet(v ViewState, index int, field, value string) (ViewState, error) {
	out := v.clone()
	if out.Form == nil {
		return out, nil
	}
	form, err := UpdateSetField(*out.Form, index, field, value)
	if err != nil {
		return out, err
	}
	out.Form = &form
	return out, nil
}

// CompleteExercise adds the configured exercise to the selected day and
// closes the dialogs. On validation failure the draft is unchanged, the
// dialog stays open and the error is recorded in the view.
func CompleteExercise(p models.Program, v ViewState) (models.Program, ViewState, error) {
	out := v.clone()
	if out.Form == nil || out.DayIndex == nil {
		return Clone(p), out, nil
	}
	next, err := AddExercise(p, *out.DayIndex, out.Form.Template, out.Form.Sets)
	if err != nil {
		if fields := FieldErrors(err); fields != nil {
			if out.Errors == nil {
				out.Errors = map[string]string{}
			}
			for k, msg := range fields {
				out.Errors[k] = msg
			}
		}
		return next, out, err
	}
	return next, CloseModals(out), nil
}

// RequestRestToggle toggles a day's rest flag, or opens the confirmation
// dialog when that would discard exercises.
func RequestRestToggle(p models.Program, v ViewState, day int) (models.Program, ViewState) {
	out := v.clone()
	next, prop := ToggleRestDay(p, day)
	if prop != nil {
		out.PendingRest = prop
		out.Modal = ModalConfirmRest
	}
	return next, out
}

// ConfirmPendingRest applies the pending rest-day proposal, if any.
func ConfirmPendingRest(p models.Program, v ViewState) (models.Program, ViewState) {
	out := v.clone()
	if out.PendingRest == nil {
		return Clone(p), out
	}
	next := ConfirmRestDay(p, *out.PendingRest)
	out.PendingRest = nil
	if out.Modal == ModalConfirmRest {
		out.Modal = ModalNone
	}
	return next, out
}

// CancelPendingRest drops the pending proposal without touching the draft.
func CancelPendingRest(v ViewState) ViewState {
	out := v.clone()
	out.PendingRest = nil
	if out.Modal == ModalConfirmRest {
		out.Modal = ModalNone
	}
	return out
}

// DragStart records the exercise under the pointer.
func DragStart(v ViewState, day, exercise int) ViewState {
	out := v.clone()
	out.Dragged = &DragRef{Day: day, Exercise: exercise}
	return out
}

// Drop moves the dragged exercise onto the target slot and clears the drag.
// Drops onto another day are ignored.
func Drop(p models.Program, v ViewState, day, target int) (models.Program, ViewState) {
	out := v.clone()
	if out.Dragged == nil {
		return Clone(p), out
	}
	next := MoveExercise(p, out.Dragged.Day, out.Dragged.Exercise, day, target)
	out.Dragged = nil
	return next, out
}

// DragEnd clears the drag pointer.
func DragEnd(v ViewState) ViewState {
	out := v.clone()
	out.Dragged = nil
	return out
}

// SetFieldErrors replaces the view's field errors, e.g. after a failed
// submit. A nil map clears them.
func SetFieldErrors(v ViewState, fields map[string]string) ViewState {
	out := v.clone()
	out.Errors = nil
	if len(fields) > 0 {
		out.Errors = make(map[string]string, len(fields))
		for k, msg := range fields {
			out.Errors[k] = msg
		}
	}
	return out
}
