// Package update implements the updater described in spec.md §4.3: the
// ordered action list that builds a fresh record from null, shared by the
// transformer and validator steps.
package update

import (
	"fmt"

	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/tmpl"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// ActionType is one of the three mutations an Action can perform.
type ActionType string

const (
	ActionMerge   ActionType = "merge"
	ActionReplace ActionType = "replace"
	ActionRemove  ActionType = "remove"
)

// Action is one (field, pattern, action_type) triple.
type Action struct {
	Field      string     `yaml:"field"`
	Pattern    *string    `yaml:"pattern,omitempty"`
	ActionType ActionType `yaml:"action_type"`
}

// Updater applies an ordered Action list to build a new record.
type Updater struct {
	Renderer *tmpl.Renderer
}

// New returns an Updater with its own renderer instance.
func New() *Updater {
	return &Updater{Renderer: tmpl.New()}
}

// Apply runs the algorithm of spec.md §4.3 step 2-4: for each action it
// builds the template context from the current output, then folds the
// action's rendered/resolved value into output, so every action sees the
// output left by the ones before it.
//
// A render failure on an action returns a wrapped error naming that
// action's field, per spec.md §4.2's error policy; the caller (the
// transformer step) is responsible for turning that into an Err envelope.
func (u *Updater) Apply(input *value.Value, stepsResult map[string]tmpl.StepResultView, refs map[string]any, actions []Action) (*value.Value, error) {
	output := value.Null()

	for _, action := range actions {
		var v *value.Value
		if action.Pattern != nil {
			rc := tmpl.RenderContext{
				Input:   value.ToGo(input),
				Context: stepsResult,
				Output:  value.ToGo(output),
				Refs:    refs,
			}
			rendered, err := u.Renderer.Render(*action.Pattern, rc)
			if err != nil {
				field := action.Field
				if field == "" {
					field = "/"
				}
				return nil, fmt.Errorf("action %q: %w", field, err)
			}
			v = tmpl.Resolve(rendered)
		} else {
			v = value.Null()
		}

		field := action.Field
		if field == "" {
			field = "/"
		}
		p := pointer.Canonical(field)

		switch action.ActionType {
		case ActionMerge:
			existing, _ := pointer.Lookup(output, p)
			output = pointer.Set(output, p, mergeTree(existing, v))
		case ActionReplace:
			output = pointer.Set(output, p, v)
		case ActionRemove:
			output = pointer.Delete(output, p)
		default:
			return nil, fmt.Errorf("action %q: unknown action_type %q", field, action.ActionType)
		}
	}

	return output, nil
}

// mergeTree structurally merges from into target: arrays append, objects
// recurse key by key, anything else is replaced by from. Mirrors the
// `merge` template filter but operates on the *value.Value tree directly
// so key insertion order survives (spec.md §3 invariant).
func mergeTree(target, from *value.Value) *value.Value {
	if from == nil || from.IsNull() {
		if target == nil {
			return value.Null()
		}
		return target
	}
	if target == nil || target.IsNull() {
		return from
	}

	if target.Kind() == value.KindArray && from.Kind() == value.KindArray {
		items := append(append([]*value.Value{}, target.Array()...), from.Array()...)
		return value.Array(items...)
	}

	if target.Kind() == value.KindObject && from.Kind() == value.KindObject {
		out := value.NewObject()
		for _, k := range target.Object().Keys() {
			tv, _ := target.Object().Get(k)
			out.Object().Set(k, tv)
		}
		for _, k := range from.Object().Keys() {
			fv, _ := from.Object().Get(k)
			if ev, ok := out.Object().Get(k); ok {
				out.Object().Set(k, mergeTree(ev, fv))
			} else {
				out.Object().Set(k, fv)
			}
		}
		return out
	}

	return from
}
