package step

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/reference"
	"github.com/jmfiaschi/chewgo/internal/update"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Rule is one validator rule: a template expected to render to the
// literal "true" or "false", plus the message used on failure.
type Rule struct {
	Name    string
	Pattern string
	Message string
}

// Validator wraps the updater: each rule becomes an action whose field is
// the rule name, folds the rendered verdicts into a single pass/fail
// object, and aggregates failures into one Err message (spec.md §4.7).
type Validator struct {
	Common
	Rules      []Rule
	Separator  string
	References map[string]connector.Connector
	Loader     *reference.Loader
}

func (v *Validator) Threads() int { return v.threads() }

func (v *Validator) actions() []update.Action {
	out := make([]update.Action, 0, len(v.Rules))
	for _, r := range v.Rules {
		pattern := r.Pattern
		out = append(out, update.Action{Field: "/" + r.Name, Pattern: &pattern, ActionType: update.ActionMerge})
	}
	return out
}

func (v *Validator) Run(ctx context.Context, in <-chan record.Context, out chan<- record.Context) error {
	defer func() {
		if out != nil {
			close(out)
		}
	}()

	actions := v.actions()
	sep := v.Separator
	if sep == "" {
		sep = " & "
	}

	worker := func() error {
		u := update.New()
		refs, err := loadReferences(ctx, v.Loader, v.References)
		if err != nil {
			return err
		}

		for inCtx := range in {
			if !v.matches(inCtx) {
				if out != nil {
					out <- inCtx.Advance(v.Name, inCtx.Envelope)
				}
				continue
			}

			stepsResult := stepResultViews(inCtx.StepsResult)
			verdicts, err := u.Apply(inCtx.Envelope.Serialize(), stepsResult, refs, actions)

			var env record.Envelope
			if err != nil {
				env = record.Err(inCtx.Envelope.Value, record.ErrorKindRender, err.Error())
			} else if msg, failed := aggregateFailures(v.Rules, verdicts, sep); failed {
				env = record.Err(inCtx.Envelope.Value, record.ErrorKindRule, msg)
			} else {
				env = inCtx.Envelope
			}
			if out != nil {
				out <- inCtx.Advance(v.Name, env)
			}
		}
		return nil
	}

	return runWorkers(v.Threads(), worker)
}

// aggregateFailures inspects verdicts for each rule: a missing or
// non-bool value is a structural error against that rule (spec.md §9's
// fixed resolution of the non-bool open question); false is that rule's
// configured message; true passes silently.
func aggregateFailures(rules []Rule, verdicts *value.Value, sep string) (string, bool) {
	var failures []string
	for _, r := range rules {
		v, ok := pointer.Lookup(verdicts, "/"+r.Name)
		switch {
		case !ok || v.Kind() != value.KindBool:
			failures = append(failures, fmt.Sprintf("rule %q: expected bool, got %s", r.Name, kindName(v)))
		case !v.Bool():
			msg := r.Message
			if msg == "" {
				msg = fmt.Sprintf("rule %s failed", r.Name)
			}
			failures = append(failures, msg)
		}
	}
	if len(failures) == 0 {
		return "", false
	}
	return strings.Join(failures, sep), true
}

func kindName(v *value.Value) string {
	if v == nil {
		return "missing"
	}
	return v.Kind().String()
}

func loadReferences(ctx context.Context, loader *reference.Loader, refs map[string]connector.Connector) (map[string]any, error) {
	out := make(map[string]any, len(refs))
	for alias, conn := range refs {
		envs, err := loader.Load(ctx, alias, conn)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, len(envs))
		for _, e := range envs {
			items = append(items, value.ToGo(e.Serialize()))
		}
		out[alias] = items
	}
	return out, nil
}
