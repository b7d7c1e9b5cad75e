package step

import (
	"context"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/reference"
	"github.com/jmfiaschi/chewgo/internal/tmpl"
	"github.com/jmfiaschi/chewgo/internal/update"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Transformer invokes the updater with its configured actions and the
// step's loaded reference datasets. A render failure emits Err; a null
// result is dropped silently (spec.md §4.7).
type Transformer struct {
	Common
	Actions    []update.Action
	References map[string]connector.Connector
	Loader     *reference.Loader
}

func (t *Transformer) Threads() int { return t.threads() }

func (t *Transformer) Run(ctx context.Context, in <-chan record.Context, out chan<- record.Context) error {
	defer func() {
		if out != nil {
			close(out)
		}
	}()

	worker := func() error {
		u := update.New()
		refs, err := loadReferences(ctx, t.Loader, t.References)
		if err != nil {
			return err
		}

		for inCtx := range in {
			if !t.matches(inCtx) {
				if out != nil {
					out <- inCtx.Advance(t.Name, inCtx.Envelope)
				}
				continue
			}

			stepsResult := stepResultViews(inCtx.StepsResult)
			result, err := u.Apply(inCtx.Envelope.Serialize(), stepsResult, refs, t.Actions)
			var env record.Envelope
			switch {
			case err != nil:
				env = record.Err(inCtx.Envelope.Value, record.ErrorKindRender, err.Error())
			case result.IsNull():
				continue
			default:
				env = record.Ok(result)
			}
			if out != nil {
				out <- inCtx.Advance(t.Name, env)
			}
		}
		return nil
	}

	return runWorkers(t.Threads(), worker)
}

// stepResultViews projects a record.Context's steps_result map into the
// plain-data shape templates see under .Context.<stepName>.
func stepResultViews(in map[string]record.Envelope) map[string]tmpl.StepResultView {
	out := make(map[string]tmpl.StepResultView, len(in))
	for name, env := range in {
		v := tmpl.StepResultView{Ok: !env.IsErr, Value: value.ToGo(env.Value)}
		if env.IsErr {
			v.Error = env.Message
		}
		out[name] = v
	}
	return out
}
