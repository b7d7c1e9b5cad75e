// Package pipeline builds the channel topology described in spec.md §2/§5:
// one bounded channel per step boundary, N workers per step sharing that
// boundary's channels, and the first-fatal-error propagation contract.
package pipeline

import (
	"context"
	"fmt"

	"github.com/jmfiaschi/chewgo/internal/logging"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/step"
)

// DefaultChannelCapacity is the bounded channel capacity recommendation
// of spec.md §5 ("implementation recommendation: ~1000 envelopes").
const DefaultChannelCapacity = 1000

// Pipeline is a built, ready-to-run sequence of steps wired by channel.
type Pipeline struct {
	steps    []step.Step
	capacity int
	log      logging.Logger
}

// New builds a pipeline from steps in declared order: step i's output
// channel becomes step i+1's input channel. The first step receives a nil
// input channel (it is the seed); the last step's output is discarded.
// A nil logger discards every message.
func New(steps []step.Step, capacity int, log logging.Logger) *Pipeline {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Pipeline{steps: steps, capacity: capacity, log: log}
}

// Run wires the channels, spawns every step's workers, and awaits them
// all. The first non-nil worker error becomes the pipeline's error
// (spec.md §5's completion protocol, step 3).
func (p *Pipeline) Run(ctx context.Context) error {
	if len(p.steps) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	channels := make([]chan record.Context, len(p.steps)-1)
	for i := range channels {
		channels[i] = make(chan record.Context, p.capacity)
	}

	errs := make(chan error, len(p.steps))
	for i, s := range p.steps {
		var in <-chan record.Context
		var out chan<- record.Context
		if i > 0 {
			in = channels[i-1]
		}
		if i < len(channels) {
			out = channels[i]
		}

		name := stepName(s, i)
		s := s
		go func(idx int) {
			p.log.Debug("step %q starting", name)
			err := s.Run(ctx, in, out)
			if err != nil {
				p.log.Error("step %q failed: %s", name, err)
				cancel()
			} else {
				p.log.Debug("step %q finished", name)
			}
			errs <- err
		}(i)
	}

	var first error
	for range p.steps {
		if err := <-errs; err != nil && first == nil {
			first = fmt.Errorf("pipeline: %w", err)
		}
	}
	return first
}

// stepName reports a step's configured name where available, falling back
// to its position for anonymous steps (e.g. ones built ad hoc in tests).
func stepName(s step.Step, idx int) string {
	if named, ok := s.(interface{ StepName() string }); ok && named.StepName() != "" {
		return named.StepName()
	}
	return fmt.Sprintf("#%d", idx)
}
