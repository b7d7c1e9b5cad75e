package step

import (
	"context"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Generator emits DatasetSize copies of each inbound context, or of a
// seed context when there is no predecessor (spec.md §4.7), for load
// testing and templated synthesis paired with a transformer.
type Generator struct {
	Common
	DatasetSize int
}

func (g *Generator) Threads() int { return g.threads() }

func (g *Generator) Run(ctx context.Context, in <-chan record.Context, out chan<- record.Context) error {
	defer func() {
		if out != nil {
			close(out)
		}
	}()

	n := g.DatasetSize
	if n <= 0 {
		n = 1
	}

	emit := func(inCtx record.Context) error {
		for i := 0; i < n; i++ {
			if out == nil {
				continue
			}
			select {
			case out <- inCtx.Advance(g.Name, inCtx.Envelope):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}

	worker := func() error {
		if in == nil {
			return emit(record.New(g.Name, record.Ok(value.Null())))
		}
		for inCtx := range in {
			if !g.matches(inCtx) {
				if out != nil {
					out <- inCtx.Advance(g.Name, inCtx.Envelope)
				}
				continue
			}
			if err := emit(inCtx); err != nil {
				return err
			}
		}
		return nil
	}

	workers := g.Threads()
	if in == nil {
		workers = 1
	}
	return runWorkers(workers, worker)
}
