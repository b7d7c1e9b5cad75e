package step

import (
	"context"
	"fmt"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/paginator"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Reader owns a connector and codec. For each inbound context (or once
// when there is no predecessor) it binds parameters, iterates the
// paginator, and streams each sub-connector's fetch() as one outbound
// context per record (spec.md §4.7).
type Reader struct {
	Common
	Connector connector.Connector
	Paginator paginator.Paginator
}

// Threads reports the effective worker count: the configured thread
// count, clamped to 1 when the paginator isn't parallelisable (spec.md §9).
func (r *Reader) Threads() int {
	if !r.Paginator.IsParallelisable() {
		return 1
	}
	return r.threads()
}

func (r *Reader) Run(ctx context.Context, in <-chan record.Context, out chan<- record.Context) error {
	defer func() {
		if out != nil {
			close(out)
		}
	}()

	worker := func() error {
		if in == nil {
			return r.readOne(ctx, record.New(r.Name, record.Ok(value.Null())), out)
		}
		for inCtx := range in {
			if !r.matches(inCtx) {
				if out != nil {
					out <- inCtx.Advance(r.Name, inCtx.Envelope)
				}
				continue
			}
			if err := r.readOne(ctx, inCtx, out); err != nil {
				return err
			}
		}
		return nil
	}

	workers := r.Threads()
	if in == nil {
		workers = 1
	}
	return runWorkers(workers, worker)
}

func (r *Reader) readOne(ctx context.Context, seed record.Context, out chan<- record.Context) error {
	base := r.Connector.Clone()
	base.SetParameters(seed.Envelope.Serialize())
	next := r.Paginator.Paginate(base)

	for {
		page, ok, err := next(ctx)
		if err != nil {
			return fmt.Errorf("reader %q: %w", r.Name, err)
		}
		if !ok {
			return nil
		}
		envs := page.Envelopes
		if !page.Prefetched {
			envs, err = page.Connector.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("reader %q: %w", r.Name, err)
			}
		}
		for _, e := range envs {
			if out == nil {
				continue
			}
			select {
			case out <- seed.Advance(r.Name, e):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
