package step

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/record"
)

// Eraser calls erase() once per distinct resolved path observed on the
// input channel, forwarding inputs downstream unchanged. A non-variable
// path is erased once at startup instead (spec.md §4.7).
type Eraser struct {
	Common
	Connector connector.Connector

	mu    sync.Mutex
	seen  map[string]bool
	setup bool
}

func (e *Eraser) Threads() int { return 1 }

func (e *Eraser) Run(ctx context.Context, in <-chan record.Context, out chan<- record.Context) error {
	defer func() {
		if out != nil {
			close(out)
		}
	}()

	e.mu.Lock()
	if e.seen == nil {
		e.seen = make(map[string]bool)
	}
	e.mu.Unlock()

	if !e.Connector.IsVariable() {
		if err := e.Connector.Clone().Erase(ctx); err != nil {
			return fmt.Errorf("eraser %q: %w", e.Name, err)
		}
		for inCtx := range in {
			if out != nil {
				out <- inCtx.Advance(e.Name, inCtx.Envelope)
			}
		}
		return nil
	}

	for inCtx := range in {
		if !e.matches(inCtx) {
			if out != nil {
				out <- inCtx.Advance(e.Name, inCtx.Envelope)
			}
			continue
		}
		conn := e.Connector.Clone()
		conn.SetParameters(inCtx.Envelope.Serialize())
		path, err := conn.Path()
		if err != nil {
			return fmt.Errorf("eraser %q: %w", e.Name, err)
		}

		e.mu.Lock()
		already := e.seen[path]
		e.seen[path] = true
		e.mu.Unlock()

		if !already {
			if err := conn.Erase(ctx); err != nil {
				return fmt.Errorf("eraser %q: %w", e.Name, err)
			}
		}
		if out != nil {
			out <- inCtx.Advance(e.Name, inCtx.Envelope)
		}
	}
	return nil
}
