package step

import (
	"context"
	"fmt"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/record"
)

// Writer owns a connector and codec. It buffers records up to BatchSize
// or until the resource path is about to change, flushes, and must flush
// the remainder at shutdown (spec.md §4.7, scenario 6).
type Writer struct {
	Common
	Connector connector.Connector
	BatchSize int
}

func (w *Writer) Threads() int { return w.threads() }

func (w *Writer) Run(ctx context.Context, in <-chan record.Context, out chan<- record.Context) error {
	defer func() {
		if out != nil {
			close(out)
		}
	}()

	worker := func() error {
		conn := w.Connector.Clone()
		var batch []record.Envelope
		havePrev := false

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := conn.Send(ctx, batch); err != nil {
				return fmt.Errorf("writer %q: %w", w.Name, err)
			}
			batch = batch[:0]
			return nil
		}

		for inCtx := range in {
			if !w.matches(inCtx) {
				if out != nil {
					out <- inCtx.Advance(w.Name, inCtx.Envelope)
				}
				continue
			}

			newParams := inCtx.Envelope.Serialize()
			if havePrev {
				changed, err := conn.IsResourceWillChange(newParams)
				if err != nil {
					return fmt.Errorf("writer %q: %w", w.Name, err)
				}
				if changed {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			conn.SetParameters(newParams)
			havePrev = true

			batch = append(batch, inCtx.Envelope)
			if w.BatchSize > 0 && len(batch) >= w.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
			if out != nil {
				out <- inCtx.Advance(w.Name, inCtx.Envelope)
			}
		}
		return flush()
	}

	return runWorkers(w.Threads(), worker)
}
