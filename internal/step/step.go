// Package step implements the six step kinds of spec.md §4.7: reader,
// writer, transformer, validator, eraser, generator. Each step is a node
// in the pipeline graph, consuming an input channel and producing to an
// output channel.
package step

import (
	"context"

	"github.com/jmfiaschi/chewgo/internal/record"
)

// Common holds the attributes every step kind shares (spec.md §4.7):
// name, the ok/err filter, and worker count.
type Common struct {
	Name         string
	DataType     string // "", "ok" or "err"; "" matches every envelope
	ThreadNumber int
}

// StepName reports the configured name, for logging and diagnostics.
func (c Common) StepName() string { return c.Name }

func (c Common) threads() int {
	if c.ThreadNumber <= 0 {
		return 1
	}
	return c.ThreadNumber
}

// matches reports whether ctx's envelope satisfies the step's data_type
// filter. Unmatched records are forwarded unchanged per spec.md §4.7.
func (c Common) matches(ctx record.Context) bool {
	return c.DataType == "" || c.DataType == ctx.Envelope.DataType()
}

// Step is a pipeline node: it drains in, possibly emits to out, and
// returns the first fatal error encountered by any of its workers.
type Step interface {
	Run(ctx context.Context, in <-chan record.Context, out chan<- record.Context) error
	Threads() int
}

// runWorkers spawns n copies of worker and waits for all to finish. It
// does not close any channel; each step's Run closes its own out once
// runWorkers returns. The first non-nil worker error is returned.
func runWorkers(n int, worker func() error) error {
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() { errs <- worker() }()
	}
	var first error
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil && first == nil {
			first = err
		}
	}
	return first
}
