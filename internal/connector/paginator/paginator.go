// Package paginator implements the four pagination strategies of
// spec.md §4.5: once, wildcard, offset, cursor. Each strategy expands a
// base connector into a lazy sequence of sub-connectors.
package paginator

import (
	"context"
	"fmt"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Page is one paginator iteration. Envelopes is set, and Prefetched true,
// when the paginator strategy already had to fetch Connector to drive its
// own logic (Cursor reads a continuation token out of the response body);
// callers must reuse Envelopes in that case instead of fetching Connector
// again, since a second fetch against a stateful cursor source is not
// guaranteed to return the same page the token came from.
type Page struct {
	Connector  connector.Connector
	Envelopes  []record.Envelope
	Prefetched bool
}

// Next yields the next page. ok is false once the sequence is exhausted;
// both page.Connector and err are nil/zero in that case.
type Next func(ctx context.Context) (page Page, ok bool, err error)

// Paginator is the contract of spec.md §4.5/§4.9: a strategy that expands
// a base connector into a sequence of sub-connectors, plus a capability
// bit the step runtime uses to decide worker count (spec.md §9).
type Paginator interface {
	// IsParallelisable reports whether sub-connectors may be consumed by
	// more than one worker concurrently.
	IsParallelisable() bool
	// Paginate returns the next-function for base.
	Paginate(base connector.Connector) Next
}

// Lister is implemented by connectors whose underlying namespace supports
// glob expansion (e.g. a filesystem). Wildcard pagination requires it.
type Lister interface {
	List(ctx context.Context, pattern string) ([]string, error)
}

// Once yields the connector itself exactly once, for non-paged sources.
type Once struct{}

func (Once) IsParallelisable() bool { return true }

func (Once) Paginate(base connector.Connector) Next {
	done := false
	return func(ctx context.Context) (Page, bool, error) {
		if done {
			return Page{}, false, nil
		}
		done = true
		return Page{Connector: base}, true, nil
	}
}

// Wildcard expands a glob pattern in the base connector's path into one
// sub-connector per match, in binary (lexicographic) order, respecting an
// optional skip/limit window.
type Wildcard struct {
	Skip  int
	Limit int // 0 = unlimited
}

func (Wildcard) IsParallelisable() bool { return true }

func (w Wildcard) Paginate(base connector.Connector) Next {
	var matches []string
	var loaded bool
	idx := 0

	return func(ctx context.Context) (Page, bool, error) {
		if !loaded {
			lister, ok := base.(Lister)
			if !ok {
				return Page{}, false, fmt.Errorf("paginator: wildcard requires a connector that implements Lister")
			}
			pattern, err := base.Path()
			if err != nil {
				return Page{}, false, err
			}
			all, err := lister.List(ctx, pattern)
			if err != nil {
				return Page{}, false, err
			}
			if w.Skip > 0 && w.Skip < len(all) {
				all = all[w.Skip:]
			} else if w.Skip >= len(all) {
				all = nil
			}
			if w.Limit > 0 && len(all) > w.Limit {
				all = all[:w.Limit]
			}
			matches = all
			loaded = true
		}
		if idx >= len(matches) {
			return Page{}, false, nil
		}
		match := matches[idx]
		idx++
		sub := base.Clone()
		params := value.NewObject()
		params.Object().Set("paginator", matchParams(match))
		sub.SetParameters(params)
		return Page{Connector: sub}, true, nil
	}
}

func matchParams(match string) *value.Value {
	o := value.NewObject()
	o.Object().Set("match", value.String(match))
	return o
}

// Offset emits sub-connectors parameterised by an ascending "skip"/fixed
// "limit" pair. It terminates when an optional total count is exhausted,
// or when the re-interpolated path equals the previous iteration's path
// (an idempotent path means the source stopped advancing).
type Offset struct {
	Skip  int
	Limit int
	Count int // 0 = unknown; paginate until path repeats
}

func (Offset) IsParallelisable() bool { return true }

func (o Offset) Paginate(base connector.Connector) Next {
	skip := o.Skip
	var lastPath string
	first := true

	return func(ctx context.Context) (Page, bool, error) {
		if o.Count > 0 && skip >= o.Skip+o.Count {
			return Page{}, false, nil
		}
		sub := base.Clone()
		params := value.NewObject()
		page := value.NewObject()
		page.Object().Set("skip", value.Number(float64(skip)))
		page.Object().Set("limit", value.Number(float64(o.Limit)))
		params.Object().Set("paginator", page)
		sub.SetParameters(params)

		path, err := sub.Path()
		if err != nil {
			return Page{}, false, err
		}
		if !first && path == lastPath {
			return Page{}, false, nil
		}
		first = false
		lastPath = path
		skip += o.Limit
		return Page{Connector: sub}, true, nil
	}
}

// Cursor reads a token from each response at EntryPath and chains it into
// the next sub-connector's parameters. It terminates when no token is
// produced. Single-threaded by construction (spec.md §4.5).
type Cursor struct {
	Limit     int
	EntryPath string
}

func (Cursor) IsParallelisable() bool { return false }

func (c Cursor) Paginate(base connector.Connector) Next {
	var token *value.Value
	started := false
	done := false

	return func(ctx context.Context) (Page, bool, error) {
		if done {
			return Page{}, false, nil
		}
		if started && (token == nil || token.IsNull()) {
			done = true
			return Page{}, false, nil
		}
		started = true

		sub := base.Clone()
		params := value.NewObject()
		page := value.NewObject()
		page.Object().Set("limit", value.Number(float64(c.Limit)))
		if token != nil {
			page.Object().Set("token", token)
		}
		params.Object().Set("paginator", page)
		sub.SetParameters(params)

		// The token for the *next* page only exists inside this page's
		// response, so this fetch can't be deferred to the caller: fetch
		// once here and hand the envelopes back as Prefetched so
		// Reader.readOne doesn't issue a second, possibly desynchronised
		// fetch against the same stateful source.
		envs, err := sub.Fetch(ctx)
		if err != nil {
			return Page{}, false, err
		}
		token = nil
		for _, e := range envs {
			if v, ok := pointer.Lookup(e.Serialize(), c.EntryPath); ok {
				token = v
				break
			}
		}
		return Page{Connector: sub, Envelopes: envs, Prefetched: true}, true, nil
	}
}
