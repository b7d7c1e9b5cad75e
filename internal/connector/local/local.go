// Package local implements a filesystem connector: spec.md §4.5's contract
// over os.ReadFile/os.WriteFile, with glob-based Lister support for the
// wildcard paginator.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/record"
)

type Connector struct {
	connector.Base
}

func New(pathTemplate string, doc document.Document) *Connector {
	return &Connector{Base: connector.NewBase(pathTemplate, doc)}
}

func (c *Connector) Clone() connector.Connector {
	return &Connector{Base: connector.NewBase(c.PathTemplate, c.Doc)}
}

func (c *Connector) Len(ctx context.Context) (int, bool, error) {
	path, err := c.Path()
	if err != nil {
		return 0, false, err
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return int(info.Size()), true, nil
}

func (c *Connector) Fetch(_ context.Context) ([]record.Envelope, error) {
	path, err := c.Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("local: %w", err)
	}
	return c.Doc.Read(data)
}

// Send rewrites path with the result of connector.Framing in full: framed
// already carries the prior contents (minus their stale footer), so this
// is a truncating write rather than an append.
func (c *Connector) Send(_ context.Context, dataset []record.Envelope) error {
	path, err := c.Path()
	if err != nil {
		return err
	}
	existing, _ := os.ReadFile(path)
	framed, err := connector.Framing(c.Doc, existing, dataset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("local: %w", err)
	}
	if err := os.WriteFile(path, framed, 0o644); err != nil {
		return fmt.Errorf("local: %w", err)
	}
	return nil
}

func (c *Connector) Erase(_ context.Context) error {
	path, err := c.Path()
	if err != nil {
		return err
	}
	if err := os.Truncate(path, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local: %w", err)
	}
	return nil
}

// List implements paginator.Lister by globbing pattern, returned in
// binary (lexicographic) order.
func (c *Connector) List(_ context.Context, pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("local: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}
