// Package counter implements the optional companion strategies to the
// offset paginator (spec.md §4.5): header, body, scan, metadata.
package counter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/pointer"
)

// Counter returns the total record count for conn, feeding the offset
// paginator's count when the user hasn't supplied one.
type Counter interface {
	Count(ctx context.Context, conn connector.Connector) (int, error)
}

// HeaderSource is implemented by connectors that expose response headers
// from their last fetch (e.g. HTTP).
type HeaderSource interface {
	ResponseHeader(name string) string
}

// Header reads the total count from a named response header.
type Header struct {
	Name string
}

func (h Header) Count(ctx context.Context, conn connector.Connector) (int, error) {
	src, ok := conn.(HeaderSource)
	if !ok {
		return 0, fmt.Errorf("counter: connector does not expose response headers")
	}
	if _, err := conn.Fetch(ctx); err != nil {
		return 0, err
	}
	raw := src.ResponseHeader(h.Name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("counter: header %q is not an integer: %w", h.Name, err)
	}
	return n, nil
}

// Body reads the total count from EntryPath in the first fetched record
// that has it.
type Body struct {
	EntryPath string
}

func (b Body) Count(ctx context.Context, conn connector.Connector) (int, error) {
	envs, err := conn.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range envs {
		v, ok := pointer.Lookup(e.Serialize(), b.EntryPath)
		if !ok {
			continue
		}
		return int(v.Number()), nil
	}
	return 0, fmt.Errorf("counter: entry path %q not found in response", b.EntryPath)
}

// Scan counts records by fully materialising the connector's fetch
// stream, the generic equivalent of a full-table "SELECT COUNT(1)" when
// no cheaper signal is available.
type Scan struct{}

func (Scan) Count(ctx context.Context, conn connector.Connector) (int, error) {
	envs, err := conn.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return len(envs), nil
}

// Metadata asks the connector for its resource length directly (e.g. a
// database driver's row-count metadata call, or a filesystem stat).
type Metadata struct{}

func (Metadata) Count(ctx context.Context, conn connector.Connector) (int, error) {
	n, supported, err := conn.Len(ctx)
	if err != nil {
		return 0, err
	}
	if !supported {
		return 0, fmt.Errorf("counter: connector does not report length metadata")
	}
	return n, nil
}
