package step_test

import (
	"context"
	"testing"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/inmemory"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/step"
	"github.com/jmfiaschi/chewgo/internal/value"
	"github.com/stretchr/testify/require"
)

// routingConnector fans a single variable-path template out across a
// fixed set of in-memory backing stores, keyed by the bound "id"
// parameter, so the variable-path flush scenario can be exercised
// without a real filesystem or HTTP target.
type routingConnector struct {
	connector.Base
	stores map[string]*inmemory.Connector
}

func (r *routingConnector) Clone() connector.Connector {
	return &routingConnector{Base: connector.NewBase(r.PathTemplate, r.Doc), stores: r.stores}
}

func (r *routingConnector) target() *inmemory.Connector {
	id, _ := pointer.Lookup(r.Params, "/id")
	return r.stores[id.Str()]
}

func (r *routingConnector) Len(ctx context.Context) (int, bool, error) { return r.target().Len(ctx) }
func (r *routingConnector) Fetch(ctx context.Context) ([]record.Envelope, error) {
	return r.target().Fetch(ctx)
}
func (r *routingConnector) Send(ctx context.Context, dataset []record.Envelope) error {
	return r.target().Send(ctx, dataset)
}
func (r *routingConnector) Erase(ctx context.Context) error { return r.target().Erase(ctx) }

func TestWriterFlushesOnVariablePathChange(t *testing.T) {
	doc := document.NewJSONL(document.Metadata{})
	stores := map[string]*inmemory.Connector{
		"A": inmemory.New("", doc),
		"B": inmemory.New("", doc),
	}

	w := &step.Writer{
		Common:    step.Common{Name: "w", ThreadNumber: 1},
		Connector: &routingConnector{Base: connector.NewBase("/out/{{ id }}.json", doc), stores: stores},
		BatchSize: 100,
	}

	in := make(chan record.Context, 3)
	out := make(chan record.Context, 3)
	for _, id := range []string{"A", "A", "B"} {
		rec := value.NewObject()
		rec.Object().Set("id", value.String(id))
		in <- record.New("prev", record.Ok(rec))
	}
	close(in)

	require.NoError(t, w.Run(context.Background(), in, out))
	for range out {
	}

	aEnvs, err := stores["A"].Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, aEnvs, 2)

	bEnvs, err := stores["B"].Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, bEnvs, 1)
}
