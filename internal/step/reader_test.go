package step_test

import (
	"context"
	"testing"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/inmemory"
	"github.com/jmfiaschi/chewgo/internal/connector/paginator"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCursorConnector emulates a stateful cursor source: each Fetch
// call advances to the next configured response regardless of bound
// parameters, and counts how many times it was actually called. Reusing
// the same response across two fetches (token-extraction + record
// emission) would desynchronise the emitted page from the page the token
// was read from, so a correct implementation calls Fetch exactly once per
// page.
type countingCursorConnector struct {
	inmemory.Connector
	responses  []string
	idx        int
	fetchCalls int
}

func (c *countingCursorConnector) Clone() connector.Connector {
	return c
}

func (c *countingCursorConnector) Fetch(context.Context) ([]record.Envelope, error) {
	c.fetchCalls++
	i := c.idx
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	c.idx++
	return c.Codec().Read([]byte(c.responses[i]))
}

// TestReaderFetchesCursorPageExactlyOnce proves step.Reader doesn't
// re-fetch a cursor sub-connector after the paginator already fetched it
// to extract the continuation token.
func TestReaderFetchesCursorPageExactlyOnce(t *testing.T) {
	doc := document.NewJSONL(document.Metadata{})
	responses := []string{
		`{"next":"X","v":1}`,
		`{"next":"Y","v":2}`,
		`{"next":null,"v":3}`,
	}
	conn := &countingCursorConnector{
		Connector: *inmemory.New("", doc),
		responses: responses,
	}

	r := &step.Reader{
		Common:    step.Common{Name: "r", ThreadNumber: 1},
		Connector: conn,
		Paginator: paginator.Cursor{Limit: 10, EntryPath: "/next"},
	}

	out := make(chan record.Context, 16)
	require.NoError(t, r.Run(context.Background(), nil, out))

	var results []record.Context
	for c := range out {
		results = append(results, c)
	}

	require.Len(t, results, 3)
	for i, want := range []float64{1, 2, 3} {
		v, ok := results[i].Envelope.Serialize().Object().Get("v")
		require.True(t, ok)
		assert.Equal(t, want, v.Number())
	}
	assert.Equal(t, 3, conn.fetchCalls, "each cursor page must be fetched exactly once")
}
