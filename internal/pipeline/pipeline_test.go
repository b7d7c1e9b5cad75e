package pipeline_test

import (
	"context"
	"testing"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/inmemory"
	"github.com/jmfiaschi/chewgo/internal/connector/paginator"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/pipeline"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/reference"
	"github.com/jmfiaschi/chewgo/internal/step"
	"github.com/jmfiaschi/chewgo/internal/update"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStaticCSVToJSONL implements spec.md §8 end-to-end scenario 1.
func TestStaticCSVToJSONL(t *testing.T) {
	csvDoc := document.NewCSV(document.Metadata{}, false, document.QuoteNecessary, document.TrimNone)
	source := inmemory.New("column1,column2\nA1,A2\nB1,B2\n", csvDoc)

	jsonlDoc := document.NewJSONL(document.Metadata{})
	sink := inmemory.New("", jsonlDoc)

	pattern := "{{ .Input | json_encode }}"
	steps := []step.Step{
		&step.Reader{
			Common:    step.Common{Name: "reader", ThreadNumber: 1},
			Connector: source,
			Paginator: paginator.Once{},
		},
		&step.Transformer{
			Common:     step.Common{Name: "transform", ThreadNumber: 1},
			Actions:    []update.Action{{Field: "/", Pattern: &pattern, ActionType: update.ActionReplace}},
			Loader:     reference.NewLoader(),
			References: map[string]connector.Connector{},
		},
		&step.Writer{
			Common:    step.Common{Name: "writer", ThreadNumber: 1},
			Connector: sink,
			BatchSize: 100,
		},
	}

	p := pipeline.New(steps, 16, nil)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, `{"column1":"A1","column2":"A2"}`+"\n"+`{"column1":"B1","column2":"B2"}`, sink.String())
}

// TestOffsetPaginatorEmitsExactlyCount implements spec.md §8 end-to-end
// scenario 2 using a fake whose path template embeds the bound skip
// parameter, the way a real paged HTTP source's URL would.
func TestOffsetPaginatorEmitsExactlyCount(t *testing.T) {
	doc := document.NewJSONL(document.Metadata{})
	base := &pagedConnector{Connector: *inmemory.New(`{"v":1}`, doc)}
	base.PathTemplate = "/links/{{ paginator.skip }}/10"

	p := paginator.Offset{Skip: 0, Limit: 1, Count: 3}
	next := p.Paginate(base)

	var got []connector.Connector
	for {
		page, ok, err := next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, page.Connector)
	}
	assert.Len(t, got, 3)
}

// TestCursorPaginatorTerminatesOnNullToken implements spec.md §8 end-to-end
// scenario 3.
func TestCursorPaginatorTerminatesOnNullToken(t *testing.T) {
	doc := document.NewJSONL(document.Metadata{})
	responses := []string{`{"next":"X"}`, `{"next":"Y"}`, `{"next":null}`}
	idx := 0
	base := &sequencedConnector{Connector: *inmemory.New(responses[0], doc), responses: responses, idx: &idx}

	p := paginator.Cursor{Limit: 10, EntryPath: "/next"}
	next := p.Paginate(base)

	count := 0
	for {
		_, ok, err := next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 3, count)
}

// pagedConnector is an inmemory.Connector whose path template is set by
// the test to reference the bound paginator parameters, so Offset's
// idempotent-path termination check sees a genuinely advancing path
// instead of inmemory's fixed "in-memory" literal.
type pagedConnector struct {
	inmemory.Connector
}

func (p *pagedConnector) Clone() connector.Connector {
	inner := inmemory.New("", p.Doc)
	inner.PathTemplate = p.PathTemplate
	return &pagedConnector{Connector: *inner}
}

// sequencedConnector feeds a fixed sequence of responses to successive
// Fetch calls, regardless of bound parameters, to emulate a paging
// server's cursor responses without a real transport.
type sequencedConnector struct {
	inmemory.Connector
	responses []string
	idx       *int
}

func (s *sequencedConnector) Clone() connector.Connector {
	return &sequencedConnector{Connector: s.Connector, responses: s.responses, idx: s.idx}
}

func (s *sequencedConnector) Fetch(ctx context.Context) ([]record.Envelope, error) {
	i := *s.idx
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	doc := s.Connector.Codec()
	*s.idx++
	return doc.Read([]byte(s.responses[i]))
}
