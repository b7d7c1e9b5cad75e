package step_test

import (
	"context"
	"testing"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/reference"
	"github.com/jmfiaschi/chewgo/internal/step"
	"github.com/jmfiaschi/chewgo/internal/update"
	"github.com/jmfiaschi/chewgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noRefs = map[string]connector.Connector{}

func drain(t *testing.T, out chan record.Context) []record.Context {
	t.Helper()
	var results []record.Context
	for c := range out {
		results = append(results, c)
	}
	return results
}

func TestTransformerEmptyStreamClosesCleanly(t *testing.T) {
	in := make(chan record.Context)
	out := make(chan record.Context)
	close(in)

	tr := &step.Transformer{
		Common:     step.Common{Name: "t", ThreadNumber: 1},
		Loader:     reference.NewLoader(),
		References: noRefs,
	}

	go func() { _ = tr.Run(context.Background(), in, out) }()
	results := drain(t, out)
	assert.Empty(t, results)
}

func TestTransformerSingleRecordMultiWorker(t *testing.T) {
	in := make(chan record.Context, 1)
	out := make(chan record.Context, 4)

	input := value.NewObject()
	input.Object().Set("x", value.Number(2))
	in <- record.New("prev", record.Ok(input))
	close(in)

	pattern := "{{ .Input.x }}"
	tr := &step.Transformer{
		Common:     step.Common{Name: "t", ThreadNumber: 4},
		Actions:    []update.Action{{Field: "/b", Pattern: &pattern, ActionType: update.ActionMerge}},
		Loader:     reference.NewLoader(),
		References: noRefs,
	}

	require.NoError(t, tr.Run(context.Background(), in, out))
	results := drain(t, out)
	require.Len(t, results, 1)
	v, ok := results[0].Envelope.Serialize().Object().Get("b")
	require.True(t, ok)
	assert.Equal(t, float64(2), v.Number())
}

func TestTransformerNullResultDropped(t *testing.T) {
	in := make(chan record.Context, 1)
	out := make(chan record.Context, 1)
	in <- record.New("prev", record.Ok(value.NewObject()))
	close(in)

	tr := &step.Transformer{
		Common:     step.Common{Name: "t", ThreadNumber: 1},
		Actions:    nil, // no actions -> output stays null -> dropped
		Loader:     reference.NewLoader(),
		References: noRefs,
	}
	require.NoError(t, tr.Run(context.Background(), in, out))
	results := drain(t, out)
	assert.Empty(t, results)
}

func TestEnvelopePreservationOnDataTypeOk(t *testing.T) {
	in := make(chan record.Context, 1)
	out := make(chan record.Context, 1)
	errEnv := record.Err(value.Null(), record.ErrorKindMalformed, "boom")
	in <- record.New("prev", errEnv)
	close(in)

	tr := &step.Transformer{
		Common:     step.Common{Name: "t", DataType: "ok", ThreadNumber: 1},
		Loader:     reference.NewLoader(),
		References: noRefs,
	}
	require.NoError(t, tr.Run(context.Background(), in, out))
	results := drain(t, out)
	require.Len(t, results, 1)
	assert.True(t, results[0].Envelope.IsErr)
	assert.Equal(t, "boom", results[0].Envelope.Message)
}

func TestValidatorAggregatesFailures(t *testing.T) {
	in := make(chan record.Context, 1)
	out := make(chan record.Context, 1)

	input := value.NewObject()
	input.Object().Set("n", value.String("abc"))
	input.Object().Set("t", value.String("123"))
	in <- record.New("prev", record.Ok(input))
	close(in)

	v := &step.Validator{
		Common: step.Common{Name: "v", ThreadNumber: 1},
		Rules: []step.Rule{
			{Name: "rule_number", Pattern: `{{ if regexMatch "^[0-9]+$" .Input.n }}true{{ else }}false{{ end }}`, Message: "bad n"},
			{Name: "rule_text", Pattern: `{{ if regexMatch "^[^0-9]+$" .Input.t }}true{{ else }}false{{ end }}`, Message: "bad t"},
		},
		Separator:  " & ",
		Loader:     reference.NewLoader(),
		References: noRefs,
	}
	require.NoError(t, v.Run(context.Background(), in, out))
	results := drain(t, out)
	require.Len(t, results, 1)
	assert.True(t, results[0].Envelope.IsErr)
	assert.Equal(t, "bad n & bad t", results[0].Envelope.Message)
}
