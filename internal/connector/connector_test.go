package connector_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/connector/inmemory"
	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathInterpolation(t *testing.T) {
	base := connector.NewBase("/out/{{ id }}.json", document.NewJSONL(document.Metadata{}))
	params := value.NewObject()
	params.Object().Set("id", value.String("A"))
	base.SetParameters(params)

	assert.True(t, base.IsVariable())
	path, err := base.Path()
	require.NoError(t, err)
	assert.Equal(t, "/out/A.json", path)
}

func TestPathInterpolationMissingVariableLeftAsIs(t *testing.T) {
	base := connector.NewBase("/out/{{ missing }}.json", document.NewJSONL(document.Metadata{}))
	path, err := base.Path()
	require.NoError(t, err)
	assert.Equal(t, "/out/{{ missing }}.json", path)
}

func TestIsResourceWillChange(t *testing.T) {
	base := connector.NewBase("/out/{{ id }}.json", document.NewJSONL(document.Metadata{}))
	a := value.NewObject()
	a.Object().Set("id", value.String("A"))
	base.SetParameters(a)

	b := value.NewObject()
	b.Object().Set("id", value.String("B"))
	changed, err := base.IsResourceWillChange(b)
	require.NoError(t, err)
	assert.True(t, changed)

	same := value.NewObject()
	same.Object().Set("id", value.String("A"))
	unchanged, err := base.IsResourceWillChange(same)
	require.NoError(t, err)
	assert.False(t, unchanged)
}

func TestInMemoryFetchSendErase(t *testing.T) {
	doc := document.NewJSONL(document.Metadata{})
	conn := inmemory.New("", doc)
	ctx := context.Background()

	obj := value.NewObject()
	obj.Object().Set("a", value.Number(1))
	require.NoError(t, conn.Send(ctx, []record.Envelope{record.Ok(obj)}))

	envs, err := conn.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, envs, 1)

	require.NoError(t, conn.Erase(ctx))
	n, _, err := conn.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestInMemoryFramingElision(t *testing.T) {
	doc := document.NewJSON(document.Metadata{}, false)
	conn := inmemory.New("", doc)
	ctx := context.Background()

	obj := value.NewObject()
	obj.Object().Set("a", value.Number(1))
	require.NoError(t, conn.Send(ctx, []record.Envelope{record.Ok(obj)}))
	first := conn.String()
	assert.Equal(t, `[{"a":1}]`, first)

	obj2 := value.NewObject()
	obj2.Object().Set("a", value.Number(2))
	require.NoError(t, conn.Send(ctx, []record.Envelope{record.Ok(obj2)}))
	second := conn.String()
	assert.Equal(t, `[{"a":1},{"a":2}]`, second)

	var decoded []map[string]float64
	require.NoError(t, json.Unmarshal([]byte(second), &decoded))
	assert.Equal(t, []map[string]float64{{"a": 1}, {"a": 2}}, decoded)
}
