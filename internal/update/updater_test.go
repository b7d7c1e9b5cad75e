package update

import (
	"testing"

	"github.com/jmfiaschi/chewgo/internal/tmpl"
	"github.com/jmfiaschi/chewgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestApplyRemoveThenMerge(t *testing.T) {
	u := New()
	input := value.NewObject()
	input.Object().Set("a", value.Number(1))
	input.Object().Set("x", value.Number(2))

	actions := []Action{
		{Field: "/a", ActionType: ActionRemove},
		{Field: "/b", Pattern: strp("{{ .Input.x }}"), ActionType: ActionMerge},
	}

	out, err := u.Apply(input, map[string]tmpl.StepResultView{}, nil, actions)
	require.NoError(t, err)

	b, ok := out.Object().Get("b")
	require.True(t, ok)
	assert.Equal(t, float64(2), b.Number())
	assert.Equal(t, []string{"b"}, out.Object().Keys())
}

func TestApplyOrderMatters(t *testing.T) {
	u := New()
	input := value.Null()

	actions := []Action{
		{Field: "/v", Pattern: strp("1"), ActionType: ActionMerge},
		{Field: "/v", Pattern: strp("{{ .Output.v }}-2"), ActionType: ActionReplace},
	}

	out, err := u.Apply(input, map[string]tmpl.StepResultView{}, nil, actions)
	require.NoError(t, err)
	v, _ := out.Object().Get("v")
	assert.Equal(t, "1-2", v.Str())
}

func TestApplyRenderErrorNamesField(t *testing.T) {
	u := New()
	actions := []Action{
		{Field: "/bad", Pattern: strp("{{ .Input.missing.deeper }}"), ActionType: ActionMerge},
	}
	_, err := u.Apply(value.Null(), map[string]tmpl.StepResultView{}, nil, actions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/bad")
}

func TestApplyNullSentinel(t *testing.T) {
	u := New()
	out, err := u.Apply(value.Null(), map[string]tmpl.StepResultView{}, nil, nil)
	require.NoError(t, err)
	assert.True(t, out.IsNull())
}
