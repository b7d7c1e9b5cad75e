package pointer

import (
	"testing"

	"github.com/jmfiaschi/chewgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"a.b[0].c":     "/a/b/0/c",
		"":              "/",
		"/":             "/",
		"a..b":          "/a/b",
		"a\\.b":         "/a.b",
		"a[0][1]":       "/a/0/1",
		"/already/here": "/already/here",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonical(in), "input %q", in)
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	inputs := []string{"a.b[0].c", "", "/", "a..b", "a\\.b", "a[0][1]", "x.y.z"}
	for _, in := range inputs {
		once := Canonical(in)
		twice := Canonical(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestLookup(t *testing.T) {
	root := value.NewObject()
	root.Object().Set("a", value.Array(value.String("x"), value.String("y")))

	got, ok := Lookup(root, "a.1")
	require.True(t, ok)
	assert.Equal(t, "y", got.Str())

	_, ok = Lookup(root, "a.5")
	assert.False(t, ok)
}

func TestSetAndDelete(t *testing.T) {
	root := value.Null()
	root = Set(root, "/b", value.Number(2))
	got, ok := Lookup(root, "/b")
	require.True(t, ok)
	assert.Equal(t, float64(2), got.Number())

	root = Delete(root, "/b")
	_, ok = Lookup(root, "/b")
	assert.False(t, ok)
}

func TestLookupAllWildcard(t *testing.T) {
	root := value.NewObject()
	inner1 := value.NewObject()
	inner1.Object().Set("n", value.Number(1))
	inner2 := value.NewObject()
	inner2.Object().Set("n", value.Number(2))
	root.Object().Set("items", value.Array(inner1, inner2))

	matches := LookupAll(root, "items.*.n")
	require.Len(t, matches, 2)
	assert.Equal(t, float64(1), matches[0].Value.Number())
	assert.Equal(t, float64(2), matches[1].Value.Number())
}
