package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Level: "warn"})
	require.NoError(t, err)

	l.Info("skipped %s", "me")
	l.Warning("seen %s", "me")

	out := buf.String()
	assert.NotContains(t, out, "skipped")
	assert.Contains(t, out, `"seen me"`)
}

func TestWithAttachesField(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Writer: &buf, Level: "debug"})
	require.NoError(t, err)

	l.With("step", "reader").Error("boom")
	assert.True(t, strings.Contains(buf.String(), `"step":"reader"`))
}

func TestNopDiscardsEverything(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warning("x")
		l.Error("x")
		l.With("a", 1).Info("x")
	})
}
