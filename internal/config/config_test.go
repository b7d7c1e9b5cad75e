package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmfiaschi/chewgo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
channel_capacity: 4
steps:
  - type: reader
    name: reader
    threads: 1
    connector:
      kind: inmemory
      path: in-memory
      seed: "column1,column2\nA1,A2\n"
      document:
        format: csv
  - type: transformer
    name: transform
    actions:
      - field: "/"
        pattern: "{{ .Input | json_encode }}"
        action_type: replace
  - type: writer
    name: writer
    connector:
      kind: inmemory
      path: in-memory
      document:
        format: jsonl
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesAndValidates(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Steps, 3)
	assert.Equal(t, "reader", cfg.Steps[0].Type)
	assert.Equal(t, "csv", cfg.Steps[0].Connector.Document.Format)
}

func TestLoadRejectsUnknownStepType(t *testing.T) {
	path := writeTemp(t, "steps:\n  - type: bogus\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadAppliesSetOverride(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := config.Load(path, "steps.0.threads=3")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Steps[0].Threads)
}

func TestBuildRunsEndToEnd(t *testing.T) {
	path := writeTemp(t, sampleYAML)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	p, err := config.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))
}
