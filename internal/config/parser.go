package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/value"
	"gopkg.in/yaml.v3"
)

// Load reads path, applies any --set key=value overrides against the raw
// document, and validates the result. Mirrors the pack's plain
// yaml.Unmarshal-then-validate pipeline (Streamy's ParseConfig), rather
// than a mapstructure-based decode, so custom-typed fields like
// update.Action survive an override pass unchanged.
func Load(path string, overrides ...string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if len(overrides) > 0 {
		data, err = applyOverrides(data, overrides)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := validatorInstance().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// applyOverrides decodes data into a generic tree, applies each "key=value"
// override via internal/pointer (key accepts the same dotted/bracketed
// grammar as template field paths), and re-encodes to YAML. value is
// parsed as a YAML scalar first, so "4" becomes a number and "true" a
// bool, matching how a hand-typed config value would be read.
func applyOverrides(data []byte, overrides []string) ([]byte, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	root := value.FromGo(generic)

	for _, o := range overrides {
		key, raw, ok := strings.Cut(o, "=")
		if !ok {
			return nil, fmt.Errorf("override %q: expected key=value", o)
		}
		var parsed any
		if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("override %q: %w", o, err)
		}
		root = pointer.Set(root, pointer.Canonical(key), value.FromGo(parsed))
	}

	out, err := yaml.Marshal(value.ToGo(root))
	if err != nil {
		return nil, fmt.Errorf("re-encoding: %w", err)
	}
	return out, nil
}
