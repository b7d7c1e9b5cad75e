package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
	toml "github.com/pelletier/go-toml/v2"
)

// TOML codec: metadata only, per spec.md §6. Grounded on
// github.com/pelletier/go-toml/v2, pulled in by open-platform-model-cli as
// viper's TOML driver.
type TOML struct {
	meta Metadata
}

func NewTOML(meta Metadata) *TOML {
	return &TOML{meta: defaultTOMLMetadata().Merge(meta)}
}

func defaultTOMLMetadata() Metadata {
	return Metadata{MIMEType: strp("application"), MIMESubtype: strp("toml")}
}

func (d *TOML) Metadata() Metadata                { return d.meta }
func (d *TOML) SetEntryPath(path string) error     { return fmt.Errorf("toml: entry path not supported") }
func (d *TOML) Header(_ []record.Envelope) []byte  { return nil }
func (d *TOML) Footer(_ []record.Envelope) []byte  { return nil }
func (d *TOML) Terminator() []byte                 { return []byte("\n") }
func (d *TOML) HasData(data []byte) bool           { return len(bytes.TrimSpace(data)) > 0 }

// Read treats the whole buffer as a single TOML document and so returns at
// most one record, since TOML has no standard multi-document framing.
func (d *TOML) Read(data []byte) ([]record.Envelope, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var parsed map[string]any
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return []record.Envelope{record.Err(value.Null(), record.ErrorKindMalformed, fmt.Sprintf("toml: %v", err))}, nil
	}
	return []record.Envelope{record.Ok(value.FromGo(parsed))}, nil
}

func (d *TOML) Write(envs []record.Envelope) ([]byte, error) {
	parts := make([]string, 0, len(envs))
	for _, e := range envs {
		b, err := toml.Marshal(value.ToGo(e.Serialize()))
		if err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
		parts = append(parts, strings.TrimRight(string(b), "\n"))
	}
	return []byte(strings.Join(parts, "\n")), nil
}
