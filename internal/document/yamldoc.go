package document

import (
	"fmt"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
	"gopkg.in/yaml.v3"
)

// YAML codec: metadata only, per spec.md §6. A document is a single
// `---`-delimited stream of records.
type YAML struct {
	meta Metadata
}

func NewYAML(meta Metadata) *YAML {
	return &YAML{meta: defaultYAMLMetadata().Merge(meta)}
}

func defaultYAMLMetadata() Metadata {
	return Metadata{MIMEType: strp("application"), MIMESubtype: strp("yaml")}
}

func (d *YAML) Metadata() Metadata                 { return d.meta }
func (d *YAML) SetEntryPath(path string) error     { return fmt.Errorf("yaml: entry path not supported") }
func (d *YAML) Header(_ []record.Envelope) []byte  { return nil }
func (d *YAML) Footer(_ []record.Envelope) []byte  { return nil }
func (d *YAML) Terminator() []byte                 { return []byte("\n---\n") }
func (d *YAML) HasData(data []byte) bool           { return len(strings.TrimSpace(string(data))) > 0 }

func (d *YAML) Read(data []byte) ([]record.Envelope, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	var out []record.Envelope
	for {
		var doc any
		err := dec.Decode(&doc)
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			out = append(out, record.Err(value.Null(), record.ErrorKindMalformed, fmt.Sprintf("yaml: %v", err)))
			break
		}
		out = append(out, record.Ok(value.FromGo(normalizeYAML(doc))))
	}
	return out, nil
}

// normalizeYAML converts yaml.v3's map[string]interface{} / []interface{}
// into the same shape value.FromGo already understands.
func normalizeYAML(in any) any {
	switch t := in.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = normalizeYAML(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = normalizeYAML(v)
		}
		return out
	default:
		return t
	}
}

func (d *YAML) Write(envs []record.Envelope) ([]byte, error) {
	parts := make([]string, 0, len(envs))
	for _, e := range envs {
		b, err := yaml.Marshal(value.ToGo(e.Serialize()))
		if err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
		parts = append(parts, strings.TrimRight(string(b), "\n"))
	}
	return []byte(strings.Join(parts, "\n---\n")), nil
}
