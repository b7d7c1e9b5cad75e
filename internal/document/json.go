package document

import (
	"fmt"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
	orderedjson "github.com/virtuald/go-ordered-json"
)

// JSON is the nested-array-of-records codec. header()="[", footer()="]",
// terminator()="," per spec.md §6.
type JSON struct {
	meta      Metadata
	entryPath string
	pretty    bool
}

func NewJSON(meta Metadata, pretty bool) *JSON {
	return &JSON{meta: defaultJSONMetadata().Merge(meta), pretty: pretty}
}

func defaultJSONMetadata() Metadata {
	return Metadata{
		MIMEType:    strp("application"),
		MIMESubtype: strp("json"),
	}
}

func (d *JSON) Metadata() Metadata { return d.meta }

func (d *JSON) SetEntryPath(path string) error {
	d.entryPath = path
	return nil
}

func (d *JSON) Header(_ []record.Envelope) []byte { return []byte("[") }
func (d *JSON) Footer(_ []record.Envelope) []byte { return []byte("]") }
func (d *JSON) Terminator() []byte                { return []byte(",") }

func (d *JSON) HasData(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return trimmed != "" && trimmed != "[]"
}

func (d *JSON) Read(data []byte) ([]record.Envelope, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	var parsed any
	if err := orderedjson.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return []record.Envelope{record.Err(value.Null(), record.ErrorKindMalformed, fmt.Sprintf("json: %v", err))}, nil
	}

	v := value.FromGo(parsed)
	if v.Kind() != value.KindArray {
		return []record.Envelope{record.Ok(v)}, nil
	}
	out := make([]record.Envelope, 0, len(v.Array()))
	for _, item := range v.Array() {
		out = append(out, record.Ok(item))
	}
	return out, nil
}

func (d *JSON) Write(envs []record.Envelope) ([]byte, error) {
	items := make([]string, 0, len(envs))
	for _, e := range envs {
		var b []byte
		var err error
		if d.pretty {
			b, err = orderedjson.MarshalIndent(value.ToOrderedGo(e.Serialize()), "", "  ")
		} else {
			b, err = orderedjson.Marshal(value.ToOrderedGo(e.Serialize()))
		}
		if err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
		items = append(items, string(b))
	}
	return []byte(strings.Join(items, ",")), nil
}
