package document

import (
	"fmt"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
	orderedjson "github.com/virtuald/go-ordered-json"
)

// JSONL is the line-delimited record codec: no header/footer,
// terminator = "\n" (spec.md §6 "Bit-exact framing rules").
type JSONL struct {
	meta Metadata
}

func NewJSONL(meta Metadata) *JSONL {
	return &JSONL{meta: defaultJSONLMetadata().Merge(meta)}
}

func defaultJSONLMetadata() Metadata {
	return Metadata{
		MIMEType:    strp("application"),
		MIMESubtype: strp("jsonlines"),
		Terminator:  strp("\n"),
	}
}

func (d *JSONL) Metadata() Metadata { return d.meta }

func (d *JSONL) SetEntryPath(path string) error {
	return fmt.Errorf("jsonl: entry path not supported")
}

func (d *JSONL) Terminator() []byte { return []byte("\n") }
func (d *JSONL) Header(_ []record.Envelope) []byte { return nil }
func (d *JSONL) Footer(_ []record.Envelope) []byte { return nil }

func (d *JSONL) HasData(data []byte) bool {
	return len(strings.TrimSpace(string(data))) > 0
}

// Read returns an empty dataset for an empty buffer, per spec.md §9's
// resolution of the "empty buffer" open question.
func (d *JSONL) Read(data []byte) ([]record.Envelope, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	lines := strings.Split(string(data), "\n")
	out := make([]record.Envelope, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var parsed any
		if err := orderedjson.Unmarshal([]byte(line), &parsed); err != nil {
			out = append(out, record.Err(value.Null(), record.ErrorKindMalformed, fmt.Sprintf("jsonl: %v", err)))
			continue
		}
		out = append(out, record.Ok(value.FromGo(parsed)))
	}
	return out, nil
}

func (d *JSONL) Write(envs []record.Envelope) ([]byte, error) {
	lines := make([]string, 0, len(envs))
	for _, e := range envs {
		b, err := orderedjson.Marshal(value.ToOrderedGo(e.Serialize()))
		if err != nil {
			return nil, fmt.Errorf("jsonl: %w", err)
		}
		lines = append(lines, string(b))
	}
	return []byte(strings.Join(lines, "\n")), nil
}
