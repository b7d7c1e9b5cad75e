package document

import (
	"bytes"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Text is the plain-text codec: one record per line, the line itself
// as a bare string value, no header/footer.
type Text struct {
	meta Metadata
}

func NewText(meta Metadata) *Text {
	return &Text{meta: defaultTextMetadata().Merge(meta)}
}

func defaultTextMetadata() Metadata {
	return Metadata{MIMEType: strp("text"), MIMESubtype: strp("plain"), Terminator: strp("\n")}
}

func (d *Text) Metadata() Metadata             { return d.meta }
func (d *Text) SetEntryPath(string) error      { return nil }
func (d *Text) Header(_ []record.Envelope) []byte { return nil }
func (d *Text) Footer(_ []record.Envelope) []byte { return nil }

func (d *Text) Terminator() []byte {
	if d.meta.Terminator != nil {
		return []byte(*d.meta.Terminator)
	}
	return []byte("\n")
}

func (d *Text) HasData(data []byte) bool {
	return len(bytes.TrimSpace(data)) > 0
}

func (d *Text) Read(data []byte) ([]record.Envelope, error) {
	text := string(data)
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([]record.Envelope, 0, len(lines))
	for _, line := range lines {
		out = append(out, record.Ok(value.String(line)))
	}
	return out, nil
}

func (d *Text) Write(envs []record.Envelope) ([]byte, error) {
	lines := make([]string, 0, len(envs))
	for _, e := range envs {
		lines = append(lines, scalarText(e.Serialize()))
	}
	return []byte(strings.Join(lines, "\n")), nil
}
