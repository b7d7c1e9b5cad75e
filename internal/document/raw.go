package document

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Raw passes the resource body through as a single opaque string record,
// for binary formats the pipeline doesn't parse (images, archives, ...).
// Go strings hold arbitrary bytes, so no separate byte-string Kind is
// needed on the value tree.
type Raw struct {
	meta  Metadata
	sniff bool // no explicit mime_type given: detect from content on first read
}

func NewRaw(meta Metadata) *Raw {
	return &Raw{meta: defaultRawMetadata().Merge(meta), sniff: meta.MIMEType == nil}
}

func defaultRawMetadata() Metadata {
	return Metadata{MIMEType: strp("application"), MIMESubtype: strp("octet-stream")}
}

func (d *Raw) Metadata() Metadata                { return d.meta }
func (d *Raw) SetEntryPath(string) error         { return nil }
func (d *Raw) Header(_ []record.Envelope) []byte { return nil }
func (d *Raw) Footer(_ []record.Envelope) []byte { return nil }
func (d *Raw) Terminator() []byte                { return nil }
func (d *Raw) HasData(data []byte) bool          { return len(data) > 0 }

// Read decodes data, sniffing its MIME type on the first call when the
// connector didn't pin one explicitly, so downstream metadata (e.g. for a
// writer choosing a file extension) reflects the actual content rather
// than the generic application/octet-stream default.
func (d *Raw) Read(data []byte) ([]record.Envelope, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if d.sniff {
		mt := mimetype.Detect(data)
		full := mt.String()
		typ, sub := full, ""
		if idx := strings.IndexByte(full, '/'); idx >= 0 {
			typ, sub = full[:idx], full[idx+1:]
		}
		d.meta.MIMEType = strp(typ)
		d.meta.MIMESubtype = strp(sub)
		d.sniff = false
	}
	return []record.Envelope{record.Ok(value.String(string(data)))}, nil
}

func (d *Raw) Write(envs []record.Envelope) ([]byte, error) {
	var out []byte
	for _, e := range envs {
		out = append(out, []byte(e.Serialize().Str())...)
	}
	return out, nil
}
