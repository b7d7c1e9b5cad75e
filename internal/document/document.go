// Package document implements the codec contract of spec.md §4.4: a pair
// of pure functions (read/write) plus framing (header/footer/terminator)
// and metadata, one implementation per concrete wire format.
package document

import (
	"github.com/jmfiaschi/chewgo/internal/record"
)

// Metadata is the resource metadata record of spec.md §3. Pointer fields
// distinguish "unset" from a real zero value so Merge can apply the
// documented override rule.
type Metadata struct {
	HasHeaders  *bool   `yaml:"has_headers,omitempty" json:"has_headers,omitempty"`
	Delimiter   *string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Quote       *string `yaml:"quote,omitempty" json:"quote,omitempty"`
	Escape      *string `yaml:"escape,omitempty" json:"escape,omitempty"`
	Comment     *string `yaml:"comment,omitempty" json:"comment,omitempty"`
	Terminator  *string `yaml:"terminator,omitempty" json:"terminator,omitempty"`
	MIMEType    *string `yaml:"mime_type,omitempty" json:"mime_type,omitempty"`
	MIMESubtype *string `yaml:"mime_subtype,omitempty" json:"mime_subtype,omitempty"`
	Charset     *string `yaml:"charset,omitempty" json:"charset,omitempty"`
	Compression *string `yaml:"compression,omitempty" json:"compression,omitempty"`
	Language    *string `yaml:"language,omitempty" json:"language,omitempty"`
}

// Merge returns the receiver (codec defaults) overridden field-by-field by
// override (explicit connector metadata), per spec.md §3: "explicit
// connector metadata overrides codec defaults."
func (m Metadata) Merge(override Metadata) Metadata {
	out := m
	if override.HasHeaders != nil {
		out.HasHeaders = override.HasHeaders
	}
	if override.Delimiter != nil {
		out.Delimiter = override.Delimiter
	}
	if override.Quote != nil {
		out.Quote = override.Quote
	}
	if override.Escape != nil {
		out.Escape = override.Escape
	}
	if override.Comment != nil {
		out.Comment = override.Comment
	}
	if override.Terminator != nil {
		out.Terminator = override.Terminator
	}
	if override.MIMEType != nil {
		out.MIMEType = override.MIMEType
	}
	if override.MIMESubtype != nil {
		out.MIMESubtype = override.MIMESubtype
	}
	if override.Charset != nil {
		out.Charset = override.Charset
	}
	if override.Compression != nil {
		out.Compression = override.Compression
	}
	if override.Language != nil {
		out.Language = override.Language
	}
	return out
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

// Document is the codec contract of spec.md §4.4.
type Document interface {
	// Read decodes data into a finite, ordered sequence of envelopes.
	// Malformed rows yield Err(null, message); valid rows yield Ok(value).
	Read(data []byte) ([]record.Envelope, error)
	// Write serialises envs using the codec's metadata.
	Write(envs []record.Envelope) ([]byte, error)
	// Header returns the frame bytes that precede a batch.
	Header(envs []record.Envelope) []byte
	// Footer returns the frame bytes that follow a batch.
	Footer(envs []record.Envelope) []byte
	// Terminator returns the bytes inserted between records when
	// appending into a non-empty existing document.
	Terminator() []byte
	// HasData reports whether data contains more than a trivial empty
	// frame (spec.md §4.4).
	HasData(data []byte) bool
	// SetEntryPath restricts reads/writes to a subtree, for path-scoped
	// codecs. Codecs that don't support it return an error.
	SetEntryPath(path string) error
	// Metadata returns the merge of built-in defaults with user
	// overrides.
	Metadata() Metadata
}
