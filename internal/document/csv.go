package document

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// QuoteStyle names when CSV writes quote a field. The codec accepts and
// stores it, but Write always quotes the way encoding/csv does by default
// (only when necessary); the other styles have no effect on output.
type QuoteStyle string

const (
	QuoteAlways     QuoteStyle = "always"
	QuoteNever      QuoteStyle = "never"
	QuoteNecessary  QuoteStyle = "necessary"
	QuoteNotNumeric QuoteStyle = "not_numeric"
)

// TrimMode controls whitespace trimming of parsed fields, per spec.md §6.
type TrimMode string

const (
	TrimAll     TrimMode = "all"
	TrimHeaders TrimMode = "headers"
	TrimFields  TrimMode = "fields"
	TrimNone    TrimMode = "none"
)

// CSV is the delimited (CSV-family) codec. No third-party CSV library
// appears anywhere in the retrieved example pack, so this is built
// directly on encoding/csv (see DESIGN.md).
type CSV struct {
	meta       Metadata
	delimiter  rune
	quote      rune
	comment    rune
	isFlexible bool
	quoteStyle QuoteStyle
	trim       TrimMode
}

func NewCSV(meta Metadata, isFlexible bool, quoteStyle QuoteStyle, trim TrimMode) *CSV {
	m := defaultCSVMetadata().Merge(meta)
	d := &CSV{meta: m, isFlexible: isFlexible, quoteStyle: quoteStyle, trim: trim}
	d.delimiter = firstRune(m.Delimiter, ',')
	d.quote = firstRune(m.Quote, '"')
	d.comment = firstRuneOrZero(m.Comment)
	if d.quoteStyle == "" {
		d.quoteStyle = QuoteNecessary
	}
	if d.trim == "" {
		d.trim = TrimNone
	}
	return d
}

func defaultCSVMetadata() Metadata {
	return Metadata{
		HasHeaders:  boolp(true),
		Delimiter:   strp(","),
		Quote:       strp(`"`),
		Terminator:  strp("\n"),
		MIMEType:    strp("text"),
		MIMESubtype: strp("csv"),
	}
}

func firstRune(s *string, def rune) rune {
	if s == nil || *s == "" {
		return def
	}
	return []rune(*s)[0]
}

func firstRuneOrZero(s *string) rune {
	if s == nil || *s == "" {
		return 0
	}
	return []rune(*s)[0]
}

func (d *CSV) Metadata() Metadata { return d.meta }

func (d *CSV) SetEntryPath(path string) error {
	return fmt.Errorf("csv: entry path not supported")
}

func (d *CSV) hasHeaders() bool {
	return d.meta.HasHeaders == nil || *d.meta.HasHeaders
}

func (d *CSV) Terminator() []byte {
	if d.meta.Terminator != nil {
		return []byte(*d.meta.Terminator)
	}
	return []byte("\n")
}

// Header returns the first row's column names, derived from the first
// envelope's object keys, when has_headers is true. Callers must only
// invoke Header when the target resource is empty (spec.md §6: "otherwise
// empty").
func (d *CSV) Header(envs []record.Envelope) []byte {
	if !d.hasHeaders() || len(envs) == 0 {
		return nil
	}
	first := envs[0].Serialize()
	if first.Kind() != value.KindObject {
		return nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = d.delimiter
	_ = w.Write(first.Object().Keys())
	w.Flush()
	return bytes.TrimRight(buf.Bytes(), "\r\n")
}

func (d *CSV) Footer(_ []record.Envelope) []byte { return nil }

func (d *CSV) HasData(data []byte) bool {
	return len(strings.TrimSpace(string(data))) > 0
}

func (d *CSV) Read(data []byte) ([]record.Envelope, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = d.delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	if d.comment != 0 {
		r.Comment = d.comment
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var headers []string
	start := 0
	if d.hasHeaders() {
		headers = rows[0]
		if d.trim == TrimAll || d.trim == TrimHeaders {
			for i := range headers {
				headers[i] = strings.TrimSpace(headers[i])
			}
		}
		start = 1
	}

	out := make([]record.Envelope, 0, len(rows)-start)
	for _, row := range rows[start:] {
		if d.trim == TrimAll || d.trim == TrimFields {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		if !d.isFlexible && headers != nil && len(row) != len(headers) {
			out = append(out, record.Err(value.Null(), record.ErrorKindMalformed,
				fmt.Sprintf("csv: expected %d fields, got %d", len(headers), len(row))))
			continue
		}

		obj := value.NewObject()
		if headers != nil {
			for i, h := range headers {
				if i < len(row) {
					obj.Object().Set(h, value.String(row[i]))
				} else {
					obj.Object().Set(h, value.Null())
				}
			}
		} else {
			for i, cell := range row {
				obj.Object().Set(fmt.Sprintf("%d", i), value.String(cell))
			}
		}
		out = append(out, record.Ok(obj))
	}
	return out, nil
}

func (d *CSV) Write(envs []record.Envelope) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = d.delimiter

	for _, e := range envs {
		v := e.Serialize()
		if v.Kind() != value.KindObject {
			return nil, fmt.Errorf("csv: record is not an object")
		}
		row := make([]string, 0, v.Object().Len())
		for _, k := range v.Object().Keys() {
			fv, _ := v.Object().Get(k)
			row = append(row, d.fieldText(fv))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\r\n"), nil
}

func (d *CSV) fieldText(v *value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return ""
	case value.KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case value.KindNumber:
		return fmt.Sprintf("%g", v.Number())
	default:
		return v.Str()
	}
}
