package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// XML is the tree-structured markup codec. No third-party XML tree
// library appears anywhere in the retrieved example pack (see
// DESIGN.md), so decode/encode are built directly on encoding/xml,
// mapping elements to objects the way clbanning/mxj-style libraries do:
// attributes become "@name" keys, text content becomes "#text", and a
// repeated child tag becomes an array.
type XML struct {
	meta       Metadata
	path       []string // entry path segments, last one is the record element name
	pretty     bool
	indentChar string
	indentSize int
}

func NewXML(meta Metadata, pretty bool, indentChar string, indentSize int) *XML {
	d := &XML{
		meta:       defaultXMLMetadata().Merge(meta),
		pretty:     pretty,
		indentChar: indentChar,
		indentSize: indentSize,
	}
	if d.indentChar == "" {
		d.indentChar = " "
	}
	return d
}

func defaultXMLMetadata() Metadata {
	return Metadata{MIMEType: strp("application"), MIMESubtype: strp("xml")}
}

func (d *XML) Metadata() Metadata { return d.meta }

// SetEntryPath requires a pattern "/root/.../item" per spec.md §6.
func (d *XML) SetEntryPath(path string) error {
	segs := pointer.Tokens(path)
	if len(segs) == 0 {
		return fmt.Errorf("xml: entry_path must look like /root/.../item")
	}
	d.path = segs
	return nil
}

func (d *XML) itemName() string {
	if len(d.path) == 0 {
		return "item"
	}
	return d.path[len(d.path)-1]
}

// Header opens every wrapper element above the item element, rendering
// the entry path "with an empty element at its leaf" (spec.md §6).
func (d *XML) Header(_ []record.Envelope) []byte {
	var b strings.Builder
	for _, seg := range d.wrapperSegments() {
		b.WriteString("<" + seg + ">")
	}
	return []byte(b.String())
}

func (d *XML) Footer(_ []record.Envelope) []byte {
	segs := d.wrapperSegments()
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteString("</" + segs[i] + ">")
	}
	return []byte(b.String())
}

func (d *XML) wrapperSegments() []string {
	if len(d.path) <= 1 {
		return nil
	}
	return d.path[:len(d.path)-1]
}

func (d *XML) Terminator() []byte { return nil }

func (d *XML) HasData(data []byte) bool {
	return len(bytes.TrimSpace(data)) > 0
}

// Read decodes every element matching the configured item name anywhere
// in the document into one record each.
func (d *XML) Read(data []byte) ([]record.Envelope, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	itemName := d.itemName()
	var out []record.Envelope

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			out = append(out, record.Err(value.Null(), record.ErrorKindMalformed, fmt.Sprintf("xml: %v", err)))
			break
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == itemName {
			v, err := decodeElement(dec, start)
			if err != nil {
				out = append(out, record.Err(value.Null(), record.ErrorKindMalformed, fmt.Sprintf("xml: %v", err)))
				continue
			}
			out = append(out, record.Ok(v))
		}
	}
	return out, nil
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (*value.Value, error) {
	obj := value.NewObject()
	for _, attr := range start.Attr {
		obj.Object().Set("@"+attr.Name.Local, value.String(attr.Value))
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			appendChild(obj, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if strings.TrimSpace(text.String()) != "" && obj.Object().Len() == 0 {
				return value.String(strings.TrimSpace(text.String())), nil
			}
			if strings.TrimSpace(text.String()) != "" {
				obj.Object().Set("#text", value.String(strings.TrimSpace(text.String())))
			}
			return obj, nil
		}
	}
}

func appendChild(obj *value.Value, name string, child *value.Value) {
	existing, ok := obj.Object().Get(name)
	if !ok {
		obj.Object().Set(name, child)
		return
	}
	if existing.Kind() == value.KindArray {
		obj.Object().Set(name, value.Array(append(existing.Array(), child)...))
		return
	}
	obj.Object().Set(name, value.Array(existing, child))
}

func (d *XML) Write(envs []record.Envelope) ([]byte, error) {
	name := d.itemName()
	var buf bytes.Buffer
	for i, e := range envs {
		if d.pretty && i > 0 {
			buf.WriteString("\n")
		}
		writeElement(&buf, name, e.Serialize())
	}
	return buf.Bytes(), nil
}

func writeElement(buf *bytes.Buffer, name string, v *value.Value) {
	if v.Kind() != value.KindObject {
		buf.WriteString("<" + name + ">" + xmlEscape(scalarText(v)) + "</" + name + ">")
		return
	}
	buf.WriteString("<" + name)
	var children []string
	var text string
	for _, k := range v.Object().Keys() {
		cv, _ := v.Object().Get(k)
		switch {
		case strings.HasPrefix(k, "@"):
			buf.WriteString(fmt.Sprintf(" %s=%q", k[1:], cv.Str()))
		case k == "#text":
			text = cv.Str()
		default:
			children = append(children, k)
		}
	}
	if len(children) == 0 && text == "" {
		buf.WriteString("/>")
		return
	}
	buf.WriteString(">")
	buf.WriteString(xmlEscape(text))
	for _, k := range children {
		cv, _ := v.Object().Get(k)
		if cv.Kind() == value.KindArray {
			for _, item := range cv.Array() {
				writeElement(buf, k, item)
			}
		} else {
			writeElement(buf, k, cv)
		}
	}
	buf.WriteString("</" + name + ">")
}

func scalarText(v *value.Value) string {
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

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
