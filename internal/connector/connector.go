// Package connector implements the connector contract of spec.md §4.5: a
// named resource that can be interpolated, fetched, sent to, erased, and
// paginated. Grounded on the teacher's URL-templating and pagination
// plumbing in crawler.go, generalised from "HTTP only" to any transport.
package connector

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/jmfiaschi/chewgo/internal/document"
	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/record"
	"github.com/jmfiaschi/chewgo/internal/value"
)

// Connector is the contract of spec.md §4.5.
type Connector interface {
	// SetParameters binds values used for path interpolation.
	SetParameters(params *value.Value)
	// Path returns the effective resource path after interpolation.
	Path() (string, error)
	// IsVariable is true iff the path template contains substitutions.
	IsVariable() bool
	// IsResourceWillChange is true iff Path() differs once newParams is bound.
	IsResourceWillChange(newParams *value.Value) (bool, error)
	// Len returns the resource's byte length and whether the transport
	// supports reporting it.
	Len(ctx context.Context) (int, bool, error)
	// Fetch streams decoded records from the resource.
	Fetch(ctx context.Context) ([]record.Envelope, error)
	// Send writes dataset to the resource, honouring framing.
	Send(ctx context.Context, dataset []record.Envelope) error
	// Erase truncates the resource.
	Erase(ctx context.Context) error
	// Clone returns a cheap clone of the connector: configuration is
	// shared, the byte buffer is fresh. Pagination clones the parent.
	Clone() Connector
	// Codec returns the bound document codec.
	Codec() document.Document
}

var mustachePattern = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// Base holds the fields and interpolation logic every concrete connector
// embeds: the raw path template, bound parameters, and the codec.
type Base struct {
	PathTemplate string
	Params       *value.Value
	Doc          document.Document
}

func NewBase(pathTemplate string, doc document.Document) Base {
	return Base{PathTemplate: pathTemplate, Params: value.NewObject(), Doc: doc}
}

func (b *Base) SetParameters(params *value.Value) {
	if params == nil {
		params = value.NewObject()
	}
	b.Params = params
}

func (b *Base) Codec() document.Document { return b.Doc }

// IsVariable is true iff the path template contains a mustache substitution.
func (b *Base) IsVariable() bool {
	return mustachePattern.MatchString(b.PathTemplate)
}

// Path interpolates b.PathTemplate against b.Params. Missing variables are
// left as-is (spec.md §4.5); scalars stringify; objects/arrays don't
// substitute and the literal placeholder remains.
func (b *Base) Path() (string, error) {
	return interpolate(b.PathTemplate, b.Params), nil
}

func interpolate(tmpl string, params *value.Value) string {
	return mustachePattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := mustachePattern.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		path := sub[1]
		v, ok := pointer.Lookup(params, path)
		if !ok {
			return m
		}
		switch v.Kind() {
		case value.KindString:
			return v.Str()
		case value.KindNumber:
			return fmt.Sprintf("%g", v.Number())
		case value.KindBool:
			if v.Bool() {
				return "true"
			}
			return "false"
		default:
			return m
		}
	})
}

// IsResourceWillChange compares Path() before and after binding newParams.
func (b *Base) IsResourceWillChange(newParams *value.Value) (bool, error) {
	before, err := b.Path()
	if err != nil {
		return false, err
	}
	after := interpolate(b.PathTemplate, newParams)
	return before != after, nil
}

// Framing applies the codec's header/footer/terminator rules (spec.md §6)
// and returns the resource's complete new contents, not just the bytes to
// append: when the target already has data, its trailing footer is
// stripped and replaced by the terminator before the new batch and a
// fresh footer are written. This mirrors the original implementation's
// flush, which seeks back over the previous footer and rewrites it rather
// than appending a second one, so a writer's Send can be called against
// the same non-empty resource without stacking footers (spec.md §6
// "Framing elision"). Callers must write the result back in full, not
// append it.
func Framing(doc document.Document, existing []byte, dataset []record.Envelope) ([]byte, error) {
	body, err := doc.Write(dataset)
	if err != nil {
		return nil, err
	}
	footer := doc.Footer(dataset)
	var out bytes.Buffer
	if doc.HasData(existing) {
		out.Write(bytes.TrimSuffix(existing, footer))
		out.Write(doc.Terminator())
	} else {
		out.Write(doc.Header(dataset))
	}
	out.Write(body)
	out.Write(footer)
	return out.Bytes(), nil
}
