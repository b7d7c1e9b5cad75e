// Package tmpl implements the template renderer described in spec.md §4.2:
// variable interpolation, filters/functions, and the "resolve" step that
// turns rendered text back into a typed value.Value.
//
// Grounded on the other_examples Phoenix pipeline_template_renderer.go,
// which builds one *template.Template per use and executes it against a
// small data struct — generalised here into a reusable engine with a
// richer function set, per spec.md.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jmfiaschi/chewgo/internal/value"
	orderedjson "github.com/virtuald/go-ordered-json"
)

// RenderContext is the data a pattern is executed against. Fields line up
// with spec.md §4.2's reserved top-level names: Input ("input"), Context
// ("context": step_results), Output ("output": the record built so far),
// Refs (one entry per loaded reference dataset, keyed by alias).
//
// Templates address these as Go fields: {{ .Input.name }}, {{ .Output }},
// {{ .Refs.countries }}, {{ (index .Context "reader1").value }}.
type RenderContext struct {
	Input   any
	Context map[string]StepResultView
	Output  any
	Refs    map[string]any
}

// StepResultView is the plain-data projection of a record.Envelope exposed
// to templates under .Context.<stepName>.
type StepResultView struct {
	Ok    bool
	Value any
	Error string
}

// Renderer is a template engine instance. Each update.Updater builds its
// own, and the transformer and validator steps build one Updater per
// worker, so a step with N workers holds N renderers.
type Renderer struct {
	funcs template.FuncMap
}

// New builds a Renderer with sprig's general-purpose function library plus
// the chewgo-specific filters/functions from funcs.go.
func New() *Renderer {
	r := &Renderer{funcs: template.FuncMap{}}
	for k, v := range sprig.TxtFuncMap() {
		r.funcs[k] = v
	}
	for k, v := range builtins() {
		r.funcs[k] = v
	}
	return r
}

// RegisterFunction adds or overrides a named function, e.g. a
// user-supplied faker helper (spec.md §4.2: faker generators are an
// external boundary, not implemented by the core).
func (r *Renderer) RegisterFunction(name string, fn any) {
	r.funcs[name] = fn
}

// Render parses and executes pattern against ctx, returning the rendered
// text. The pattern is parsed again on every call; compiled templates are
// not cached.
func (r *Renderer) Render(pattern string, ctx RenderContext) (string, error) {
	tmpl, err := template.New("action").Funcs(r.funcs).Parse(pattern)
	if err != nil {
		return "", stripInternal(err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", stripInternal(err)
	}
	return buf.String(), nil
}

// stripInternal removes the text/template package's internal location
// noise ("template: action:1:2: executing \"action\" at <...>: ") from
// error messages, per spec.md §4.2: "Source-engine internal identifiers
// must be stripped from the message."
func stripInternal(err error) error {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx != -1 && strings.Contains(msg, "executing") {
		msg = msg[idx+2:]
	}
	return fmt.Errorf("%s", msg)
}

// Resolve converts rendered text into a typed value.Value: numeric
// literals to number, true/false to bool, null to null, JSON-shaped text
// to a parsed tree, otherwise a string. Order of JSON object keys is
// preserved via go-ordered-json.
func Resolve(text string) *value.Value {
	trimmed := strings.TrimSpace(text)
	switch trimmed {
	case "":
		return value.String(text)
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null":
		return value.Null()
	}
	if n, ok := value.ParseNumber(trimmed); ok {
		return value.Number(n)
	}
	if looksLikeJSON(trimmed) {
		var out any
		if err := orderedjson.Unmarshal([]byte(trimmed), &out); err == nil {
			return value.FromGo(out)
		}
	}
	return value.String(text)
}

func looksLikeJSON(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '{', '[', '"':
		return true
	default:
		return false
	}
}
