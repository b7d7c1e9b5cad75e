// Package record implements the envelope (spec.md §3 "Record envelope")
// and the context that carries it between steps.
package record

import (
	"github.com/jmfiaschi/chewgo/internal/value"
)

// ErrorKind names the broad taxonomy from spec.md §7, attached to Err
// envelopes so writers and logs can tell failures apart without parsing
// messages.
type ErrorKind string

const (
	ErrorKindMalformed ErrorKind = "malformed"
	ErrorKindRender    ErrorKind = "render"
	ErrorKindRule      ErrorKind = "rule"
	ErrorKindTransport ErrorKind = "transport"
)

// ErrorAttribute is the reserved field injected into a serialised Err
// record.
const ErrorAttribute = "_error"

// Envelope is Ok(value) or Err(value, kind, message).
type Envelope struct {
	Value   *value.Value
	IsErr   bool
	Kind    ErrorKind
	Message string
}

// Ok wraps a successful value.
func Ok(v *value.Value) Envelope {
	return Envelope{Value: v}
}

// Err wraps a failed value with its kind and message.
func Err(v *value.Value, kind ErrorKind, message string) Envelope {
	return Envelope{Value: v, IsErr: true, Kind: kind, Message: message}
}

// DataType matches the "ok"/"err" step filter of spec.md §4.7.
func (e Envelope) DataType() string {
	if e.IsErr {
		return "err"
	}
	return "ok"
}

// Serialize returns the tree that a codec should write: for Ok, the value
// unchanged; for Err, the value with the reserved _error attribute
// injected at the root (objects/scalars) or into every element (arrays),
// per spec.md §3.
func (e Envelope) Serialize() *value.Value {
	if !e.IsErr {
		return e.Value
	}
	return injectError(e.Value, e.Message)
}

func injectError(v *value.Value, msg string) *value.Value {
	switch v.Kind() {
	case value.KindArray:
		items := v.Array()
		out := make([]*value.Value, len(items))
		for i, it := range items {
			out[i] = injectError(it, msg)
		}
		return value.Array(out...)
	case value.KindObject:
		cp := v.Clone()
		cp.Object().Set(ErrorAttribute, value.String(msg))
		return cp
	default:
		obj := value.NewObject()
		if !v.IsNull() {
			obj.Object().Set("value", v)
		}
		obj.Object().Set(ErrorAttribute, value.String(msg))
		return obj
	}
}

// Context wraps an Envelope with its provenance: the originating step and
// the running map of prior steps' envelopes for this logical record, plus
// optional metadata used for path interpolation and template parameters.
//
// Context flows forward only: Advance returns a copy of the map with
// the current step appended, never mutates the map a sender still holds,
// so concurrent workers of the same step never race on it.
type Context struct {
	Step        string
	Envelope    Envelope
	StepsResult map[string]Envelope
	Metadata    *value.Value
}

// New creates a seed context with no prior steps.
func New(step string, env Envelope) Context {
	return Context{Step: step, Envelope: env, StepsResult: map[string]Envelope{}}
}

// Advance returns a new context for the next step: the new envelope, and
// a steps_result map that is the old map plus this context's own step
// appended under its name. The receiver's map is not mutated.
func (c Context) Advance(nextStep string, env Envelope) Context {
	merged := make(map[string]Envelope, len(c.StepsResult)+1)
	for k, v := range c.StepsResult {
		merged[k] = v
	}
	if c.Step != "" {
		merged[c.Step] = c.Envelope
	}
	return Context{
		Step:        nextStep,
		Envelope:    env,
		StepsResult: merged,
		Metadata:    c.Metadata,
	}
}

// WithMetadata returns a copy of c carrying the given metadata value.
func (c Context) WithMetadata(meta *value.Value) Context {
	c.Metadata = meta
	return c
}
