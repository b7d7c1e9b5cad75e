package tmpl

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/itchyny/gojq"
	"github.com/jmfiaschi/chewgo/internal/pointer"
	"github.com/jmfiaschi/chewgo/internal/value"
	orderedjson "github.com/virtuald/go-ordered-json"
)

// builtins returns the chewgo-specific filters and functions required by
// spec.md §4.2, on top of sprig's general-purpose function library. They
// are plain functions, called with explicit arguments
// (`{{ merge .Output .Patch }}`) rather than Tera/Jinja pipe style, since
// the renderer is built on Go's text/template.
func builtins() map[string]any {
	return map[string]any{
		"merge":         mergeValues,
		"replace_key":   replaceKey,
		"replace_value": replaceValue,
		"extract":       extractPaths,
		"keys":          objectKeys,
		"values":        objectValues,
		"search":        search,
		"base64_encode": base64Encode,
		"base64_decode": base64Decode,
		"uuid_v4":       uuidV4,
		"env":           envLookup,
		"set_env":       setEnv,
		"find":          find,
		"matching":      matching,
		"expr":          exprEval,
		"json_encode":   jsonEncode,
		"json_decode":   jsonDecode,
		"jq":            jqEval,
	}
}

// mergeValues merges from into target: arrays append, objects recurse key
// by key, anything else is replaced by from.
func mergeValues(target, from any) any {
	if from == nil {
		return target
	}
	ta, aok := asArray(target)
	fa, fok := asArray(from)
	if aok && fok {
		return append(append([]any{}, ta...), fa...)
	}

	tm, tmok := asMap(target)
	fm, fmok := asMap(from)
	if tmok && fmok {
		out := make(map[string]any, len(tm)+len(fm))
		for k, v := range tm {
			out[k] = v
		}
		for k, v := range fm {
			if existing, ok := out[k]; ok {
				out[k] = mergeValues(existing, v)
			} else {
				out[k] = v
			}
		}
		return out
	}
	return from
}

func asArray(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	default:
		return nil, false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case orderedjson.OrderedObject:
		out := make(map[string]any, len(t))
		for _, kv := range t {
			out[kv.Key] = kv.Value
		}
		return out, true
	default:
		return nil, false
	}
}

// replaceKey rewrites object keys matching the from regex to `to`, down
// to level nesting levels (0 = unlimited), per SPEC_FULL.md's reading of
// original_source: level counts path segments, not regex matches.
func replaceKey(target any, from, to string, level ...int) (any, error) {
	re, err := regexp.Compile(from)
	if err != nil {
		return nil, fmt.Errorf("replace_key: invalid pattern %q: %w", from, err)
	}
	max := 0
	if len(level) > 0 {
		max = level[0]
	}
	return rewriteKeys(target, re, to, 0, max), nil
}

func rewriteKeys(v any, re *regexp.Regexp, to string, depth, max int) any {
	if max > 0 && depth >= max {
		return v
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			nk := re.ReplaceAllString(k, to)
			out[nk] = rewriteKeys(val, re, to, depth+1, max)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = rewriteKeys(val, re, to, depth+1, max)
		}
		return out
	default:
		return v
	}
}

// replaceValue rewrites scalar string values matching the from regex, down
// to level nesting levels (0 = unlimited).
func replaceValue(target any, from, to string, level ...int) (any, error) {
	re, err := regexp.Compile(from)
	if err != nil {
		return nil, fmt.Errorf("replace_value: invalid pattern %q: %w", from, err)
	}
	max := 0
	if len(level) > 0 {
		max = level[0]
	}
	return rewriteValues(target, re, to, 0, max), nil
}

func rewriteValues(v any, re *regexp.Regexp, to string, depth, max int) any {
	if max > 0 && depth >= max {
		return v
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = rewriteValues(val, re, to, depth+1, max)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = rewriteValues(val, re, to, depth+1, max)
		}
		return out
	case string:
		return re.ReplaceAllString(t, to)
	default:
		return v
	}
}

// extractPaths projects from, keeping only the given dotted/bracketed
// attribute paths (globs tolerated via the '*' pointer wildcard),
// preserving path structure.
func extractPaths(from any, attributes ...string) any {
	root := value.FromGo(from)
	out := value.Null()
	for _, attr := range attributes {
		for _, m := range pointer.LookupAll(root, attr) {
			out = pointer.Set(out, m.Pointer, m.Value)
		}
	}
	return value.ToGo(out)
}

func objectKeys(v any) []any {
	switch t := v.(type) {
	case map[string]any:
		ks := make([]string, 0, len(t))
		for k := range t {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		out := make([]any, len(ks))
		for i, k := range ks {
			out[i] = k
		}
		return out
	case orderedjson.OrderedObject:
		out := make([]any, len(t))
		for i, kv := range t {
			out[i] = kv.Key
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = i
		}
		return out
	default:
		return nil
	}
}

func objectValues(v any) []any {
	switch t := v.(type) {
	case map[string]any:
		ks := make([]string, 0, len(t))
		for k := range t {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		out := make([]any, len(ks))
		for i, k := range ks {
			out[i] = t[k]
		}
		return out
	case orderedjson.OrderedObject:
		out := make([]any, len(t))
		for i, kv := range t {
			out[i] = kv.Value
		}
		return out
	case []any:
		return t
	default:
		return nil
	}
}

// search resolves a jsonpointer (with '*' wildcards) against value,
// returning a single match unwrapped, or an array when the pointer
// matched more than one location.
func search(v any, jsonPointer string) any {
	root := value.FromGo(v)
	matches := pointer.LookupAll(root, jsonPointer)
	if len(matches) == 1 {
		return value.ToGo(matches[0].Value)
	}
	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = value.ToGo(m.Value)
	}
	return out
}

// jqEval runs a jq query against v, for selections and reshaping that
// outgrow the pointer-based search/extract filters (e.g. array
// comprehensions, jq built-ins). Mirrors the teacher's gojq.Parse/Run
// pairing in crawler.go, generalised from a fixed step field to a
// template function any pattern can call. Returns a single unwrapped
// result, or an array when the query streams more than one.
func jqEval(query string, v any) (any, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("jq: parse %q: %w", query, err)
	}
	iter := q.Run(v)
	var results []any
	for {
		res, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := res.(error); ok {
			return nil, fmt.Errorf("jq: %w", err)
		}
		results = append(results, res)
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

func base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func base64Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("base64_decode: %w", err)
	}
	return string(b), nil
}

func uuidV4(format ...string) (string, error) {
	id := uuid.New()
	f := "simple"
	if len(format) > 0 {
		f = format[0]
	}
	switch f {
	case "simple":
		return strings.ReplaceAll(id.String(), "-", ""), nil
	case "hyphenated":
		return id.String(), nil
	case "urn":
		return id.URN(), nil
	default:
		return "", fmt.Errorf("uuid_v4: unknown format %q", f)
	}
}

func envLookup(name string, def ...string) string {
	if v, ok := sharedEnv.lookup(name); ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

func setEnv(name, val string) string {
	sharedEnv.set(name, val)
	return val
}

func find(v any, pattern string, group ...int) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("find: invalid pattern %q: %w", pattern, err)
	}
	s := fmt.Sprint(v)
	sub := re.FindStringSubmatch(s)
	if sub == nil {
		return "", nil
	}
	idx := 0
	if len(group) > 0 {
		idx = group[0]
	}
	if idx >= len(sub) {
		return "", fmt.Errorf("find: group %d out of range", idx)
	}
	return sub[idx], nil
}

func matching(v any, pattern string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("matching: invalid pattern %q: %w", pattern, err)
	}
	return re.MatchString(fmt.Sprint(v)), nil
}

// exprEval backs validator rules whose condition is more than a single
// regex test, e.g. `{{ expr "Input.n > 5 && Input.n < 10" . }}`.
func exprEval(expression string, env any) (any, error) {
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("expr: compile %q: %w", expression, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("expr: eval %q: %w", expression, err)
	}
	return out, nil
}

func jsonEncode(v any) (string, error) {
	b, err := orderedjson.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("json_encode: %w", err)
	}
	return string(b), nil
}

func jsonDecode(s string) (any, error) {
	var out any
	if err := orderedjson.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("json_decode: %w", err)
	}
	return out, nil
}
