// Package pointer canonicalises dotted/bracketed field paths into JSON
// Pointer-shaped strings and navigates a value.Value tree with them.
//
// Grounded on the teacher's template-context plumbing in crawler.go
// (contextMapToTemplate, childMapWith), generalised into a standalone
// path grammar per spec.md §4.1.
package pointer

import (
	"strconv"
	"strings"

	"github.com/jmfiaschi/chewgo/internal/value"
)

// Canonical rewrites a dotted/bracketed path string into a canonical
// pointer: leading '/', '/'-separated tokens, integer tokens unquoted,
// empty tokens collapsed. canonical(canonical(p)) == canonical(p): a path
// that already starts with '/' is read as a pointer, so its unescaped dots
// stay literal instead of becoming separators.
func Canonical(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	pointerForm := strings.HasPrefix(path, "/")

	s := path
	s = strings.ReplaceAll(s, "][", "/")
	s = strings.ReplaceAll(s, "]", "")
	s = strings.ReplaceAll(s, "[", "/")

	// convert unescaped '.' to '/', keep escaped '\.' as a literal dot.
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '.' {
			b.WriteByte('.')
			i++
			continue
		}
		if s[i] == '.' && !pointerForm {
			b.WriteByte('/')
			continue
		}
		b.WriteByte(s[i])
	}
	s = b.String()

	parts := strings.Split(s, "/")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	if len(tokens) == 0 {
		return "/"
	}
	return "/" + strings.Join(tokens, "/")
}

// Tokens splits a canonical pointer into its segments. Tokens("/") is empty.
func Tokens(pointer string) []string {
	p := Canonical(pointer)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// Lookup resolves pointer against root, returning (value, true) or
// (nil, false) if any segment is missing. '*' segments are not expanded by
// Lookup; use LookupAll for that.
func Lookup(root *value.Value, ptr string) (*value.Value, bool) {
	tokens := Tokens(ptr)
	cur := root
	for _, tok := range tokens {
		if cur.IsNull() {
			return nil, false
		}
		switch cur.Kind() {
		case value.KindObject:
			next, ok := cur.Object().Get(tok)
			if !ok {
				return nil, false
			}
			cur = next
		case value.KindArray:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(cur.Array()) {
				return nil, false
			}
			cur = cur.Array()[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// LookupAll resolves pointer against root, expanding '*' segments to every
// child at that level. Returns the set of matched (concretePointer, value)
// pairs in traversal order.
type Match struct {
	Pointer string
	Value   *value.Value
}

func LookupAll(root *value.Value, ptr string) []Match {
	tokens := Tokens(ptr)
	return lookupAll(root, "", tokens)
}

func lookupAll(cur *value.Value, prefix string, tokens []string) []Match {
	if len(tokens) == 0 {
		if prefix == "" {
			prefix = "/"
		}
		return []Match{{Pointer: prefix, Value: cur}}
	}
	tok, rest := tokens[0], tokens[1:]
	var out []Match
	switch {
	case tok == "*" && cur.Kind() == value.KindObject:
		for _, k := range cur.Object().Keys() {
			v, _ := cur.Object().Get(k)
			out = append(out, lookupAll(v, prefix+"/"+k, rest)...)
		}
	case tok == "*" && cur.Kind() == value.KindArray:
		for i, v := range cur.Array() {
			out = append(out, lookupAll(v, prefix+"/"+strconv.Itoa(i), rest)...)
		}
	case cur.Kind() == value.KindObject:
		if v, ok := cur.Object().Get(tok); ok {
			out = append(out, lookupAll(v, prefix+"/"+tok, rest)...)
		}
	case cur.Kind() == value.KindArray:
		if idx, err := strconv.Atoi(tok); err == nil && idx >= 0 && idx < len(cur.Array()) {
			out = append(out, lookupAll(cur.Array()[idx], prefix+"/"+tok, rest)...)
		}
	}
	return out
}

// Set writes v at ptr within root, creating intermediate objects as
// needed, and returns the (possibly new) root. An integer token always
// addresses an array: a null or non-array parent is replaced by an array,
// and an array shorter than the index is padded with nulls up to it. Any
// other token addresses an object, replacing a non-object parent, which
// fits the "output starts from null" updater semantics in spec.md §4.3.
func Set(root *value.Value, ptr string, v *value.Value) *value.Value {
	tokens := Tokens(ptr)
	if len(tokens) == 0 {
		return v
	}
	return setTokens(root, tokens, v)
}

func setTokens(cur *value.Value, tokens []string, v *value.Value) *value.Value {
	tok := tokens[0]
	rest := tokens[1:]

	if idx, err := strconv.Atoi(tok); err == nil && idx >= 0 {
		arr := cur.Array()
		if cur.IsNull() {
			arr = nil
		}
		for len(arr) <= idx {
			arr = append(arr, value.Null())
		}
		if len(rest) == 0 {
			arr[idx] = v
		} else {
			arr[idx] = setTokens(arr[idx], rest, v)
		}
		return value.Array(arr...)
	}

	obj := cur.Object()
	var next *value.Value
	if obj == nil {
		next = value.NewObject()
		obj = next.Object()
	} else {
		next = cur
	}
	child, _ := obj.Get(tok)
	if len(rest) == 0 {
		obj.Set(tok, v)
	} else {
		obj.Set(tok, setTokens(child, rest, v))
	}
	return next
}

// Delete removes the subtree at ptr within root and returns the resulting
// root. Deleting an absent path is a no-op.
func Delete(root *value.Value, ptr string) *value.Value {
	tokens := Tokens(ptr)
	if len(tokens) == 0 {
		return value.Null()
	}
	deleteTokens(root, tokens)
	return root
}

func deleteTokens(cur *value.Value, tokens []string) {
	if cur.IsNull() {
		return
	}
	tok := tokens[0]
	rest := tokens[1:]
	if len(rest) == 0 {
		switch cur.Kind() {
		case value.KindObject:
			cur.Object().Delete(tok)
		case value.KindArray:
			if idx, err := strconv.Atoi(tok); err == nil && idx >= 0 && idx < len(cur.Array()) {
				arr := cur.Array()
				arr = append(arr[:idx], arr[idx+1:]...)
				*cur = *value.Array(arr...)
			}
		}
		return
	}
	switch cur.Kind() {
	case value.KindObject:
		if child, ok := cur.Object().Get(tok); ok {
			deleteTokens(child, rest)
		}
	case value.KindArray:
		if idx, err := strconv.Atoi(tok); err == nil && idx >= 0 && idx < len(cur.Array()) {
			deleteTokens(cur.Array()[idx], rest)
		}
	}
}
