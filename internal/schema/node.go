// Package schema turns the untyped JSON values returned by the generation
// service into the canonical report records. Readers never fail: missing or
// wrongly typed input degrades to the field's default.
package schema

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Node is a read-only view over one value of a decoded JSON tree
type Node struct {
	value any
}

func Wrap(value any) Node {
	return Node{value: value}
}

func (n Node) Raw() any {
	return n.value
}

func (n Node) IsMap() bool {
	_, ok := n.value.(map[string]any)
	return ok
}

// Field returns the member called name. Keys match exactly first, then
// ignoring case and punctuation, so "Follow-Up", "follow_up" and "FollowUp"
// all resolve. A non-mapping node yields an empty Node.
func (n Node) Field(name string) Node {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{}
	}
	if v, ok := obj[name]; ok {
		return Node{value: v}
	}

	// Sorted so that colliding spellings resolve the same way every time
	want := normalizeKey(name)
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if normalizeKey(k) == want {
			return Node{value: obj[k]}
		}
	}
	return Node{}
}

// Text returns the trimmed scalar value, or def when it is absent or blank.
// A list of scalars is joined with "; ".
func (n Node) Text(def string) string {
	if s, ok := scalarText(n.value); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return def
	}
	if _, ok := n.value.([]any); ok {
		if items := n.List(); len(items) > 0 {
			return strings.Join(items, "; ")
		}
	}
	return def
}

// OptionalText is Text with no default: absent or blank yields nil
func (n Node) OptionalText() *string {
	s := n.Text("")
	if s == "" {
		return nil
	}
	return &s
}

// List normalizes the node into a list of non-blank strings. A list keeps its
// scalar elements after trimming, a single non-blank string becomes a
// one-element list, anything else is empty. The result is never nil.
func (n Node) List() []string {
	out := []string{}
	switch v := n.value.(type) {
	case []any:
		for _, item := range v {
			s, ok := scalarText(item)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
