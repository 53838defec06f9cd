package dataaccess

import (
	"encoding/json"
	"maps"
)

// Bag is the plain data behind a record view.
type Bag map[string]any

// Clone returns a shallow copy, so views never alias caller-owned maps.
func (b Bag) Clone() Bag {
	if b == nil {
		return Bag{}
	}
	return maps.Clone(b)
}

// Value returns the raw value for key.
func (b Bag) Value(key string) (any, bool) {
	v, ok := b[key]
	return v, ok
}

// String returns key as a string, or "" when absent or not a string.
func (b Bag) String(key string) string {
	return b.StringOr(key, "")
}

// StringOr returns key as a non-empty string, or def.
func (b Bag) StringOr(key, def string) string {
	if s, ok := b[key].(string); ok && s != "" {
		return s
	}
	return def
}

// IntOr returns key as an int, or def. JSON numbers are accepted.
func (b Bag) IntOr(key string, def int) int {
	switch v := b[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

// Bool returns key as a bool, or false.
func (b Bag) Bool(key string) bool {
	v, _ := b[key].(bool)
	return v
}

// Map returns key as a Bag, or an empty Bag.
func (b Bag) Map(key string) Bag {
	switch v := b[key].(type) {
	case Bag:
		return v
	case map[string]any:
		return Bag(v)
	}
	return Bag{}
}

// Slice returns key as a slice, or an empty slice.
func (b Bag) Slice(key string) []any {
	if v, ok := b[key].([]any); ok {
		return v
	}
	return []any{}
}

// Strings returns key as a string slice, skipping non-string elements.
func (b Bag) Strings(key string) []string {
	switch v := b[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
