package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Args is the argument bag handed to a handler. The getters are lenient: an
// absent or mistyped argument yields the zero value, never an error.
type Args map[string]any

// Has reports whether name is present with a non-nil value.
func (a Args) Has(name string) bool {
	v, ok := a[name]
	return ok && v != nil
}

// String returns the argument as a string. Numbers and booleans are formatted.
func (a Args) String(name string) string {
	return a.StringOr(name, "")
}

// StringOr returns the argument as a string, or def when it is absent.
func (a Args) StringOr(name, def string) string {
	if !a.Has(name) {
		return def
	}
	switch v := a[name].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return def
	}
}

// Int returns the argument as an integer. JSON numbers and numeric strings are accepted.
func (a Args) Int(name string) int64 {
	if !a.Has(name) {
		return 0
	}
	switch v := a[name].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// Object returns the argument as a JSON object. A JSON-encoded string is decoded.
func (a Args) Object(name string) map[string]any {
	if !a.Has(name) {
		return nil
	}
	switch v := a[name].(type) {
	case map[string]any:
		return v
	case Args:
		return v
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
	}
	return nil
}

// List returns the argument as a list. A comma separated string is split.
func (a Args) List(name string) []any {
	if !a.Has(name) {
		return nil
	}
	switch v := a[name].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case string:
		var out []any
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
