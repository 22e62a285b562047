// Package fields resolves logical report fields against loosely shaped
// valuation records.
//
// A record is decoded JSON (map[string]any). A logical field is described by
// a Rule: an ordered list of candidate dotted paths, lowest priority first.
// Resolution walks the candidates and keeps the last one that holds a usable
// value; when none does, the field renders as NA.
package fields

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NA is rendered for every field that could not be resolved.
const NA = "NA"

// descriptiveKeys are sub-keys that stand in for a whole object when an
// object sits where a scalar is expected.
var descriptiveKeys = []string{"agreementForSaleExecutedName", "fullAddress"}

// Fields is a flat, render-ready view of a record.
type Fields map[string]string

// Get returns the value for name or NA when it is absent or empty.
func (f Fields) Get(name string) string {
	if v, ok := f[name]; ok && v != "" {
		return v
	}
	return NA
}

// Has reports whether name holds a non-empty value.
func (f Fields) Has(name string) bool {
	v, ok := f[name]
	return ok && v != ""
}

// Present reports whether name holds a value other than NA or "Nil".
func (f Fields) Present(name string) bool {
	v := f.Get(name)
	return v != NA && !strings.EqualFold(v, "nil")
}

func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Record converts f back into record form so it can be resolved again.
func (f Fields) Record() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Lookup walks a dotted path ("pdfDetails.plotNo") through nested maps.
func Lookup(rec map[string]any, path string) (any, bool) {
	var cur any = rec
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Value converts a raw JSON value into its display string. ok is false for
// values that must be treated as absent: nil, "", arrays and objects without
// a descriptive sub-key.
func Value(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bool:
		if t {
			return "Yes", true
		}
		return "No", true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	case map[string]any:
		for _, key := range descriptiveKeys {
			if s, ok := Value(t[key]); ok {
				return s, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

// Resolve returns the value of the highest-priority candidate path that
// holds a usable value, or NA. Candidates are ordered lowest priority first.
func Resolve(rec map[string]any, paths ...string) string {
	if v, ok := resolve(rec, paths); ok {
		return v
	}
	return NA
}

func resolve(rec map[string]any, paths []string) (string, bool) {
	for i := len(paths) - 1; i >= 0; i-- {
		raw, ok := Lookup(rec, paths[i])
		if !ok {
			continue
		}
		if s, ok := Value(raw); ok {
			return s, true
		}
	}
	return "", false
}
