// Package normalize flattens a nested valuation record into the flat field
// set consumed by the report renderer.
//
// The record is read through an ordered list of sources, each producing a
// partial flat map. Sources are merged lowest priority first and a later
// source only overrides a name when it actually supplies a value:
//
//	root fields < form sections (in table order) < facilities < pdfDetails
//
// The merged map is then passed through the alias schema, which reconciles
// names that changed between form versions.
package normalize

import (
	"strings"

	"github.com/dmitrijs2005/valuationdesk/internal/report/fields"
)

const (
	SnapshotKey   = "pdfDetails"
	FacilitiesKey = "facilities"

	maxAliasPasses = 4
)

// Source extracts a partial flat map from a record. Extract must not modify
// the record and must leave out names it has no value for.
type Source struct {
	Name    string
	Extract func(rec map[string]any) fields.Fields
}

// Result is the normalized view of one record.
type Result struct {
	Fields         fields.Fields
	PropertyImages []string
	LocationImages []string
}

// Sources returns the merge pipeline in priority order, lowest first.
func Sources() []Source {
	out := make([]Source, 0, len(sections)+3)
	out = append(out, Source{Name: "root", Extract: scalars})
	for _, s := range sections {
		out = append(out, sectionSource(s))
	}
	out = append(out,
		Source{Name: FacilitiesKey, Extract: nested(FacilitiesKey)},
		Source{Name: SnapshotKey, Extract: nested(SnapshotKey)},
	)
	return out
}

var pipeline = Sources()

// Merge applies sources in order. A source never clears a value set by an
// earlier one.
func Merge(rec map[string]any, sources []Source) fields.Fields {
	out := fields.Fields{}
	for _, src := range sources {
		for k, v := range src.Extract(rec) {
			if v == "" {
				continue
			}
			out[k] = v
		}
	}
	return out
}

// Normalize flattens rec. It is pure: rec is not modified and the same input
// always yields the same output.
func Normalize(rec map[string]any) Result {
	if rec == nil {
		return Result{Fields: fields.Fields{}}
	}

	out := Merge(rec, pipeline)

	// Aliases may point at other aliased names; repeat until nothing moves.
	for range maxAliasPasses {
		changed := false
		for k, v := range aliases.ResolveAll(out.Record()) {
			if out[k] != v {
				out[k] = v
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return Result{
		Fields:         out,
		PropertyImages: Images(rec, "propertyImages"),
		LocationImages: Images(rec, "locationImages"),
	}
}

// AliasSchema exposes the alias table for auditing.
func AliasSchema() *fields.Schema { return aliases }

func sectionSource(s section) Source {
	rules := make([]fields.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		paths := make([]string, len(r.Paths))
		for i, p := range r.Paths {
			paths[i] = s.key + "." + p
		}
		rules = append(rules, fields.Rule{Field: r.Field, Paths: paths})
	}
	schema := fields.MustCompile(s.key, rules)

	return Source{
		Name: s.key,
		Extract: func(rec map[string]any) fields.Fields {
			if _, ok := rec[s.key].(map[string]any); !ok {
				return nil
			}
			return schema.ResolveAll(rec)
		},
	}
}

func scalars(rec map[string]any) fields.Fields {
	out := fields.Fields{}
	for k, raw := range rec {
		if v, ok := fields.Value(raw); ok {
			out[k] = v
		}
	}
	return out
}

func nested(key string) func(map[string]any) fields.Fields {
	return func(rec map[string]any) fields.Fields {
		sub, ok := rec[key].(map[string]any)
		if !ok {
			return nil
		}
		return scalars(sub)
	}
}

var imageURLKeys = []string{"url", "preview", "data", "src", "secure_url"}

// Images returns the usable image references stored under key, taken from
// the record root or, when the root has none, from the snapshot.
func Images(rec map[string]any, key string) []string {
	list, _ := rec[key].([]any)
	if len(list) == 0 {
		if snap, ok := rec[SnapshotKey].(map[string]any); ok {
			list, _ = snap[key].([]any)
		}
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		if u := ImageURL(item); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// ImageURL extracts a reference from a bare string or an object carrying it
// under one of the known keys. It returns "" for anything that is not a
// data URI, a blob reference or an http(s) URL.
func ImageURL(item any) string {
	var u string
	switch t := item.(type) {
	case string:
		u = t
	case map[string]any:
		for _, k := range imageURLKeys {
			if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
				u = s
				break
			}
		}
	}

	u = strings.TrimSpace(u)
	for _, prefix := range []string{"data:", "blob:", "http://", "https://"} {
		if strings.HasPrefix(u, prefix) {
			return u
		}
	}
	return ""
}
