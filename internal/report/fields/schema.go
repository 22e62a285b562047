package fields

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyField    = errors.New("rule has no field name")
	ErrNoCandidates  = errors.New("rule has no candidate paths")
	ErrDuplicateRule = errors.New("duplicate rule")
)

// Rule maps one logical field to its candidate paths, lowest priority first.
type Rule struct {
	Field string
	Paths []string
}

// Alias builds a Rule in which field itself is the highest-priority path and
// the listed candidates are fallbacks, ordered lowest priority first.
func Alias(field string, fallbacks ...string) Rule {
	paths := make([]string, 0, len(fallbacks)+1)
	paths = append(paths, fallbacks...)
	paths = append(paths, field)
	return Rule{Field: field, Paths: paths}
}

// Schema is a compiled, versioned set of rules. It is immutable and safe for
// concurrent use.
type Schema struct {
	version string
	rules   []Rule
	index   map[string]int
}

// Compile validates rules and freezes them into a Schema.
func Compile(version string, rules []Rule) (*Schema, error) {
	s := &Schema{version: version, index: make(map[string]int, len(rules))}
	for _, r := range rules {
		if r.Field == "" {
			return nil, ErrEmptyField
		}
		if len(r.Paths) == 0 {
			return nil, fmt.Errorf("%s: %w", r.Field, ErrNoCandidates)
		}
		if _, dup := s.index[r.Field]; dup {
			return nil, fmt.Errorf("%s: %w", r.Field, ErrDuplicateRule)
		}
		paths := make([]string, len(r.Paths))
		copy(paths, r.Paths)
		s.index[r.Field] = len(s.rules)
		s.rules = append(s.rules, Rule{Field: r.Field, Paths: paths})
	}
	return s, nil
}

// MustCompile is Compile for package-level tables; it panics on error.
func MustCompile(version string, rules []Rule) *Schema {
	s, err := Compile(version, rules)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Version() string { return s.version }

// Fields returns the logical field names in sorted order.
func (s *Schema) Fields() []string {
	out := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.Field)
	}
	sort.Strings(out)
	return out
}

// Paths returns a copy of the candidate paths for field.
func (s *Schema) Paths(field string) ([]string, bool) {
	i, ok := s.index[field]
	if !ok {
		return nil, false
	}
	out := make([]string, len(s.rules[i].Paths))
	copy(out, s.rules[i].Paths)
	return out, true
}

// Resolve resolves one field. Unknown fields resolve to NA.
func (s *Schema) Resolve(rec map[string]any, field string) string {
	i, ok := s.index[field]
	if !ok {
		return NA
	}
	return Resolve(rec, s.rules[i].Paths...)
}

// ResolveAll resolves every field of the schema. Unresolved fields are left
// out; Fields.Get renders them as NA.
func (s *Schema) ResolveAll(rec map[string]any) Fields {
	out := make(Fields, len(s.rules))
	for _, r := range s.rules {
		if v, ok := resolve(rec, r.Paths); ok {
			out[r.Field] = v
		}
	}
	return out
}
