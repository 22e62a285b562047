// Package models defines the client-side data shapes: sessions and the
// loosely typed valuation records returned by the API.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
)

type Status string

const (
	StatusPending    Status = common.StatusPending
	StatusOnProgress Status = common.StatusOnProgress
	StatusApproved   Status = common.StatusApproved
	StatusRejected   Status = common.StatusRejected
	StatusRework     Status = common.StatusRework
)

// ParseStatus trims and lower-cases s. Unknown values yield "".
func ParseStatus(s string) Status {
	st := strings.ToLower(strings.TrimSpace(s))
	if !common.IsValidStatus(st) {
		return ""
	}
	return Status(st)
}

// Open reports whether the record is still being worked on, i.e. its age is
// tracked on the dashboard.
func (s Status) Open() bool {
	switch s {
	case StatusPending, StatusOnProgress, StatusRejected, StatusRework:
		return true
	}
	return false
}

type FormType string

const (
	FormUBIShop FormType = "ubiShop"
	FormBOMFlat FormType = "bomFlat"
	FormUBIAPF  FormType = "ubiApf"
)

// Collection is one record endpoint of the API and the form type its
// records belong to.
type Collection struct {
	Path string
	Form FormType
}

// Collections are fetched in this order; the order breaks dedup ties.
var Collections = []Collection{
	{Path: "/valuations", Form: FormUBIShop},
	{Path: "/bof-maharashtra", Form: FormBOMFlat},
	{Path: "/ubi-apf", Form: FormUBIAPF},
}

// CollectionFor returns the collection serving form. Unknown forms map to
// the first collection.
func CollectionFor(form FormType) Collection {
	for _, c := range Collections {
		if c.Form == form {
			return c
		}
	}
	return Collections[0]
}

// Record is a valuation record as delivered by the API.
type Record map[string]any

// Str returns the value at key as a string. Missing and null values yield "".
func (r Record) Str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) UniqueID() string   { return r.Str("uniqueId") }
func (r Record) Status() Status     { return ParseStatus(r.Str("status")) }
func (r Record) FormType() FormType { return FormType(r.Str("formType")) }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp formats the API emits.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Time parses the timestamp at key.
func (r Record) Time(key string) (time.Time, bool) {
	return ParseTime(r.Str(key))
}

// Revision is the instant the record was last changed: the first non-empty
// of lastUpdatedAt, updatedAt and createdAt. ok is false when that value
// does not parse.
func (r Record) Revision() (t time.Time, ok bool) {
	for _, key := range []string{"lastUpdatedAt", "updatedAt", "createdAt"} {
		if s := r.Str(key); s != "" {
			return ParseTime(s)
		}
	}
	return time.Time{}, false
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
