package dashboard

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
)

const DefaultPageSize = 10

// Counts are the per-status totals shown above the table.
type Counts struct {
	Pending        int
	OnProgress     int
	Approved       int
	Rejected       int
	Rework         int
	Total          int
	CompletionRate int
}

// Count tallies statuses. Records with an unknown status only count
// towards Total.
func Count(recs []models.Record) Counts {
	var c Counts
	for _, r := range recs {
		switch r.Status() {
		case models.StatusPending:
			c.Pending++
		case models.StatusOnProgress:
			c.OnProgress++
		case models.StatusApproved:
			c.Approved++
		case models.StatusRejected:
			c.Rejected++
		case models.StatusRework:
			c.Rework++
		}
	}
	c.Total = len(recs)
	if c.Total > 0 {
		c.CompletionRate = int(math.Floor(float64(c.Approved+c.Rejected)/float64(c.Total)*100 + 0.5))
	}
	return c
}

// Filter restricts the list; empty fields match everything.
type Filter struct {
	Status   models.Status
	City     string
	Bank     string
	Engineer string
}

func (f Filter) Empty() bool { return f == Filter{} }

func (f Filter) Match(r models.Record) bool {
	if f.Status != "" && r.Status() != f.Status {
		return false
	}
	if f.City != "" && r.Str("city") != f.City {
		return false
	}
	if f.Bank != "" && r.Str("bankName") != f.Bank {
		return false
	}
	if f.Engineer != "" && r.Str("engineerName") != f.Engineer {
		return false
	}
	return true
}

func (f Filter) Apply(recs []models.Record) []models.Record {
	out := make([]models.Record, 0, len(recs))
	for _, r := range recs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

const (
	SortDuration = "duration"
	SortCreated  = "createdAt"
	SortDateTime = "dateTime"
)

// Sort orders records by one field.
type Sort struct {
	Field string
	Desc  bool
}

// Toggle returns the order after the user picks field: the same field flips
// direction, a new field starts ascending.
func (s Sort) Toggle(field string) Sort {
	if s.Field == field {
		return Sort{Field: field, Desc: !s.Desc}
	}
	return Sort{Field: field}
}

// Apply returns a sorted copy. Duration sorts by elapsed seconds at now,
// date fields by instant, numbers numerically and everything else as
// case-insensitive text.
func (s Sort) Apply(recs []models.Record, now time.Time) []models.Record {
	out := append([]models.Record(nil), recs...)
	if s.Field == "" {
		return out
	}
	less := s.less(now)
	sort.SliceStable(out, func(i, j int) bool {
		if s.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func (s Sort) less(now time.Time) func(a, b models.Record) bool {
	switch s.Field {
	case SortDuration:
		secs := func(r models.Record) int64 {
			if d, ok := ElapsedFor(r, now); ok {
				return d.Total()
			}
			return 0
		}
		return func(a, b models.Record) bool { return secs(a) < secs(b) }
	case SortCreated, SortDateTime:
		unix := func(r models.Record) int64 {
			t, _ := r.Time(s.Field)
			return t.UnixMilli()
		}
		return func(a, b models.Record) bool { return unix(a) < unix(b) }
	}
	return func(a, b models.Record) bool {
		x, xNum := a[s.Field].(float64)
		y, yNum := b[s.Field].(float64)
		if xNum && yNum {
			return x < y
		}
		return strings.ToLower(a.Str(s.Field)) < strings.ToLower(b.Str(s.Field))
	}
}

// Page is one page of the table.
type Page struct {
	Items      []models.Record
	Page       int
	TotalPages int
	Total      int
}

// Paginate cuts recs into pages of size and returns the requested page,
// clamped to [1, TotalPages].
func Paginate(recs []models.Record, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(recs)
	pages := (total + size - 1) / size
	page = max(1, min(page, max(pages, 1)))

	start := min((page-1)*size, total)
	end := min(start+size, total)
	return Page{Items: recs[start:end], Page: page, TotalPages: pages, Total: total}
}

// View is the full dashboard state a user controls.
type View struct {
	Filter   Filter
	Sort     Sort
	Page     int
	PageSize int
}

// Apply filters, sorts and paginates recs.
func (v View) Apply(recs []models.Record, now time.Time) Page {
	return Paginate(v.Sort.Apply(v.Filter.Apply(recs), now), v.Page, v.PageSize)
}
