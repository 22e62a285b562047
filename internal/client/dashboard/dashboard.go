// Package dashboard aggregates the record collections into one list and
// derives the dashboard view from it: status counts, filtering, sorting,
// pagination and elapsed-time tracking.
package dashboard

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
	"github.com/dmitrijs2005/valuationdesk/internal/logging"
)

// Source lists the records of one collection.
type Source interface {
	InvalidateCache(ctx context.Context, substr string)
	List(ctx context.Context, c models.Collection) ([]models.Record, error)
}

type Dashboard struct {
	src         Source
	log         logging.Logger
	collections []models.Collection
}

func New(src Source, log logging.Logger) *Dashboard {
	return &Dashboard{src: src, log: log, collections: models.Collections}
}

// Load fetches all collections in parallel, bypassing the cache. A failing
// collection contributes nothing. Each record is tagged with the form type
// of its collection and duplicates are merged.
func (d *Dashboard) Load(ctx context.Context) []models.Record {
	for _, c := range d.collections {
		d.src.InvalidateCache(ctx, c.Path)
	}

	results := make([][]models.Record, len(d.collections))
	var eg errgroup.Group
	for i, c := range d.collections {
		eg.Go(func() error {
			recs, err := d.src.List(ctx, c)
			if err != nil {
				d.log.Warn(ctx, "collection fetch failed", "collection", c.Path, "error", err)
				return nil
			}
			tagged := make([]models.Record, len(recs))
			for j, r := range recs {
				r = r.Clone()
				r["formType"] = string(c.Form)
				tagged[j] = r
			}
			results[i] = tagged
			return nil
		})
	}
	_ = eg.Wait()

	var all []models.Record
	for _, r := range results {
		all = append(all, r...)
	}
	out := Dedup(all)
	if dropped := len(all) - len(out); dropped > 0 {
		d.log.Info(ctx, "duplicate records merged", "count", dropped)
	}
	return out
}

// Dedup keeps one record per uniqueId: the one with the latest revision.
// On equal or unparsable revisions the first seen wins. Records without a
// uniqueId are all kept. Output order is first-seen order.
func Dedup(recs []models.Record) []models.Record {
	out := make([]models.Record, 0, len(recs))
	index := make(map[string]int)
	for _, r := range recs {
		id := r.UniqueID()
		if id == "" {
			out = append(out, r)
			continue
		}
		i, dup := index[id]
		if !dup {
			index[id] = len(out)
			out = append(out, r)
			continue
		}
		cur, curOK := r.Revision()
		prev, prevOK := out[i].Revision()
		if curOK && prevOK && cur.After(prev) {
			out[i] = r
		}
	}
	return out
}

// UniqueValues returns the sorted distinct values of key, skipping blanks.
func UniqueValues(recs []models.Record, key string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range recs {
		v := r.Str(key)
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ContactSheet formats records as copyable contact blocks.
func ContactSheet(recs []models.Record) string {
	blocks := make([]string, len(recs))
	for i, r := range recs {
		blocks[i] = "Client Name: " + orNA(r.Str("clientName")) +
			"\nPhone Number: " + orNA(r.Str("mobileNumber")) +
			"\nBank Name: " + orNA(r.Str("bankName")) +
			"\nClient Address: " + orNA(r.Str("address"))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func orNA(s string) string {
	if s == "" {
		return "NA"
	}
	return s
}
