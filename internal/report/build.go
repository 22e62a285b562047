// Package report assembles a printable valuation report from a raw record:
// normalization, derived values and page rendering, in that order.
package report

import (
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/report/calc"
	"github.com/dmitrijs2005/valuationdesk/internal/report/fields"
	"github.com/dmitrijs2005/valuationdesk/internal/report/normalize"
	"github.com/dmitrijs2005/valuationdesk/internal/report/render"
)

// Build runs the pure part of the pipeline. It never fails; a nil record
// yields a report made entirely of NA values.
func Build(rec map[string]any, opts render.Options, now time.Time) (render.Document, fields.Fields) {
	n := normalize.Normalize(rec)
	f := calc.Derive(n.Fields, now)
	doc := render.Render(f, render.Images{Property: n.PropertyImages, Location: n.LocationImages}, opts)
	return doc, f
}
