// Package export turns a rendered valuation report into downloadable
// artifacts: a paginated, image-based PDF and an editable DOCX.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/filex"
	"github.com/dmitrijs2005/valuationdesk/internal/logging"
	"github.com/dmitrijs2005/valuationdesk/internal/report/render"
)

const (
	ExtPDF  = "pdf"
	ExtDOCX = "docx"
)

// Stats describes a finished export.
type Stats struct {
	LogicalPages int
	PDFPages     int
	Images       int
	Dropped      int
}

type Exporter struct {
	raster  Rasterizer
	gate    *Gate
	log     logging.Logger
	quality int
	scale   int
}

// Option customizes an Exporter.
type Option func(*Exporter)

func WithRasterizer(r Rasterizer, scale int) Option {
	return func(e *Exporter) {
		e.raster = r
		if scale > 0 {
			e.scale = scale
		}
	}
}

func WithQuality(q int) Option {
	return func(e *Exporter) { e.quality = q }
}

func WithImageTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		if d > 0 {
			e.gate.timeout = d
		}
	}
}

// New builds an Exporter that loads images through loader. A nil loader
// uses NewHTTPLoader.
func New(loader Loader, log logging.Logger, opts ...Option) *Exporter {
	if loader == nil {
		loader = NewHTTPLoader()
	}
	e := &Exporter{
		raster:  NewBasicRasterizer(DefaultScale),
		gate:    NewGate(loader, DefaultImageTimeout, log),
		log:     log,
		quality: DefaultJPEGQuality,
		scale:   DefaultScale,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// prepare embeds every loadable image and drops the rest.
func (e *Exporter) prepare(ctx context.Context, doc render.Document) (render.Document, int) {
	return e.gate.Apply(ctx, doc)
}

// PDF writes doc to w as a multi-page A4 PDF. Logical pages are rasterized,
// stacked, and re-sliced into A4-proportioned output pages.
func (e *Exporter) PDF(ctx context.Context, doc render.Document, w io.Writer) (Stats, error) {
	gated, dropped := e.prepare(ctx, doc)

	pages, err := e.raster.RenderPages(ctx, gated)
	if err != nil {
		return Stats{}, fmt.Errorf("rasterize: %w", err)
	}

	out := Compose(pages, PageHeight*e.scale)
	if err := WritePDF(w, out, e.quality); err != nil {
		return Stats{}, fmt.Errorf("write pdf: %w", err)
	}

	st := Stats{
		LogicalPages: len(gated.Pages),
		PDFPages:     len(out),
		Images:       gated.ImageCount(),
		Dropped:      dropped,
	}
	e.log.Info(ctx, "pdf exported",
		"uniqueId", doc.UniqueID, "pages", st.PDFPages, "images", st.Images, "dropped", st.Dropped)
	return st, nil
}

// DOCX writes doc to w as an editable Word document.
func (e *Exporter) DOCX(ctx context.Context, doc render.Document, w io.Writer) (Stats, error) {
	gated, dropped := e.prepare(ctx, doc)

	if err := WriteDOCX(w, gated); err != nil {
		return Stats{}, fmt.Errorf("write docx: %w", err)
	}

	st := Stats{
		LogicalPages: len(gated.Pages),
		Images:       gated.ImageCount(),
		Dropped:      dropped,
	}
	e.log.Info(ctx, "docx exported",
		"uniqueId", doc.UniqueID, "pages", st.LogicalPages, "images", st.Images, "dropped", st.Dropped)
	return st, nil
}

// WriteFile exports doc into dir under its download name. Nothing is left in
// dir when the export fails.
func (e *Exporter) WriteFile(ctx context.Context, doc render.Document, dir, ext string, now time.Time) (string, Stats, error) {
	var st Stats
	path, err := filex.WriteAtomic(dir, Filename(doc.ClientName, doc.UniqueID, ext, now), func(w io.Writer) error {
		var err error
		switch ext {
		case ExtPDF:
			st, err = e.PDF(ctx, doc, w)
		case ExtDOCX:
			st, err = e.DOCX(ctx, doc, w)
		default:
			err = fmt.Errorf("unknown export format %q", ext)
		}
		return err
	})
	if err != nil {
		return "", Stats{}, err
	}
	return path, st, nil
}

// Filename is the download name of an export: the client name, else the
// record id, else the current time in milliseconds.
func Filename(clientName, uniqueID, ext string, now time.Time) string {
	base := strings.TrimSpace(clientName)
	if base == "" || base == "NA" {
		base = strings.TrimSpace(uniqueID)
	}
	if base == "" || base == "NA" {
		base = fmt.Sprintf("%d", now.UnixMilli())
	}
	base = strings.NewReplacer("/", "_", "\\", "_").Replace(base)
	return fmt.Sprintf("valuation_%s.%s", base, ext)
}
