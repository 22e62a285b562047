package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/valuationdesk/internal/logging"
	"github.com/dmitrijs2005/valuationdesk/internal/netx"
	"github.com/dmitrijs2005/valuationdesk/internal/report/render"
)

const (
	DefaultImageTimeout = 5 * time.Second
	DefaultMaxImageSize = 10 << 20

	imageWorkers = 4
	fetchTimeout = 30 * time.Second
)

var ErrUnsupportedSource = errors.New("unsupported image source")

// Loader resolves an image reference to its bytes and media type.
type Loader interface {
	Load(ctx context.Context, src string) ([]byte, string, error)
}

// NewHTTPLoader returns an HTTPLoader whose client gives up on stalled
// servers.
func NewHTTPLoader() HTTPLoader {
	return HTTPLoader{Client: &http.Client{Timeout: fetchTimeout}}
}

// HTTPLoader decodes data URIs in place and fetches http(s) references.
// Blob references only exist inside a browser and always fail.
type HTTPLoader struct {
	Client   *http.Client
	MaxBytes int64
}

func (l HTTPLoader) Load(ctx context.Context, src string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return netx.ParseDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		limit := l.MaxBytes
		if limit <= 0 {
			limit = DefaultMaxImageSize
		}
		return netx.Fetch(ctx, l.Client, src, limit)
	}
	return nil, "", ErrUnsupportedSource
}

// Gate loads every image of a document in parallel, each within a bounded
// time, and embeds the ones that decode as data URIs. Blocks whose image
// fails are removed, and so are image pages left without an image. A
// heading on a removed page moves to the next image page that survives.
type Gate struct {
	loader  Loader
	timeout time.Duration
	log     logging.Logger
}

func NewGate(loader Loader, timeout time.Duration, log logging.Logger) *Gate {
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}
	return &Gate{loader: loader, timeout: timeout, log: log}
}

type imageRef struct {
	page, block int
}

// Apply returns the gated document and the number of dropped images.
// Surviving image blocks carry a data URI.
func (g *Gate) Apply(ctx context.Context, doc render.Document) (render.Document, int) {
	out := cloneDocument(doc)

	var refs []imageRef
	for pi, p := range out.Pages {
		for bi, b := range p.Blocks {
			if b.Kind == render.KindImage {
				refs = append(refs, imageRef{pi, bi})
			}
		}
	}

	ok := make([]bool, len(refs))
	srcs := make([]string, len(refs))

	var eg errgroup.Group
	eg.SetLimit(imageWorkers)
	for i, ref := range refs {
		src := out.Pages[ref.page].Blocks[ref.block].Src
		eg.Go(func() error {
			uri, err := g.check(ctx, src)
			if err != nil {
				g.log.Warn(ctx, "image dropped", "src", shorten(src), "error", err)
				return nil
			}
			ok[i], srcs[i] = true, uri
			return nil
		})
	}
	_ = eg.Wait()

	failed := make(map[imageRef]bool)
	for i, ref := range refs {
		if ok[i] {
			out.Pages[ref.page].Blocks[ref.block].Src = srcs[i]
		} else {
			failed[ref] = true
		}
	}

	var carried []render.Block
	pages := out.Pages[:0]
	for pi, p := range out.Pages {
		before := p.Images()
		blocks := p.Blocks[:0]
		for bi, b := range p.Blocks {
			if !failed[imageRef{pi, bi}] {
				blocks = append(blocks, b)
			}
		}
		p.Blocks = blocks
		if before > 0 && p.Images() == 0 {
			for _, b := range p.Blocks {
				if b.Kind == render.KindHeading {
					carried = append(carried, b)
				}
			}
			continue
		}
		if before > 0 && len(carried) > 0 {
			p.Blocks = append(carried, p.Blocks...)
			carried = nil
		}
		pages = append(pages, p)
	}
	out.Pages = pages

	return out, len(failed)
}

func (g *Gate) check(ctx context.Context, src string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		uri string
		err error
	}
	done := make(chan result, 1)
	go func() {
		data, mt, err := g.loader.Load(ctx, src)
		if err != nil {
			done <- result{err: err}
			return
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			done <- result{err: err}
			return
		}
		done <- result{uri: netx.DataURI(mt, data)}
	}()

	select {
	case r := <-done:
		return r.uri, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func cloneDocument(doc render.Document) render.Document {
	out := doc
	out.Pages = make([]render.Page, len(doc.Pages))
	for i, p := range doc.Pages {
		p.Blocks = append([]render.Block(nil), p.Blocks...)
		out.Pages[i] = p
	}
	return out
}

func shorten(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
