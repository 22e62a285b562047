package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dmitrijs2005/valuationdesk/internal/netx"
	"github.com/dmitrijs2005/valuationdesk/internal/report/render"
)

// A4 at 96 dpi, the width a 210mm container has on screen.
const (
	PageWidth  = 793
	PageHeight = 1123

	DefaultScale = 2

	// Largest canvas side most raster backends accept.
	maxSurfaceSide = 32767

	margin      = 57
	lineHeight  = 16
	cellPadding = 4
	maxImageH   = 400
)

var (
	ErrNoPages = errors.New("document has no pages")
	ErrSurface = errors.New("cannot construct rasterization surface")
)

// Rasterizer renders each logical page to an image. Pages may be taller
// than PageHeight when their content overflows.
type Rasterizer interface {
	RenderPages(ctx context.Context, doc render.Document) ([]image.Image, error)
}

// BasicRasterizer draws pages with a fixed-width bitmap font. It expects
// image blocks to carry data URIs.
type BasicRasterizer struct {
	Scale int
}

func NewBasicRasterizer(scale int) *BasicRasterizer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &BasicRasterizer{Scale: scale}
}

func (r *BasicRasterizer) RenderPages(ctx context.Context, doc render.Document) ([]image.Image, error) {
	if len(doc.Pages) == 0 {
		return nil, ErrNoPages
	}

	out := make([]image.Image, 0, len(doc.Pages))
	for i, p := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := r.renderPage(p)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", i+1, p.Title, err)
		}
		out = append(out, img)
	}
	return out, nil
}

func (r *BasicRasterizer) renderPage(p render.Page) (image.Image, error) {
	l := &layout{y: margin}
	for _, b := range p.Blocks {
		if err := l.add(b); err != nil {
			return nil, err
		}
	}

	h := max(l.y+margin, PageHeight)
	scale := r.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	if h*scale > maxSurfaceSide || PageWidth*scale > maxSurfaceSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurface, PageWidth*scale, h*scale)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, PageWidth, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	for _, op := range l.ops {
		op(canvas)
	}

	if scale == 1 {
		return canvas, nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, PageWidth*scale, h*scale))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)
	return scaled, nil
}

type drawOp func(dst draw.Image)

// layout measures blocks top to bottom and records the drawing operations.
type layout struct {
	y   int
	ops []drawOp
}

var (
	face    = basicfont.Face7x13
	charW   = face.Advance
	ascent  = face.Ascent
	ink     = image.NewUniform(color.Black)
	rule    = color.Gray{Y: 0x40}
	shading = color.Gray{Y: 0xe8}
)

const contentWidth = PageWidth - 2*margin

func (l *layout) add(b render.Block) error {
	switch b.Kind {
	case render.KindHeading:
		l.fill(margin, l.y, contentWidth, lineHeight+cellPadding, shading)
		l.text(margin+cellPadding, l.y+cellPadding/2, b.Text)
		l.y += lineHeight + cellPadding + 6
	case render.KindParagraph:
		for _, line := range wrapText(b.Text, contentWidth/charW) {
			l.text(margin, l.y, line)
			l.y += lineHeight
		}
		l.y += 4
	case render.KindTable:
		l.table(b.Table)
	case render.KindSignature:
		l.y += 2 * lineHeight
		for _, line := range b.Lines {
			l.text(PageWidth-margin-len(line)*charW, l.y, line)
			l.y += lineHeight
		}
	case render.KindImage:
		return l.image(b)
	}
	return nil
}

func (l *layout) table(t *render.Table) {
	if t == nil {
		return
	}
	cols := len(t.Header)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}
	widths := columnWidths(cols)

	drawRow := func(cells []string, header bool) {
		wrapped := make([][]string, cols)
		lines := 1
		for i := 0; i < cols; i++ {
			var s string
			if i < len(cells) {
				s = cells[i]
			}
			wrapped[i] = wrapText(s, max((widths[i]-2*cellPadding)/charW, 1))
			lines = max(lines, len(wrapped[i]))
		}
		rowH := lines*lineHeight + 2*cellPadding

		if header {
			l.fill(margin, l.y, contentWidth, rowH, shading)
		}
		x := margin
		for i := 0; i < cols; i++ {
			for j, line := range wrapped[i] {
				l.text(x+cellPadding, l.y+cellPadding+j*lineHeight, line)
			}
			l.vline(x, l.y, rowH)
			x += widths[i]
		}
		l.vline(margin+contentWidth, l.y, rowH)
		l.hline(margin, l.y, contentWidth)
		l.y += rowH
		l.hline(margin, l.y, contentWidth)
	}

	if len(t.Header) > 0 {
		drawRow(t.Header, true)
	}
	for _, row := range t.Rows {
		drawRow(row, false)
	}
	l.y += 8
}

func (l *layout) image(b render.Block) error {
	data, _, err := netx.ParseDataURI(b.Src)
	if err != nil {
		return fmt.Errorf("image %q: %w", b.Caption, err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("image %q: %w", b.Caption, err)
	}

	if b.Caption != "" {
		l.text(margin, l.y, b.Caption)
		l.y += lineHeight + 4
	}

	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return fmt.Errorf("image %q: empty bounds", b.Caption)
	}
	maxW := contentWidth * 9 / 10
	w, h := maxW, sb.Dy()*maxW/sb.Dx()
	if h > maxImageH {
		w, h = sb.Dx()*maxImageH/sb.Dy(), maxImageH
	}
	x := (PageWidth - w) / 2
	rect := image.Rect(x, l.y, x+w, l.y+h)
	l.ops = append(l.ops, func(dst draw.Image) {
		xdraw.CatmullRom.Scale(dst, rect, src, sb, xdraw.Over, nil)
	})
	l.y += h + 30
	return nil
}

func (l *layout) text(x, y int, s string) {
	s = printable(s)
	l.ops = append(l.ops, func(dst draw.Image) {
		d := font.Drawer{
			Dst:  dst,
			Src:  ink,
			Face: face,
			Dot:  fixed.P(x, y+ascent),
		}
		d.DrawString(s)
	})
}

func (l *layout) fill(x, y, w, h int, c color.Color) {
	l.ops = append(l.ops, func(dst draw.Image) {
		draw.Draw(dst, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Src)
	})
}

func (l *layout) hline(x, y, w int) { l.fill(x, y, w, 1, rule) }
func (l *layout) vline(x, y, h int) { l.fill(x, y, 1, h, rule) }

func columnWidths(n int) []int {
	var pct []int
	switch n {
	case 1:
		pct = []int{100}
	case 2:
		pct = []int{45, 55}
	case 3:
		pct = []int{8, 50, 42}
	case 5:
		pct = []int{8, 36, 16, 18, 22}
	default:
		pct = make([]int, n)
		for i := range pct {
			pct[i] = 100 / n
		}
	}
	out := make([]int, n)
	for i, p := range pct {
		out[i] = contentWidth * p / 100
	}
	return out
}

// printable maps text onto the glyphs the bitmap face has.
func printable(s string) string {
	s = strings.ReplaceAll(s, "₹", "Rs.")
	return strings.Map(func(r rune) rune {
		if r >= 0x20 && r < 0x7f {
			return r
		}
		return '?'
	}, s)
}

// wrapText splits input into lines of at most width characters. Words longer
// than a line are broken.
func wrapText(input string, width int) []string {
	width = max(width, 1)
	words := strings.Fields(input)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, w := range words {
		for len(w) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, w[:width])
			w = w[width:]
		}
		switch {
		case current == "":
			current = w
		case len(current)+1+len(w) <= width:
			current += " " + w
		default:
			lines = append(lines, current)
			current = w
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
