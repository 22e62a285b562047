package export

import (
	"image"
	"image/draw"
)

// Slice places the part of the stacked content starting at Offset on the
// output page with index Page.
type Slice struct {
	Page   int
	Offset int
}

// Paginate cuts content of the given height into fixed-height pages.
//
// The loop keeps drawing while the remaining height is not negative and
// opens a new page only while content is left over. Content that is an exact
// multiple of the page height therefore produces one extra, empty slice on
// the last page; the page count is ceil(height/pageHeight), at least 1.
func Paginate(contentHeight, pageHeight int) []Slice {
	if pageHeight <= 0 {
		return nil
	}
	contentHeight = max(contentHeight, 0)

	var out []Slice
	page, offset := 0, 0
	for left := contentHeight; left >= 0; {
		out = append(out, Slice{Page: page, Offset: offset})
		left -= pageHeight
		offset += pageHeight
		if left > 0 {
			page++
		}
	}
	return out
}

// PageCount returns the number of output pages slices span.
func PageCount(slices []Slice) int {
	if len(slices) == 0 {
		return 0
	}
	return slices[len(slices)-1].Page + 1
}

// Compose stacks pages vertically and cuts the result into output pages of
// width x pageHeight. The stacked canvas is never materialized; each output
// page copies only the rows it shows.
func Compose(pages []image.Image, pageHeight int) []image.Image {
	if len(pages) == 0 || pageHeight <= 0 {
		return nil
	}

	width, total := 0, 0
	tops := make([]int, len(pages))
	for i, p := range pages {
		tops[i] = total
		total += p.Bounds().Dy()
		width = max(width, p.Bounds().Dx())
	}

	slices := Paginate(total, pageHeight)
	out := make([]image.Image, PageCount(slices))
	for _, s := range slices {
		dst, _ := out[s.Page].(*image.RGBA)
		if dst == nil {
			dst = image.NewRGBA(image.Rect(0, 0, width, pageHeight))
			draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
			out[s.Page] = dst
		}
		for i, p := range pages {
			top, bottom := tops[i], tops[i]+p.Bounds().Dy()
			from, to := max(top, s.Offset), min(bottom, s.Offset+pageHeight)
			if from >= to {
				continue
			}
			b := p.Bounds()
			r := image.Rect(0, from-s.Offset, b.Dx(), to-s.Offset)
			draw.Draw(dst, r, p, image.Pt(b.Min.X, b.Min.Y+from-top), draw.Over)
		}
	}
	return out
}
