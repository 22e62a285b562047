package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"
)

// A4 in PDF points.
const (
	pdfPageW = 595
	pdfPageH = 842

	DefaultJPEGQuality = 85
)

// WritePDF writes one PDF page per raster page. Each page image is stored as
// a JPEG XObject stretched over the full page.
func WritePDF(w io.Writer, pages []image.Image, quality int) error {
	if len(pages) == 0 {
		return ErrNoPages
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	// 1: catalog, 2: page tree, then page/content/image per page.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i*3)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
	}

	for i, p := range pages {
		var jpg bytes.Buffer
		if err := jpeg.Encode(&jpg, p, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("encode page %d: %w", i+1, err)
		}
		b := p.Bounds()
		contentObj, imageObj := 4+i*3, 5+i*3

		content := fmt.Sprintf("q %d 0 0 %d 0 0 cm /Im%d Do Q\n", pdfPageW, pdfPageH, i)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents %d 0 R /Resources << /XObject << /Im%d %d 0 R >> >> >>",
				pdfPageW, pdfPageH, contentObj, i, imageObj),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
			fmt.Sprintf("<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode /Length %d >>\nstream\n%s\nendstream",
				b.Dx(), b.Dy(), jpg.Len(), jpg.String()),
		)
	}

	var body bytes.Buffer
	offsets := make([]int, len(objects)+1)
	body.WriteString("%PDF-1.4\n")
	for i, obj := range objects {
		offsets[i+1] = body.Len()
		body.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", i+1, obj))
	}

	xrefStart := body.Len()
	body.WriteString(fmt.Sprintf("xref\n0 %d\n", len(objects)+1))
	body.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		body.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	body.WriteString("trailer\n")
	body.WriteString(fmt.Sprintf("<< /Size %d /Root 1 0 R >>\n", len(objects)+1))
	body.WriteString("startxref\n")
	body.WriteString(fmt.Sprintf("%d\n", xrefStart))
	body.WriteString("%%EOF")

	_, err := w.Write(body.Bytes())
	return err
}
