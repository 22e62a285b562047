package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/dmitrijs2005/valuationdesk/internal/netx"
	"github.com/dmitrijs2005/valuationdesk/internal/report/render"
)

const (
	emuPerPixel = 9525
	docxMaxW    = 6 * 914400 // 6in
	docxMaxH    = 4 * 914400
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Default Extension="jpeg" ContentType="image/jpeg"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><w:body>`

const documentTail = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
	`<w:pgMar w:top="850" w:right="850" w:bottom="850" w:left="850" w:header="0" w:footer="0" w:gutter="0"/>` +
	`</w:sectPr></w:body></w:document>`

type docxMedia struct {
	name string
	data []byte
}

// docxWriter accumulates document.xml and the media it references.
type docxWriter struct {
	body  strings.Builder
	media []docxMedia
}

// WriteDOCX writes doc as an editable WordprocessingML package. Image blocks
// must carry data URIs; other references are skipped.
func WriteDOCX(w io.Writer, doc render.Document) error {
	if len(doc.Pages) == 0 {
		return ErrNoPages
	}

	dw := &docxWriter{}
	dw.body.WriteString(documentHead)
	for i, p := range doc.Pages {
		if i > 0 {
			dw.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
		for _, b := range p.Blocks {
			if err := dw.block(b); err != nil {
				return fmt.Errorf("page %d (%s): %w", i+1, p.Title, err)
			}
		}
	}
	dw.body.WriteString(documentTail)

	zw := zip.NewWriter(w)
	files := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/document.xml", []byte(dw.body.String())},
		{"word/_rels/document.xml.rels", []byte(dw.rels())},
	}
	for _, m := range dw.media {
		files = append(files, struct {
			name string
			data []byte
		}{"word/media/" + m.name, m.data})
	}

	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("zip %s: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return fmt.Errorf("zip %s: %w", f.name, err)
		}
	}
	return zw.Close()
}

func (dw *docxWriter) rels() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i, m := range dw.media {
		fmt.Fprintf(&sb, `<Relationship Id="rIdImg%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`,
			i+1, m.name)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func (dw *docxWriter) block(b render.Block) error {
	switch b.Kind {
	case render.KindHeading:
		dw.paragraph(b.Text, true, "center")
	case render.KindParagraph:
		dw.paragraph(b.Text, false, "both")
	case render.KindSignature:
		for i, line := range b.Lines {
			dw.paragraph(line, i == 0, "right")
		}
	case render.KindTable:
		dw.table(b.Table)
	case render.KindImage:
		return dw.image(b)
	}
	return nil
}

func (dw *docxWriter) paragraph(text string, bold bool, align string) {
	dw.body.WriteString(`<w:p><w:pPr><w:jc w:val="` + align + `"/></w:pPr>`)
	dw.run(text, bold)
	dw.body.WriteString(`</w:p>`)
}

func (dw *docxWriter) run(text string, bold bool) {
	dw.body.WriteString(`<w:r>`)
	if bold {
		dw.body.WriteString(`<w:rPr><w:b/></w:rPr>`)
	}
	dw.body.WriteString(`<w:t xml:space="preserve">` + esc(text) + `</w:t></w:r>`)
}

func (dw *docxWriter) table(t *render.Table) {
	if t == nil {
		return
	}
	dw.body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		dw.body.WriteString(`<w:` + side + ` w:val="single" w:sz="4" w:space="0" w:color="000000"/>`)
	}
	dw.body.WriteString(`</w:tblBorders></w:tblPr>`)

	row := func(cells []string, bold bool) {
		dw.body.WriteString(`<w:tr>`)
		for _, c := range cells {
			dw.body.WriteString(`<w:tc><w:p>`)
			dw.run(c, bold)
			dw.body.WriteString(`</w:p></w:tc>`)
		}
		dw.body.WriteString(`</w:tr>`)
	}
	if len(t.Header) > 0 {
		row(t.Header, true)
	}
	for _, r := range t.Rows {
		row(r, false)
	}
	dw.body.WriteString(`</w:tbl>`)
}

func (dw *docxWriter) image(b render.Block) error {
	data, mt, err := netx.ParseDataURI(b.Src)
	if err != nil {
		return nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("image %q: %w", b.Caption, err)
	}

	ext := "png"
	switch {
	case format == "jpeg" || mt == "image/jpeg":
		ext = "jpeg"
	case format != "png":
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("image %q: %w", b.Caption, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("image %q: %w", b.Caption, err)
		}
		data = buf.Bytes()
	}

	n := len(dw.media) + 1
	dw.media = append(dw.media, docxMedia{name: fmt.Sprintf("image%d.%s", n, ext), data: data})

	cx, cy := fitEMU(cfg.Width, cfg.Height)
	if b.Caption != "" {
		dw.paragraph(b.Caption, true, "center")
	}
	fmt.Fprintf(&dw.body, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="%s"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:pic>`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="rIdImg%d"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, n, esc(b.Caption), n, esc(b.Caption), n, cx, cy)
	return nil
}

// fitEMU scales pixel dimensions into the printable box, keeping the aspect
// ratio.
func fitEMU(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return docxMaxW, docxMaxH
	}
	cx, cy := w*emuPerPixel, h*emuPerPixel
	if cx > docxMaxW {
		cy = cy * docxMaxW / cx
		cx = docxMaxW
	}
	if cy > docxMaxH {
		cx = cx * docxMaxH / cy
		cy = docxMaxH
	}
	return cx, cy
}

func esc(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
