// Package render turns a normalized field set into a fixed sequence of
// printable pages. It performs no I/O; the result is handed to package
// export for rasterization.
package render

import (
	"net/url"
	"strings"
)

type Kind int

const (
	KindHeading Kind = iota
	KindParagraph
	KindTable
	KindImage
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	case KindSignature:
		return "signature"
	}
	return "unknown"
}

type Table struct {
	Header []string
	Rows   [][]string
}

// Block is one visual unit on a page. Only the fields relevant to Kind are
// set: Text for headings and paragraphs, Table for tables, Src and Caption
// for images, Lines for signature blocks.
type Block struct {
	Kind    Kind
	Text    string
	Table   *Table
	Src     string
	Caption string
	Lines   []string
}

// Page is one A4 page. Pages never share blocks.
type Page struct {
	Title  string
	Blocks []Block
}

// Images returns the number of image blocks on the page.
func (p Page) Images() int {
	n := 0
	for _, b := range p.Blocks {
		if b.Kind == KindImage {
			n++
		}
	}
	return n
}

type Document struct {
	Title      string
	UniqueID   string
	ClientName string
	Pages      []Page
}

// ImageCount returns the number of image blocks across all pages.
func (d Document) ImageCount() int {
	n := 0
	for _, p := range d.Pages {
		n += p.Images()
	}
	return n
}

// ValidImageSource accepts data URIs, blob references and absolute http(s)
// URLs with a host.
func ValidImageSource(src string) bool {
	src = strings.TrimSpace(src)
	if src == "" {
		return false
	}
	if strings.HasPrefix(src, "data:") || strings.HasPrefix(src, "blob:") {
		return true
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
