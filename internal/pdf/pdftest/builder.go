// Package pdftest assembles small form PDFs for tests, laid out the way a
// drawing library leaves them before consolidation.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Widget describes one form widget on the first page
type Widget struct {
	Name string
	// Radio widgets get an appearance with OnState and Off; others are text fields.
	Radio   bool
	OnState string
	Rect    [4]float64
	// Caption is drawn in the page content to the right of the widget.
	Caption string
}

// InjuryQuestion is three radio options drawn under one field name
var InjuryQuestion = []Widget{
	{Name: "injury_question1", Radio: true, OnState: "Yes", Rect: [4]float64{100, 700, 112, 712}, Caption: "Left"},
	{Name: "injury_question1", Radio: true, OnState: "Yes", Rect: [4]float64{160, 700, 172, 712}, Caption: "Right"},
	{Name: "injury_question1", Radio: true, OnState: "Yes", Rect: [4]float64{220, 700, 232, 712}, Caption: "Both"},
	{Name: "full_name", Rect: [4]float64{100, 640, 300, 660}},
}

type builder struct {
	buf     bytes.Buffer
	offsets []int
}

func (b *builder) object(body string) int {
	b.offsets = append(b.offsets, b.buf.Len())
	id := len(b.offsets)
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", id, body)
	return id
}

func (b *builder) stream(dict, content string) int {
	return b.object(fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(content), content))
}

// reserve fixes the next object number so it can be referenced before its
// body is known
func (b *builder) reserve() int {
	b.offsets = append(b.offsets, -1)
	return len(b.offsets)
}

func (b *builder) fill(id int, body string) {
	b.offsets[id-1] = b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", id, body)
}

func rect(r [4]float64) string {
	return fmt.Sprintf("[%g %g %g %g]", r[0], r[1], r[2], r[3])
}

// Build returns a one page PDF whose AcroForm lists every widget as its own
// top level field. The AcroForm dictionary is inline in the catalog.
func Build(widgets []Widget) []byte {
	b := &builder{}
	b.buf.WriteString("%PDF-1.7\n")

	catalog := b.reserve()
	pages := b.reserve()
	page := b.reserve()
	font := b.object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var content strings.Builder
	for _, w := range widgets {
		if w.Caption == "" {
			continue
		}
		fmt.Fprintf(&content, "BT /F1 10 Tf %g %g Td (%s) Tj ET\n", w.Rect[2]+4, w.Rect[1]+2, w.Caption)
	}
	contents := b.stream("", content.String())

	var refs []string
	for _, w := range widgets {
		var id int
		if w.Radio {
			bbox := fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 %g %g]", w.Rect[2]-w.Rect[0], w.Rect[3]-w.Rect[1])
			on := b.stream(bbox, "0 g 2 2 8 8 re f")
			off := b.stream(bbox, "")
			id = b.object(fmt.Sprintf(
				"<< /Type /Annot /Subtype /Widget /FT /Btn /Ff %d /T (%s) /Rect %s /P %d 0 R /AS /Off /V /Off /DA (/ZaDb 0 Tf 0 g) "+
					"/AP << /N << /%s %d 0 R /Off %d 0 R >> /D << /%s %d 0 R /Off %d 0 R >> >> >>",
				1<<15|1<<14, w.Name, rect(w.Rect), page, w.OnState, on, off, w.OnState, on, off))
		} else {
			id = b.object(fmt.Sprintf(
				"<< /Type /Annot /Subtype /Widget /FT /Tx /T (%s) /Rect %s /P %d 0 R /DA (/Helv 10 Tf 0 g) /Border [0 0 1] >>",
				w.Name, rect(w.Rect), page))
		}
		refs = append(refs, fmt.Sprintf("%d 0 R", id))
	}
	list := strings.Join(refs, " ")

	b.fill(catalog, fmt.Sprintf(
		"<< /Type /Catalog /Pages %d 0 R /AcroForm << /Fields [%s] /DA (/Helv 0 Tf 0 g) >> >>", pages, list))
	b.fill(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", page))
	b.fill(page, fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R /Annots [%s] >>",
		pages, font, contents, list))

	xref := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", len(b.offsets)+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.offsets)+1, catalog, xref)
	return b.buf.Bytes()
}

// WriteFile builds the PDF into dir and returns its path
func WriteFile(dir, name string, widgets []Widget) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(widgets), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
