package metadata

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxCaptionGap is how far right of a widget a caption may start, in points
const maxCaptionGap = 150.0

// AttachCaptions fills Row.Caption with the text drawn on the same line to
// the right of each widget, as laid out by the drawing step. Pages whose
// content cannot be decoded are skipped.
func AttachCaptions(path string, rows []Row, debugMode bool) error {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF for captions: %w", err)
	}
	defer f.Close()

	cache := make(map[int][]pdf.Text)
	for i := range rows {
		page := rows[i].Page
		texts, ok := cache[page]
		if !ok {
			texts = pageTexts(reader, page, debugMode)
			cache[page] = texts
		}
		rows[i].Caption = captionFor(texts, rows[i])
	}
	return nil
}

func pageTexts(reader *pdf.Reader, pageNum int, debugMode bool) (texts []pdf.Text) {
	defer func() {
		if r := recover(); r != nil {
			if debugMode {
				log.Printf("Caption lookup failed on page %d: %v", pageNum, r)
			}
			texts = nil
		}
	}()

	if pageNum < 1 || pageNum > reader.NumPage() {
		return nil
	}
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}
	return page.Content().Text
}

// captionFor joins the glyphs on the widget's line that start right of it,
// stopping at the first wide gap
func captionFor(texts []pdf.Text, row Row) string {
	r := row.Rect
	slack := math.Max(2, r.Height()/2)

	var line []pdf.Text
	for _, t := range texts {
		if t.Y < r.Y0-slack || t.Y > r.Y1+slack {
			continue
		}
		if t.X < r.X1-1 || t.X > r.X1+maxCaptionGap {
			continue
		}
		line = append(line, t)
	}
	if len(line) == 0 {
		return ""
	}
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

	var b strings.Builder
	b.WriteString(line[0].S)
	for i := 1; i < len(line); i++ {
		prev := line[i-1]
		gap := line[i].X - (prev.X + prev.W)
		if gap > 1.5*math.Max(prev.FontSize, 1) {
			break
		}
		b.WriteString(line[i].S)
	}
	return strings.TrimSpace(b.String())
}
