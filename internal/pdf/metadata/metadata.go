// Package metadata exports a flat description of every widget in a form,
// written next to the processed PDF for review and downstream tooling.
package metadata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/forms"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
)

// Header lists the CSV columns in order
var Header = []string{
	"page", "name", "type", "x0", "y0", "x1", "y1", "flags", "readonly",
	"tooltip", "on_value", "export_values", "xref", "caption",
}

// Row describes one widget
type Row struct {
	Page         int                 `json:"page"`
	Name         string              `json:"name"`
	Type         forms.FieldType     `json:"type"`
	Rect         forms.Rect          `json:"rect"`
	Flags        int                 `json:"flags"`
	ReadOnly     bool                `json:"readonly"`
	Tooltip      string              `json:"tooltip,omitempty"`
	OnValue      string              `json:"on_value,omitempty"`
	ExportValues map[string][]string `json:"export_values,omitempty"`
	Choices      []string            `json:"choices,omitempty"`
	ObjectID     int                 `json:"xref"`
	Caption      string              `json:"caption,omitempty"`
}

// Collect reads one row per widget in page order. Page numbers are 1-based.
func Collect(a *graph.Accessor) ([]Row, error) {
	widgets, err := forms.WalkWidgets(a)
	if err != nil {
		return nil, formerrors.WrapError(formerrors.ErrorTypeStorage, "walk widgets", err)
	}

	rows := make([]Row, 0, len(widgets))
	for _, w := range widgets {
		row := Row{
			Page:     w.PageIndex + 1,
			Name:     w.FullName,
			Type:     w.FieldType,
			Rect:     w.Rect,
			Flags:    w.Flags,
			ReadOnly: w.Flags&forms.FlagReadOnly != 0,
			Tooltip:  w.Tooltip,
			ObjectID: w.ObjectID,
		}

		switch w.FieldType {
		case forms.FieldTypeCheckbox, forms.FieldTypeRadio, forms.FieldTypePushButton:
			if states := forms.OnStates(a, w.ObjectID); len(states) > 0 {
				row.OnValue = states[0]
			}
			row.ExportValues = forms.AppearanceStates(a, w.ObjectID)
		case forms.FieldTypeChoice, forms.FieldTypeListBox:
			row.Choices = choiceValues(a, w)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// choiceValues returns the export values of a choice field's Opt array,
// looking at the widget first and then its parent
func choiceValues(a *graph.Accessor, w forms.WidgetHandle) []string {
	for _, id := range []int{w.ObjectID, w.ParentID} {
		if id == 0 {
			continue
		}
		_, opt := a.GetKey(id, "Opt")
		arr, _, ok := a.ResolveArray(opt)
		if !ok {
			continue
		}
		values := make([]string, 0, len(arr))
		for _, entry := range arr {
			if pair, _, isPair := a.ResolveArray(entry); isPair && len(pair) > 0 {
				entry = pair[0]
			}
			if s, ok := decodeText(entry); ok {
				values = append(values, s)
			}
		}
		return values
	}
	return nil
}

func decodeText(obj types.Object) (string, bool) {
	switch s := obj.(type) {
	case types.StringLiteral:
		v, err := types.StringLiteralToString(s)
		if err != nil {
			return string(s), true
		}
		return v, true
	case types.HexLiteral:
		v, err := types.HexLiteralToString(s)
		return v, err == nil
	case types.Name:
		return string(s), true
	}
	return "", false
}

// CSVPath returns the metadata path for a PDF: the same name with a .csv
// extension
func CSVPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".csv"
}

// Record renders a row in Header order
func (r Row) Record() []string {
	exportValues := ""
	switch {
	case len(r.ExportValues) > 0:
		exportValues = mustJSON(r.ExportValues)
	case len(r.Choices) > 0:
		exportValues = mustJSON(r.Choices)
	}
	return []string{
		strconv.Itoa(r.Page),
		r.Name,
		string(r.Type),
		fmt.Sprintf("%.2f", r.Rect.X0),
		fmt.Sprintf("%.2f", r.Rect.Y0),
		fmt.Sprintf("%.2f", r.Rect.X1),
		fmt.Sprintf("%.2f", r.Rect.Y1),
		strconv.Itoa(r.Flags),
		strconv.FormatBool(r.ReadOnly),
		r.Tooltip,
		r.OnValue,
		exportValues,
		strconv.Itoa(r.ObjectID),
		r.Caption,
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// WriteCSV writes rows with a header line to path
func WriteCSV(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return formerrors.WrapError(formerrors.ErrorTypeStorage, "create metadata file", err).WithFile(path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		return formerrors.WrapError(formerrors.ErrorTypeStorage, "write metadata header", err).WithFile(path)
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return formerrors.WrapError(formerrors.ErrorTypeStorage, "write metadata row", err).WithFile(path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return formerrors.WrapError(formerrors.ErrorTypeStorage, "flush metadata file", err).WithFile(path)
	}
	return nil
}
