package forms

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
)

// RecordSet is the content of a records file: the update records emitted by
// the drawing step and an optional font patch
type RecordSet struct {
	Records   []UpdateRecord `json:"records"`
	FontPatch *FontPatch     `json:"font_patch,omitempty"`
}

type recordFile struct {
	Records   []recordEntry `json:"records" yaml:"records"`
	FontPatch *FontPatch    `json:"font_patch" yaml:"font_patch"`
}

type recordEntry struct {
	FieldName string `json:"field_name" yaml:"field_name"`
	Export    string `json:"export" yaml:"export"`
	Label     string `json:"label" yaml:"label"`
	PageIndex *int   `json:"page_index" yaml:"page_index"`
	Rect      any    `json:"rect" yaml:"rect"`
	Order     *int   `json:"order" yaml:"order"`
	Tooltip   string `json:"tooltip" yaml:"tooltip"`
}

// LoadRecords reads a JSON or YAML records file
func LoadRecords(path string) (*RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, formerrors.WrapError(formerrors.ErrorTypeStorage, "read records file", err).WithFile(path)
	}
	set, err := ParseRecords(data, path)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ParseRecords decodes records from JSON or YAML. The document is either a
// bare list of records or an object with "records" and "font_patch" keys.
// A record without order takes its list position; one without page_index
// may match on any page.
func ParseRecords(data []byte, source string) (*RecordSet, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return &RecordSet{}, nil
	}

	file, err := parseRecordFile(data)
	if err != nil {
		return nil, formerrors.WrapError(formerrors.ErrorTypeInvalidRecord, "parse records: invalid JSON or YAML", err).
			WithFile(source)
	}

	set := &RecordSet{FontPatch: file.FontPatch}
	for i, entry := range file.Records {
		rec, err := entry.normalise(i)
		if err != nil {
			return nil, formerrors.WrapError(formerrors.ErrorTypeInvalidRecord, fmt.Sprintf("record %d", i), err).
				WithFile(source)
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}

func parseRecordFile(data []byte) (recordFile, error) {
	var list []recordEntry
	if err := json.Unmarshal(data, &list); err == nil {
		return recordFile{Records: list}, nil
	}
	var file recordFile
	if err := json.Unmarshal(data, &file); err == nil {
		return file, nil
	}
	if err := yaml.Unmarshal(data, &list); err == nil {
		return recordFile{Records: list}, nil
	}
	file = recordFile{}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return recordFile{}, err
	}
	return file, nil
}

func (e recordEntry) normalise(index int) (UpdateRecord, error) {
	rec := UpdateRecord{
		FieldName:   strings.TrimSpace(e.FieldName),
		ExportLabel: e.Export,
		PageIndex:   AnyPage,
		Order:       index,
		Tooltip:     e.Tooltip,
	}
	if rec.ExportLabel == "" {
		rec.ExportLabel = e.Label
	}
	if e.PageIndex != nil {
		if *e.PageIndex < 0 {
			return UpdateRecord{}, fmt.Errorf("negative page_index %d", *e.PageIndex)
		}
		rec.PageIndex = *e.PageIndex
	}
	if e.Order != nil {
		rec.Order = *e.Order
	}
	if e.Rect != nil {
		rect, err := parseRect(e.Rect)
		if err != nil {
			return UpdateRecord{}, err
		}
		rec.Rect = rect
	}
	return rec, nil
}

// parseRect accepts [x0, y0, x1, y1] or {x0, y0, x1, y1}
func parseRect(raw any) (Rect, error) {
	switch v := raw.(type) {
	case []any:
		if len(v) != 4 {
			return Rect{}, fmt.Errorf("rect needs 4 numbers, got %d", len(v))
		}
		var coords [4]float64
		for i, n := range v {
			f, ok := toFloat(n)
			if !ok {
				return Rect{}, fmt.Errorf("rect entry %d is not a number", i)
			}
			coords[i] = f
		}
		return Rect{X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]}.Normalize(), nil
	case map[string]any:
		var r Rect
		for key, dst := range map[string]*float64{"x0": &r.X0, "y0": &r.Y0, "x1": &r.X1, "y1": &r.Y1} {
			f, ok := toFloat(v[key])
			if !ok {
				return Rect{}, fmt.Errorf("rect key %s is missing or not a number", key)
			}
			*dst = f
		}
		return r.Normalize(), nil
	}
	return Rect{}, fmt.Errorf("rect has unsupported type %T", raw)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
