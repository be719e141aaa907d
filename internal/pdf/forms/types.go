// Package forms repairs the AcroForm structure produced by drawing libraries
// that create every widget, radio options included, as an independent field.
package forms

import (
	"math"
)

// Field flag bits (PDF 32000-1, 12.7.4.2).
const (
	FlagReadOnly      = 1 << 0
	FlagRequired      = 1 << 1
	FlagNoToggleToOff = 1 << 14
	FlagRadio         = 1 << 15
	FlagPushButton    = 1 << 16
)

const (
	// OffState is the appearance state name every button uses for "unselected".
	OffState = "Off"
	// AnyPage marks an update record that may match a widget on any page.
	AnyPage = -1
	// RectTolerance is the per-edge distance under which two rectangles match.
	RectTolerance = 0.05
)

// FieldType categorizes a widget by its field's FT entry and flags
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeRadio      FieldType = "radiobutton"
	FieldTypePushButton FieldType = "button"
	FieldTypeChoice     FieldType = "combobox"
	FieldTypeListBox    FieldType = "listbox"
	FieldTypeSignature  FieldType = "signature"
	FieldTypeUnknown    FieldType = "unknown"
)

// Rect is an annotation rectangle in default user space
type Rect struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// IsZero reports whether the rectangle is unset
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Close reports whether every edge of r lies within tol of the same edge of o
func (r Rect) Close(o Rect, tol float64) bool {
	return math.Abs(r.X0-o.X0) <= tol &&
		math.Abs(r.Y0-o.Y0) <= tol &&
		math.Abs(r.X1-o.X1) <= tol &&
		math.Abs(r.Y1-o.Y1) <= tol
}

// Normalize orders the corners so that X0 <= X1 and Y0 <= Y1
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// UpdateRecord is emitted by the drawing step for every radio option it draws.
// It carries enough geometry to find the option's widget again after the
// document has been saved and reopened.
type UpdateRecord struct {
	FieldName   string `json:"field_name" yaml:"field_name"`
	ExportLabel string `json:"export" yaml:"export"`
	PageIndex   int    `json:"page_index" yaml:"page_index"`
	Rect        Rect   `json:"rect" yaml:"rect"`
	Order       int    `json:"order" yaml:"order"`
	// Tooltip, when set, becomes the widget's TU entry.
	Tooltip string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
}

// onPage reports whether the record may match a widget on pageIndex
func (r UpdateRecord) onPage(pageIndex int) bool {
	return r.PageIndex == AnyPage || r.PageIndex == pageIndex
}

// WidgetHandle is a widget annotation read back from the reopened document
type WidgetHandle struct {
	ObjectID  int
	Gen       int
	PageIndex int
	Rect      Rect
	FieldType FieldType
	// FieldName is the nearest partial name (T) found on the widget or its ancestors.
	FieldName string
	// FullName is the fully qualified field name.
	FullName string
	Flags    int
	Tooltip  string
	// OwnName is true when the widget dictionary carries its own T entry.
	OwnName bool
	// ParentID is the object number of the widget's parent field, zero if none.
	ParentID int
}

// Independent reports whether the widget is still addressable as a field of its
// own. Widgets consolidated under a parent lose their T entry.
func (w WidgetHandle) Independent() bool {
	return w.OwnName || w.ParentID == 0
}

// SortKey orders the members of a group deterministically: by record order,
// then top to bottom and left to right on the page
type SortKey struct {
	Order int
	// Top is the upper edge in user space, where y grows upward.
	Top      float64
	X0       float64
	ObjectID int
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Less compares two sort keys field by field
func (k SortKey) Less(o SortKey) bool {
	if k.Order != o.Order {
		return k.Order < o.Order
	}
	if k.Top != o.Top {
		return k.Top > o.Top
	}
	if k.X0 != o.X0 {
		return k.X0 < o.X0
	}
	return k.ObjectID < o.ObjectID
}
