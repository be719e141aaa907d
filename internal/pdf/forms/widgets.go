package forms

import (
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
)

// maxFieldDepth bounds Parent chains so a cyclic tree cannot loop forever
const maxFieldDepth = 32

// WalkWidgets returns every widget annotation of the document in page order,
// then in the order each page's Annots array lists them.
func WalkWidgets(a *graph.Accessor) ([]WidgetHandle, error) {
	pageIDs, err := a.PageIDs()
	if err != nil {
		return nil, err
	}

	var widgets []WidgetHandle
	for pageIndex, pageID := range pageIDs {
		_, annotsObj := a.GetKey(pageID, "Annots")
		annots, _, ok := a.ResolveArray(annotsObj)
		if !ok {
			continue
		}
		for _, entry := range annots {
			id, isRef := graph.RefID(entry)
			if !isRef {
				continue
			}
			gen := 0
			if ref, ok := entry.(types.IndirectRef); ok {
				gen = int(ref.GenerationNumber)
			}
			annot, found := a.Dict(id)
			if !found {
				continue
			}
			if subtype, _ := annot["Subtype"].(types.Name); subtype != "Widget" {
				continue
			}
			w := readWidget(a, id, annot)
			w.Gen = gen
			w.PageIndex = pageIndex
			widgets = append(widgets, w)
		}
	}
	return widgets, nil
}

func readWidget(a *graph.Accessor, id int, annot types.Dict) WidgetHandle {
	w := WidgetHandle{ObjectID: id}

	if rect, ok := rectOf(a, annot["Rect"]); ok {
		w.Rect = rect
	}
	if _, ok := annot["T"]; ok {
		w.OwnName = true
	}
	if parentID, ok := graph.RefID(annot["Parent"]); ok {
		w.ParentID = parentID
	}

	var (
		parts   []string
		ft      types.Name
		flags   *int
		tooltip *string
	)

	node := annot
	for depth := 0; node != nil && depth < maxFieldDepth; depth++ {
		if name, ok := textOf(a, node["T"]); ok {
			parts = append(parts, name)
		}
		if ft == "" {
			if v, ok := node["FT"].(types.Name); ok {
				ft = v
			}
		}
		if flags == nil {
			if v, ok := intOf(a, node["Ff"]); ok {
				flags = &v
			}
		}
		if tooltip == nil {
			if v, ok := textOf(a, node["TU"]); ok {
				tooltip = &v
			}
		}

		parentObj, hasParent := node["Parent"]
		if !hasParent {
			break
		}
		parent, _, ok := a.ResolveDict(parentObj)
		if !ok {
			break
		}
		node = parent
	}

	if len(parts) > 0 {
		w.FieldName = parts[0]
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		w.FullName = strings.Join(parts, ".")
	}
	if flags != nil {
		w.Flags = *flags
	}
	if tooltip != nil {
		w.Tooltip = *tooltip
	}
	w.FieldType = classify(ft, w.Flags)
	return w
}

func classify(ft types.Name, flags int) FieldType {
	switch ft {
	case "Btn":
		switch {
		case flags&FlagPushButton != 0:
			return FieldTypePushButton
		case flags&FlagRadio != 0:
			return FieldTypeRadio
		default:
			return FieldTypeCheckbox
		}
	case "Tx":
		return FieldTypeText
	case "Ch":
		if flags&(1<<17) != 0 {
			return FieldTypeChoice
		}
		return FieldTypeListBox
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

// textOf decodes a string or hex literal, following one indirection
func textOf(a *graph.Accessor, obj types.Object) (string, bool) {
	target, _ := a.Resolve(obj)
	switch s := target.(type) {
	case types.StringLiteral:
		v, err := types.StringLiteralToString(s)
		if err != nil {
			return string(s), true
		}
		return v, true
	case types.HexLiteral:
		v, err := types.HexLiteralToString(s)
		if err != nil {
			return "", false
		}
		return v, true
	}
	return "", false
}

// numberOf reads an integer or real number, following one indirection
func numberOf(a *graph.Accessor, obj types.Object) (float64, bool) {
	target, _ := a.Resolve(obj)
	switch n := target.(type) {
	case types.Integer:
		return float64(n), true
	case types.Float:
		return float64(n), true
	}
	return 0, false
}

func intOf(a *graph.Accessor, obj types.Object) (int, bool) {
	target, _ := a.Resolve(obj)
	switch n := target.(type) {
	case types.Integer:
		return int(n), true
	case types.Float:
		return int(n), true
	}
	return 0, false
}

func rectOf(a *graph.Accessor, obj types.Object) (Rect, bool) {
	arr, _, ok := a.ResolveArray(obj)
	if !ok || len(arr) != 4 {
		return Rect{}, false
	}
	var coords [4]float64
	for i, v := range arr {
		f, ok := numberOf(a, v)
		if !ok {
			return Rect{}, false
		}
		coords[i] = f
	}
	return Rect{X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]}.Normalize(), true
}

// literal encodes s as a PDF text string. ASCII text is written as is,
// anything else as UTF-16BE with a byte order mark.
func literal(s string) types.StringLiteral {
	for i := 0; i < len(s); i++ {
		if s[i] < utf8.RuneSelf {
			continue
		}
		if escaped, err := types.EscapedUTF16String(s); err == nil {
			return types.StringLiteral(*escaped)
		}
		break
	}
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return types.StringLiteral(r.Replace(s))
}
