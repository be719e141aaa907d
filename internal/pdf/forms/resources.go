package forms

import (
	"fmt"
	"log"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
)

// FontPatch names an embedded font and the single field that should render
// with it
type FontPatch struct {
	FontObjectID int     `json:"font_object_id" yaml:"font_object_id"`
	ResourceName string  `json:"resource_name" yaml:"resource_name"`
	FontSize     float64 `json:"font_size" yaml:"font_size"`
	FieldName    string  `json:"field_name" yaml:"field_name"`
}

// Validate checks that the patch is complete
func (p FontPatch) Validate() error {
	switch {
	case p.FieldName == "":
		return formerrors.NewFormError(formerrors.ErrorTypeInvalidRecord, "font patch needs a field name")
	case p.ResourceName == "":
		return formerrors.NewFormError(formerrors.ErrorTypeInvalidRecord, "font patch needs a resource name")
	case p.FontObjectID <= 0:
		return formerrors.NewFormError(formerrors.ErrorTypeInvalidRecord, "font patch needs a font object number")
	case p.FontSize <= 0:
		return formerrors.NewFormError(formerrors.ErrorTypeInvalidRecord, "font patch needs a positive font size")
	}
	return nil
}

// DefaultAppearance returns the DA string selecting the patched font in black
func (p FontPatch) DefaultAppearance() string {
	return fmt.Sprintf("0 0 0 rg /%s %s Tf", p.ResourceName, strconv.FormatFloat(p.FontSize, 'f', -1, 64))
}

// PatchDefaultResources registers the font in the AcroForm's DR dictionary,
// points the target field's DA at it and drops the field's cached appearance.
// It reports whether the target field was found; a missing field or a
// document without an AcroForm is left unchanged.
func PatchDefaultResources(a *graph.Accessor, patch FontPatch, debugMode bool) (bool, error) {
	if err := patch.Validate(); err != nil {
		return false, err
	}

	widgets, err := WalkWidgets(a)
	if err != nil {
		return false, formerrors.WrapError(formerrors.ErrorTypeStorage, "walk widgets", err)
	}
	target, found := findWidget(widgets, patch.FieldName)
	if !found {
		if debugMode {
			log.Printf("Font patch skipped: no field named %q", patch.FieldName)
		}
		return false, nil
	}

	acroFormID, ok, err := AcroFormID(a)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	drID, err := a.Promote(acroFormID, "DR")
	if err != nil {
		return false, err
	}
	fontRef := graph.Ref(patch.FontObjectID)
	kind, fontObj := a.GetKey(drID, "Font")
	switch kind {
	case graph.KindAbsent:
		err = a.SetKey(drID, "Font", types.Dict{patch.ResourceName: fontRef})
	case graph.KindDict, graph.KindRef:
		fonts, fontsID, isDict := a.ResolveDict(fontObj)
		if !isDict {
			return false, formerrors.NewFormError(formerrors.ErrorTypeUnresolvedReference, "DR /Font is not a dictionary").
				WithObject(drID)
		}
		if fontsID != 0 {
			err = a.SetKey(fontsID, patch.ResourceName, fontRef)
		} else {
			fonts[patch.ResourceName] = fontRef
		}
	default:
		return false, formerrors.NewFormError(formerrors.ErrorTypeUnresolvedReference, "DR /Font is not a dictionary").
			WithObject(drID).
			WithContext(kind.String())
	}
	if err != nil {
		return false, err
	}

	da := types.StringLiteral(patch.DefaultAppearance())
	if err := a.SetKey(target.ObjectID, "DA", da); err != nil {
		return false, err
	}
	if !target.OwnName && target.ParentID != 0 {
		if err := a.SetKey(target.ParentID, "DA", da); err != nil {
			return false, err
		}
	}
	if err := a.ClearKey(target.ObjectID, "AP"); err != nil {
		return false, err
	}

	if debugMode {
		log.Printf("Patched DR with /%s -> %d 0 R for field %q", patch.ResourceName, patch.FontObjectID, patch.FieldName)
	}
	return true, nil
}

// findWidget returns the first widget whose partial or full name is name
func findWidget(widgets []WidgetHandle, name string) (WidgetHandle, bool) {
	for _, w := range widgets {
		if w.FieldName == name || w.FullName == name {
			return w, true
		}
	}
	return WidgetHandle{}, false
}
