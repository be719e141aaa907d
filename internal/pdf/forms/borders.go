package forms

import (
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
)

// StripTextBorders gives every text widget a zero-width border so viewers
// draw the field without a frame. It returns the number of widgets changed;
// widgets that cannot be updated are recorded in issues and skipped.
func StripTextBorders(a *graph.Accessor, issues *formerrors.ErrorCollection, debugMode bool) (int, error) {
	widgets, err := WalkWidgets(a)
	if err != nil {
		return 0, formerrors.WrapError(formerrors.ErrorTypeStorage, "walk widgets", err)
	}

	changed := 0
	for _, w := range widgets {
		if w.FieldType != FieldTypeText {
			continue
		}
		border := types.Array{types.Integer(0), types.Integer(0), types.Integer(0)}
		style := types.Dict{"S": types.Name("S"), "W": types.Integer(0)}
		if err := a.SetKey(w.ObjectID, "Border", border); err != nil {
			issues.Add(asFormError(err))
			continue
		}
		if err := a.SetKey(w.ObjectID, "BS", style); err != nil {
			issues.Add(asFormError(err))
			continue
		}
		changed++
	}

	if debugMode {
		log.Printf("Stripped borders from %d text widget(s)", changed)
	}
	return changed, nil
}
