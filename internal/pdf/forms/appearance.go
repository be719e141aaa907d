package forms

import (
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
)

// OnStates returns the non-Off state names of the widget's normal appearance
// dictionary, sorted
func OnStates(a *graph.Accessor, widgetID int) []string {
	_, apObj := a.GetKey(widgetID, "AP")
	ap, _, ok := a.ResolveDict(apObj)
	if !ok {
		return nil
	}
	n, _, ok := a.ResolveDict(ap["N"])
	if !ok {
		return nil
	}
	return onKeys(n)
}

// AppearanceStates returns the state names of the normal and down appearance
// dictionaries
func AppearanceStates(a *graph.Accessor, widgetID int) map[string][]string {
	_, apObj := a.GetKey(widgetID, "AP")
	ap, _, ok := a.ResolveDict(apObj)
	if !ok {
		return nil
	}
	states := make(map[string][]string)
	for key, label := range map[string]string{"N": "normal", "D": "down"} {
		sub, _, ok := a.ResolveDict(ap[key])
		if !ok {
			continue
		}
		names := make([]string, 0, len(sub))
		for name := range sub {
			names = append(names, name)
		}
		sort.Strings(names)
		states[label] = names
	}
	return states
}

func onKeys(d types.Dict) []string {
	var keys []string
	for k := range d {
		if k != OffState {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// RenameOnState renames the on-state entry of a widget's normal appearance
// dictionary to state, and the same entry of its down appearance when there
// is one. The appearance dictionary and its sub-dictionaries may be inline or
// indirect.
//
// A widget without exactly one non-Off entry in /N is left untouched and an
// AppearanceRewriteMiss error is returned. Renaming to the name already in
// place is a no-op.
func RenameOnState(a *graph.Accessor, widgetID int, state string) error {
	kind, apObj := a.GetKey(widgetID, "AP")
	if kind != graph.KindDict && kind != graph.KindRef {
		return rewriteMiss(widgetID, "no /AP dictionary")
	}
	ap, apID, ok := a.ResolveDict(apObj)
	if !ok {
		return formerrors.NewFormError(formerrors.ErrorTypeUnresolvedReference, "appearance is not a dictionary").
			WithObject(widgetID)
	}

	n, nID, ok := a.ResolveDict(ap["N"])
	if !ok {
		return rewriteMiss(widgetID, "no /N dictionary")
	}
	keys := onKeys(n)
	switch len(keys) {
	case 0:
		return rewriteMiss(widgetID, "no on-state entry in /N")
	case 1:
	default:
		return rewriteMiss(widgetID, "more than one on-state entry in /N")
	}
	old := keys[0]
	if old == state {
		return nil
	}

	renameKey(n, old, state)
	if err := persist(a, nID, n); err != nil {
		return err
	}

	if d, dID, ok := a.ResolveDict(ap["D"]); ok {
		if _, has := d[old]; has {
			renameKey(d, old, state)
			if err := persist(a, dID, d); err != nil {
				return err
			}
		}
	}

	if apID != 0 {
		return persist(a, apID, ap)
	}
	return a.SetKey(widgetID, "AP", ap)
}

// persist writes an edited dictionary back to its indirect object. Inline
// dictionaries (id zero) are edited in place through their owner.
func persist(a *graph.Accessor, id int, d types.Dict) error {
	if id == 0 {
		return nil
	}
	if obj, ok := a.Object(id); ok {
		if _, isDict := obj.(types.Dict); !isDict {
			return nil
		}
	}
	return a.WriteObject(id, d)
}

func renameKey(d types.Dict, from, to string) {
	v := d[from]
	delete(d, from)
	d[to] = v
}

func rewriteMiss(widgetID int, context string) error {
	return formerrors.NewFormError(formerrors.ErrorTypeAppearanceRewriteMiss, "on-state not renamed").
		WithObject(widgetID).
		WithContext(context)
}
