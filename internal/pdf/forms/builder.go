package forms

import (
	"log"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/refarray"
)

// Member is one widget of a group together with the record it resolved to
type Member struct {
	Widget WidgetHandle
	Record UpdateRecord
	Source MatchSource
}

func (m Member) key() SortKey {
	return SortKey{
		Order:    m.Record.Order,
		Top:      round2(m.Widget.Rect.Y1),
		X0:       round2(m.Widget.Rect.X0),
		ObjectID: m.Widget.ObjectID,
	}
}

// Group is the set of widgets that will share one parent field
type Group struct {
	Name    string
	Members []Member
}

// GroupReport describes a parent field created by the builder
type GroupReport struct {
	Name         string   `json:"name"`
	ParentID     int      `json:"parent_id"`
	Kids         []int    `json:"kids"`
	ExportNames  []string `json:"export_names"`
	InsertedAt   int      `json:"inserted_at"`
	RemovedRefs  int      `json:"removed_refs"`
	MatchSources []string `json:"match_sources"`
}

// Report summarizes one consolidation pass
type Report struct {
	Groups     []GroupReport               `json:"groups"`
	FieldArray string                      `json:"field_array"`
	Unmatched  int                         `json:"unmatched_records"`
	Issues     *formerrors.ErrorCollection `json:"issues"`
}

// Changed reports whether the pass modified the document
func (r *Report) Changed() bool {
	return len(r.Groups) > 0
}

// Consolidator turns independently created radio widgets into parent fields
// with Kids arrays
type Consolidator struct {
	graph     *graph.Accessor
	debugMode bool
}

// NewConsolidator creates a consolidator over an opened document
func NewConsolidator(a *graph.Accessor, debugMode bool) *Consolidator {
	return &Consolidator{graph: a, debugMode: debugMode}
}

// AcroFormID returns the object number of the form dictionary, moving an
// inline AcroForm into its own object first. ok is false when the catalog has
// no AcroForm entry.
func AcroFormID(a *graph.Accessor) (id int, ok bool, err error) {
	kind, _ := a.GetKey(a.Catalog(), "AcroForm")
	if kind == graph.KindAbsent {
		return 0, false, nil
	}
	id, err = a.Promote(a.Catalog(), "AcroForm")
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Consolidate runs one pass: it walks all widgets, re-associates the radio
// widgets with records, and rebuilds every resolved group as a parent field.
// A document without an AcroForm or field array, or a call without records,
// is left unchanged.
func (c *Consolidator) Consolidate(records []UpdateRecord) (*Report, error) {
	report := &Report{Issues: formerrors.NewErrorCollection("")}
	if len(records) == 0 {
		return report, nil
	}

	// An inline AcroForm is moved into its own object only when groups are
	// written.
	_, acroFormObj := c.graph.GetKey(c.graph.Catalog(), "AcroForm")
	if acroFormObj == nil {
		report.Issues.Add(formerrors.NewFormError(formerrors.ErrorTypeStructuralAbsence, "document has no AcroForm"))
		return report, nil
	}
	acroForm, acroFormRef, isDict := c.graph.ResolveDict(acroFormObj)
	if !isDict {
		report.Issues.Add(formerrors.NewFormError(formerrors.ErrorTypeUnresolvedReference, "/AcroForm does not point to a dictionary").
			WithObject(acroFormRef))
		return report, nil
	}

	fieldsArr, fieldsID, isArray := c.graph.ResolveArray(acroForm["Fields"])
	if !isArray {
		report.Issues.Add(formerrors.NewFormError(formerrors.ErrorTypeStructuralAbsence, "AcroForm has no Fields array").
			WithObject(acroFormRef))
		return report, nil
	}
	fields := refarray.FromArray(fieldsArr)
	others := refarray.Others(fieldsArr)

	widgets, err := WalkWidgets(c.graph)
	if err != nil {
		return nil, formerrors.WrapError(formerrors.ErrorTypeStorage, "walk widgets", err)
	}

	matcher := NewMatcher(records)
	groups := c.resolveGroups(widgets, matcher)
	report.Unmatched = matcher.Remaining()

	for _, group := range groups {
		gr, updated, err := c.buildGroup(group, fields, report.Issues)
		if err != nil {
			report.Issues.Add(asFormError(err))
			continue
		}
		fields = updated
		report.Groups = append(report.Groups, gr)
	}

	report.FieldArray = refarray.Format(fields)
	if !report.Changed() {
		return report, nil
	}

	acroFormID, _, err := AcroFormID(c.graph)
	if err != nil {
		return nil, err
	}
	newFields := append(refarray.ToArray(fields), others...)
	if fieldsID != 0 {
		err = c.graph.WriteObject(fieldsID, newFields)
	} else {
		err = c.graph.SetKey(acroFormID, "Fields", newFields)
	}
	if err != nil {
		return nil, err
	}

	if c.debugMode {
		log.Printf("Consolidated %d radio group(s); Fields now %s", len(report.Groups), report.FieldArray)
	}
	return report, nil
}

// resolveGroups matches candidate widgets in document order and returns the
// groups sorted by their first member
func (c *Consolidator) resolveGroups(widgets []WidgetHandle, matcher *Matcher) []Group {
	byName := make(map[string]*Group)
	var order []*Group

	for _, w := range widgets {
		if !w.Independent() {
			continue
		}

		var m Match
		switch w.FieldType {
		case FieldTypeRadio:
			m = matcher.Match(w)
		case FieldTypeCheckbox:
			var ok bool
			if m, ok = matcher.MatchGeometric(w); !ok {
				continue
			}
		default:
			continue
		}

		if c.debugMode {
			log.Printf("Widget %d (%q, page %d) -> %q via %s", w.ObjectID, w.FieldName, w.PageIndex, m.Field, m.Source)
		}

		g, ok := byName[m.Field]
		if !ok {
			g = &Group{Name: m.Field}
			byName[m.Field] = g
			order = append(order, g)
		}
		g.Members = append(g.Members, Member{Widget: w, Record: m.Record, Source: m.Source})
	}

	groups := make([]Group, 0, len(order))
	for _, g := range order {
		sort.SliceStable(g.Members, func(i, j int) bool {
			return g.Members[i].key().Less(g.Members[j].key())
		})
		groups = append(groups, *g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		ki, kj := groups[i].Members[0].key(), groups[j].Members[0].key()
		if ki == kj {
			return groups[i].Name < groups[j].Name
		}
		return ki.Less(kj)
	})
	return groups
}

// buildGroup writes the parent field for one group, splices it into fields
// and detaches the children. It returns the updated field sequence.
func (c *Consolidator) buildGroup(group Group, fields []refarray.Ref, issues *formerrors.ErrorCollection) (GroupReport, []refarray.Ref, error) {
	a := c.graph
	first := group.Members[0].Widget

	childRefs := make([]refarray.Ref, len(group.Members))
	remove := make(map[refarray.Ref]bool)
	for i, m := range group.Members {
		ref := refarray.Ref{Num: m.Widget.ObjectID, Gen: m.Widget.Gen}
		childRefs[i] = ref
		remove[ref] = true
		if kind, parent := a.GetKey(m.Widget.ObjectID, "Parent"); kind == graph.KindRef {
			if pid, ok := graph.RefID(parent); ok {
				remove[refarray.Ref{Num: pid, Gen: refGen(parent)}] = true
			}
		}
	}

	parentID, err := a.NewObjectID()
	if err != nil {
		return GroupReport{}, nil, err
	}

	parent := types.Dict{
		"FT":   types.Name("Btn"),
		"T":    c.groupTitle(group),
		"Ff":   types.Integer(first.Flags | FlagRadio),
		"Kids": refarray.ToArray(childRefs),
		"V":    types.Name(OffState),
		"DV":   types.Name(OffState),
	}
	if kind, da := a.GetKey(first.ObjectID, "DA"); kind == graph.KindString {
		parent["DA"] = da
	}
	if err := a.WriteObject(parentID, parent); err != nil {
		return GroupReport{}, nil, err
	}

	parentRef := refarray.Ref{Num: parentID}
	insertedAt := refarray.Index(fields, remove)
	fields = refarray.Splice(fields, remove, parentRef)
	if insertedAt < 0 {
		insertedAt = len(fields) - 1
	}

	report := GroupReport{
		Name:        group.Name,
		ParentID:    parentID,
		InsertedAt:  insertedAt,
		RemovedRefs: len(remove),
	}

	used := make(map[string]bool)
	for _, m := range group.Members {
		id := m.Widget.ObjectID
		report.Kids = append(report.Kids, id)
		report.MatchSources = append(report.MatchSources, m.Source.String())

		exportName := ""
		if m.Record.ExportLabel != "" {
			exportName = SanitizeExport(m.Record.ExportLabel, used)
			if err := RenameOnState(a, id, exportName); err != nil {
				issues.Add(asFormError(err))
			}
		}
		report.ExportNames = append(report.ExportNames, exportName)

		c.detachChild(id, parentRef.Indirect(), m.Record.Tooltip, issues)
	}

	return report, fields, nil
}

// detachChild strips the widget's own field identity and links it to parent
func (c *Consolidator) detachChild(id int, parent types.IndirectRef, tooltip string, issues *formerrors.ErrorCollection) {
	a := c.graph
	for _, key := range []string{"T", "V", "DV", "Kids"} {
		if err := a.ClearKey(id, key); err != nil {
			issues.Add(asFormError(err))
			return
		}
	}
	if err := a.SetKey(id, "Parent", parent); err != nil {
		issues.Add(asFormError(err))
		return
	}
	if err := a.SetKey(id, "AS", types.Name(OffState)); err != nil {
		issues.Add(asFormError(err))
	}
	if tooltip != "" {
		if err := a.SetKey(id, "TU", literal(tooltip)); err != nil {
			issues.Add(asFormError(err))
		}
	}
}

// groupTitle reuses the T object of a member already carrying the group name
// so its encoding is preserved
func (c *Consolidator) groupTitle(group Group) types.Object {
	for _, m := range group.Members {
		if !m.Widget.OwnName || m.Widget.FieldName != group.Name {
			continue
		}
		if kind, t := c.graph.GetKey(m.Widget.ObjectID, "T"); kind == graph.KindString {
			return t
		}
	}
	return literal(group.Name)
}

func refGen(obj types.Object) int {
	if ref, ok := obj.(types.IndirectRef); ok {
		return int(ref.GenerationNumber)
	}
	return 0
}

func asFormError(err error) *formerrors.FormError {
	if fe, ok := err.(*formerrors.FormError); ok {
		return fe
	}
	return formerrors.WrapError(formerrors.ErrorTypeUnknown, "form repair step failed", err)
}
