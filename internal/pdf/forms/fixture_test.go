package forms

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
)

// formFixture builds the object graph a drawing library leaves behind: every
// widget is its own top level field listed in the AcroForm Fields array.
type formFixture struct {
	t        *testing.T
	arena    *graph.Arena
	a        *graph.Accessor
	acroForm int
	pages    []int
}

func newFormFixture(t *testing.T, pageCount int) *formFixture {
	t.Helper()
	arena := graph.NewArena()
	a := graph.New(arena)

	f := &formFixture{t: t, arena: arena, a: a}
	for i := 0; i < pageCount; i++ {
		f.pages = append(f.pages, arena.AddPage(types.Dict{"Annots": types.Array{}}))
	}
	f.acroForm = arena.Add(types.Dict{
		"Fields": types.Array{},
		"DA":     types.StringLiteral("/Helv 0 Tf 0 g"),
	})
	require.NoError(t, a.SetKey(a.Catalog(), "AcroForm", graph.Ref(f.acroForm)))
	return f
}

func rectArray(r Rect) types.Array {
	return types.Array{types.Float(r.X0), types.Float(r.Y0), types.Float(r.X1), types.Float(r.Y1)}
}

// appearance returns an AP dictionary with on and Off states in /N and /D
func (f *formFixture) appearance(onState string) types.Dict {
	stream := func() types.IndirectRef {
		return graph.Ref(f.arena.Add(types.Dict{"Type": types.Name("XObject"), "Subtype": types.Name("Form")}))
	}
	return types.Dict{
		"N": types.Dict{onState: stream(), OffState: stream()},
		"D": types.Dict{onState: stream(), OffState: stream()},
	}
}

// addWidget stores a widget, links it to its page and, when listed is true,
// appends it to the Fields array
func (f *formFixture) addWidget(page int, d types.Dict, listed bool) int {
	d["Type"] = types.Name("Annot")
	d["Subtype"] = types.Name("Widget")
	d["P"] = graph.Ref(f.pages[page])
	id := f.arena.Add(d)

	_, annots := f.a.GetKey(f.pages[page], "Annots")
	require.NoError(f.t, f.a.SetKey(f.pages[page], "Annots", append(annots.(types.Array), graph.Ref(id))))
	if listed {
		f.appendField(id)
	}
	return id
}

func (f *formFixture) appendField(id int) {
	_, fields := f.a.GetKey(f.acroForm, "Fields")
	require.NoError(f.t, f.a.SetKey(f.acroForm, "Fields", append(fields.(types.Array), graph.Ref(id))))
}

func (f *formFixture) addRadio(page int, name string, rect Rect, onState string) int {
	return f.addWidget(page, types.Dict{
		"FT":   types.Name("Btn"),
		"Ff":   types.Integer(FlagRadio | FlagNoToggleToOff),
		"T":    types.StringLiteral(name),
		"Rect": rectArray(rect),
		"AS":   types.Name(OffState),
		"V":    types.Name(OffState),
		"DA":   types.StringLiteral("/ZaDb 0 Tf 0 g"),
		"AP":   f.appearance(onState),
	}, true)
}

func (f *formFixture) addCheckbox(page int, name string, rect Rect) int {
	return f.addWidget(page, types.Dict{
		"FT":   types.Name("Btn"),
		"T":    types.StringLiteral(name),
		"Rect": rectArray(rect),
		"AS":   types.Name(OffState),
		"AP":   f.appearance("Yes"),
	}, true)
}

func (f *formFixture) addText(page int, name string, rect Rect) int {
	return f.addWidget(page, types.Dict{
		"FT":     types.Name("Tx"),
		"T":      types.StringLiteral(name),
		"Rect":   rectArray(rect),
		"Border": types.Array{types.Integer(0), types.Integer(0), types.Integer(1)},
	}, true)
}

func (f *formFixture) fields() []int {
	_, obj := f.a.GetKey(f.acroForm, "Fields")
	arr, _, ok := f.a.ResolveArray(obj)
	require.True(f.t, ok)
	ids := make([]int, 0, len(arr))
	for _, entry := range arr {
		id, ok := graph.RefID(entry)
		require.True(f.t, ok)
		ids = append(ids, id)
	}
	return ids
}

func (f *formFixture) dict(id int) types.Dict {
	d, ok := f.a.Dict(id)
	require.True(f.t, ok, "object %d is not a dictionary", id)
	return d
}

func (f *formFixture) kids(parentID int) []int {
	arr, _, ok := f.a.ResolveArray(f.dict(parentID)["Kids"])
	require.True(f.t, ok)
	ids := make([]int, 0, len(arr))
	for _, entry := range arr {
		id, _ := graph.RefID(entry)
		ids = append(ids, id)
	}
	return ids
}

func (f *formFixture) consolidate(records []UpdateRecord) *Report {
	report, err := NewConsolidator(f.a, false).Consolidate(records)
	require.NoError(f.t, err)
	return report
}

var (
	rectLeft  = Rect{X0: 100, Y0: 700, X1: 112, Y1: 712}
	rectRight = Rect{X0: 160, Y0: 700, X1: 172, Y1: 712}
	rectBoth  = Rect{X0: 220, Y0: 700, X1: 232, Y1: 712}
)

func injuryRecords() []UpdateRecord {
	return []UpdateRecord{
		{FieldName: "injury_question1", ExportLabel: "LEFT", PageIndex: 0, Rect: rectLeft, Order: 0},
		{FieldName: "injury_question1", ExportLabel: "RIGHT", PageIndex: 0, Rect: rectRight, Order: 1},
		{FieldName: "injury_question1", ExportLabel: "BOTH", PageIndex: 0, Rect: rectBoth, Order: 2},
	}
}
