package graph

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/pdftest"
)

func TestDocument_ReadWriteRoundTrip(t *testing.T) {
	doc, err := Open(bytes.NewReader(pdftest.Build(pdftest.InjuryQuestion)))
	require.NoError(t, err)
	a := New(doc)

	pages, err := a.PageIDs()
	require.NoError(t, err)
	require.Len(t, pages, 1)

	kind, acroForm := a.GetKey(a.Catalog(), "AcroForm")
	require.Equal(t, KindDict, kind)
	fields, _, ok := a.ResolveArray(acroForm.(types.Dict)["Fields"])
	require.True(t, ok)
	assert.Len(t, fields, len(pdftest.InjuryQuestion))

	acroFormID, err := a.Promote(a.Catalog(), "AcroForm")
	require.NoError(t, err)
	marker, err := a.NewObject(types.Dict{"Marker": types.Boolean(true)})
	require.NoError(t, err)
	require.NoError(t, a.SetKey(acroFormID, "NeedAppearances", types.Boolean(true)))
	require.NoError(t, a.SetKey(acroFormID, "Marker", Ref(marker)))

	path := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, doc.SaveFile(path))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	b := New(reopened)

	kind, ref := b.GetKey(b.Catalog(), "AcroForm")
	require.Equal(t, KindRef, kind)
	id, _ := RefID(ref)
	kind, value := b.GetKey(id, "NeedAppearances")
	assert.Equal(t, KindBool, kind)
	assert.Equal(t, types.Boolean(true), value)

	_, markerRef := b.GetKey(id, "Marker")
	d, _, ok := b.ResolveDict(markerRef)
	require.True(t, ok)
	assert.Equal(t, types.Boolean(true), d["Marker"])
}

func TestDocument_CompressedObjects(t *testing.T) {
	doc, err := Open(bytes.NewReader(pdftest.Build(pdftest.InjuryQuestion)))
	require.NoError(t, err)
	first := filepath.Join(t.TempDir(), "first.pdf")
	require.NoError(t, doc.SaveFile(first))

	reopened, err := OpenFile(first)
	require.NoError(t, err)
	a := New(reopened)

	_, acroForm := a.GetKey(a.Catalog(), "AcroForm")
	form, _, ok := a.ResolveDict(acroForm)
	require.True(t, ok)
	fields, _, ok := a.ResolveArray(form["Fields"])
	require.True(t, ok)
	require.Len(t, fields, len(pdftest.InjuryQuestion))

	id, ok := RefID(fields[0])
	require.True(t, ok)
	entry, found := reopened.Context().FindTableEntryLight(id)
	require.True(t, found)
	require.True(t, entry.Compressed, "widget %d should live in an object stream", id)

	kind, name := a.GetKey(id, "T")
	require.Equal(t, KindString, kind)
	assert.Equal(t, "injury_question1", name.(types.StringLiteral).Value())
	kind, _ = a.GetKey(id, "Rect")
	assert.Equal(t, KindArray, kind)

	require.NoError(t, a.SetKey(id, "TU", types.StringLiteral("edited")))
	_, tooltip := a.GetKey(id, "TU")
	assert.Equal(t, types.StringLiteral("edited"), tooltip)

	second := filepath.Join(t.TempDir(), "second.pdf")
	require.NoError(t, reopened.SaveFile(second))

	again, err := OpenFile(second)
	require.NoError(t, err)
	b := New(again)
	kind, tooltip = b.GetKey(id, "TU")
	require.Equal(t, KindString, kind)
	assert.Equal(t, types.StringLiteral("edited"), tooltip)
}

func TestDocument_OpenInvalid(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("not a pdf")))
	assert.Error(t, err)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
