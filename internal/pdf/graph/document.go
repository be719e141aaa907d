package graph

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document is a Store backed by a pdfcpu context read from a PDF file
type Document struct {
	ctx *model.Context
}

// OpenFile reads a PDF file into a Document
func OpenFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	return Open(file)
}

// Open reads a PDF from a seekable reader into a Document
func Open(rs io.ReadSeeker) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return &Document{ctx: ctx}, nil
}

// Context exposes the underlying pdfcpu context
func (d *Document) Context() *model.Context {
	return d.ctx
}

// RootID returns the catalog object number
func (d *Document) RootID() int {
	if d.ctx.Root == nil {
		return 0
	}
	return int(d.ctx.Root.ObjectNumber)
}

// Lookup returns the object stored under id
func (d *Document) Lookup(id int) (types.Object, bool) {
	entry, ok := d.ctx.FindTableEntryLight(id)
	if !ok || entry == nil || entry.Free {
		return nil, false
	}
	if _, lazy := entry.Object.(types.LazyObjectStreamObject); !lazy && entry.Object != nil {
		return entry.Object, true
	}

	// Objects read from an object stream are decoded on first access.
	// Dereference stores the decoded object back into the xref entry so
	// later edits through Put and SetKey are what gets written.
	gen := 0
	if entry.Generation != nil {
		gen = *entry.Generation
	}
	obj, err := d.ctx.Dereference(*types.NewIndirectRef(id, gen))
	if err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// Put replaces the object stored under an existing id
func (d *Document) Put(id int, obj types.Object) error {
	entry, ok := d.ctx.FindTableEntryLight(id)
	if !ok || entry == nil {
		return fmt.Errorf("object %d not found in xref table", id)
	}
	entry.Object = obj
	return nil
}

// Allocate reserves a new object number
func (d *Document) Allocate() (int, error) {
	ref, err := d.ctx.IndRefForNewObject(types.Dict{})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate object: %w", err)
	}
	return int(ref.ObjectNumber), nil
}

// PageIDs returns the page object numbers in document order
func (d *Document) PageIDs() ([]int, error) {
	ids := make([]int, 0, d.ctx.PageCount)
	for pageNr := 1; pageNr <= d.ctx.PageCount; pageNr++ {
		_, ref, _, err := d.ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
		}
		if ref == nil {
			return nil, fmt.Errorf("page %d has no object reference", pageNr)
		}
		ids = append(ids, int(ref.ObjectNumber))
	}
	return ids, nil
}

// Write serializes the document
func (d *Document) Write(w io.Writer) error {
	if err := api.WriteContext(d.ctx, w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// SaveFile serializes the document to path
func (d *Document) SaveFile(path string) error {
	if err := api.WriteContextFile(d.ctx, path); err != nil {
		return fmt.Errorf("failed to write PDF file: %w", err)
	}
	return nil
}
