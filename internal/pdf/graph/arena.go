package graph

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Arena is an in-memory object table. It backs tests and callers that build
// a form tree without a file on disk.
type Arena struct {
	objects map[int]types.Object
	root    int
	pages   []int
	next    int
}

// NewArena creates an empty arena whose catalog is object 1
func NewArena() *Arena {
	a := &Arena{
		objects: make(map[int]types.Object),
		root:    1,
		next:    2,
	}
	a.objects[1] = types.Dict{"Type": types.Name("Catalog")}
	return a
}

// RootID returns the catalog object number
func (a *Arena) RootID() int {
	return a.root
}

// Lookup returns the object stored under id
func (a *Arena) Lookup(id int) (types.Object, bool) {
	obj, ok := a.objects[id]
	return obj, ok
}

// Put replaces the object stored under an existing id
func (a *Arena) Put(id int, obj types.Object) error {
	if _, ok := a.objects[id]; !ok {
		return fmt.Errorf("object %d not allocated", id)
	}
	a.objects[id] = obj
	return nil
}

// Allocate reserves a new object number
func (a *Arena) Allocate() (int, error) {
	id := a.next
	a.next++
	a.objects[id] = nil
	return id, nil
}

// PageIDs returns the page object numbers in insertion order
func (a *Arena) PageIDs() ([]int, error) {
	return append([]int(nil), a.pages...), nil
}

// Add stores obj under a new object number and returns it
func (a *Arena) Add(obj types.Object) int {
	id, _ := a.Allocate()
	a.objects[id] = obj
	return id
}

// AddPage stores a page dictionary and appends it to the page list
func (a *Arena) AddPage(page types.Dict) int {
	if page == nil {
		page = types.Dict{}
	}
	if _, ok := page["Type"]; !ok {
		page["Type"] = types.Name("Page")
	}
	id := a.Add(page)
	a.pages = append(a.pages, id)
	return id
}

// Len returns the number of allocated objects including the catalog
func (a *Arena) Len() int {
	return len(a.objects)
}
