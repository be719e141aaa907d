// Package graph gives key level access to the indirect objects of a PDF document.
//
// Objects are addressed by object number. Edges between objects are plain
// indirect references, never Go pointers, so parent/child cycles in the form
// tree are represented as ids on both sides.
package graph

import (
	"fmt"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Kind classifies the value stored under a dictionary key
type Kind int

const (
	KindAbsent Kind = iota
	KindDict
	KindRef
	KindString
	KindArray
	KindName
	KindNumber
	KindBool
	KindStream
	KindOther
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindDict:
		return "dict"
	case KindRef:
		return "xref"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindName:
		return "name"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStream:
		return "stream"
	default:
		return "other"
	}
}

// KindOf classifies a pdfcpu object
func KindOf(obj types.Object) Kind {
	switch obj.(type) {
	case nil:
		return KindAbsent
	case types.Dict:
		return KindDict
	case types.IndirectRef, *types.IndirectRef:
		return KindRef
	case types.StringLiteral, types.HexLiteral:
		return KindString
	case types.Array:
		return KindArray
	case types.Name:
		return KindName
	case types.Integer, types.Float:
		return KindNumber
	case types.Boolean:
		return KindBool
	case types.StreamDict:
		return KindStream
	default:
		return KindOther
	}
}

// Store is the minimal object table a document backend has to provide
type Store interface {
	// RootID returns the object number of the document catalog.
	RootID() int
	// Lookup returns the object stored under id.
	Lookup(id int) (types.Object, bool)
	// Put replaces the object stored under an existing id.
	Put(id int, obj types.Object) error
	// Allocate reserves a new object number.
	Allocate() (int, error)
	// PageIDs returns the object numbers of all pages in document order.
	PageIDs() ([]int, error)
}

// Accessor provides get/set of dictionary keys on top of a Store
type Accessor struct {
	store Store
}

// New creates an accessor over the given store
func New(store Store) *Accessor {
	return &Accessor{store: store}
}

// Catalog returns the object number of the document catalog
func (a *Accessor) Catalog() int {
	return a.store.RootID()
}

// PageIDs returns the page object numbers in document order
func (a *Accessor) PageIDs() ([]int, error) {
	return a.store.PageIDs()
}

// Object returns the raw object stored under id
func (a *Accessor) Object(id int) (types.Object, bool) {
	return a.store.Lookup(id)
}

// Dict returns the dictionary stored under id. Stream objects yield their
// stream dictionary.
func (a *Accessor) Dict(id int) (types.Dict, bool) {
	obj, ok := a.store.Lookup(id)
	if !ok {
		return nil, false
	}
	switch o := obj.(type) {
	case types.Dict:
		return o, true
	case types.StreamDict:
		return o.Dict, true
	}
	return nil, false
}

// GetKey returns the kind and raw value stored under key in object id
func (a *Accessor) GetKey(id int, key string) (Kind, types.Object) {
	d, ok := a.Dict(id)
	if !ok {
		return KindAbsent, nil
	}
	v, found := d[key]
	if !found || v == nil {
		return KindAbsent, nil
	}
	return KindOf(v), v
}

// SetKey stores value under key in object id
func (a *Accessor) SetKey(id int, key string, value types.Object) error {
	d, ok := a.Dict(id)
	if !ok {
		return unresolved(id, fmt.Sprintf("set /%s", key))
	}
	if value == nil {
		delete(d, key)
		return nil
	}
	d[key] = value
	return nil
}

// ClearKey removes key from object id. Removing an absent key is not an error.
func (a *Accessor) ClearKey(id int, key string) error {
	return a.SetKey(id, key, nil)
}

// NewObjectID allocates a fresh object number
func (a *Accessor) NewObjectID() (int, error) {
	id, err := a.store.Allocate()
	if err != nil {
		return 0, formerrors.WrapError(formerrors.ErrorTypeStorage, "allocate object", err)
	}
	return id, nil
}

// WriteObject replaces the object stored under id
func (a *Accessor) WriteObject(id int, obj types.Object) error {
	if err := a.store.Put(id, obj); err != nil {
		return formerrors.WrapError(formerrors.ErrorTypeStorage, "write object", err).WithObject(id)
	}
	return nil
}

// NewObject allocates an object number and stores obj under it
func (a *Accessor) NewObject(obj types.Object) (int, error) {
	id, err := a.NewObjectID()
	if err != nil {
		return 0, err
	}
	if err := a.WriteObject(id, obj); err != nil {
		return 0, err
	}
	return id, nil
}

// Resolve follows one level of indirection. The returned id is zero when obj
// was an inline value.
func (a *Accessor) Resolve(obj types.Object) (types.Object, int) {
	if ref, ok := RefID(obj); ok {
		target, found := a.store.Lookup(ref)
		if !found {
			return nil, ref
		}
		return target, ref
	}
	return obj, 0
}

// ResolveDict follows one level of indirection and expects a dictionary
func (a *Accessor) ResolveDict(obj types.Object) (types.Dict, int, bool) {
	target, id := a.Resolve(obj)
	switch o := target.(type) {
	case types.Dict:
		return o, id, true
	case types.StreamDict:
		return o.Dict, id, true
	}
	return nil, id, false
}

// ResolveArray follows one level of indirection and expects an array
func (a *Accessor) ResolveArray(obj types.Object) (types.Array, int, bool) {
	target, id := a.Resolve(obj)
	arr, ok := target.(types.Array)
	return arr, id, ok
}

// Promote makes sure the dictionary under key in object id lives in its own
// indirect object and returns that object's number. An inline dictionary is
// copied into a new object on first write and key is repointed to it; an
// absent key gets a new empty dictionary.
func (a *Accessor) Promote(id int, key string) (int, error) {
	kind, value := a.GetKey(id, key)
	switch kind {
	case KindRef:
		ref, _ := RefID(value)
		if _, ok := a.Dict(ref); !ok {
			return 0, unresolved(ref, fmt.Sprintf("/%s does not point to a dictionary", key))
		}
		return ref, nil
	case KindDict, KindAbsent:
		inline, _ := value.(types.Dict)
		if inline == nil {
			inline = types.Dict{}
		}
		newID, err := a.NewObject(inline)
		if err != nil {
			return 0, err
		}
		if err := a.SetKey(id, key, Ref(newID)); err != nil {
			return 0, err
		}
		return newID, nil
	default:
		return 0, unresolved(id, fmt.Sprintf("/%s has kind %s, want dict", key, kind))
	}
}

// RefID extracts the object number from an indirect reference
func RefID(obj types.Object) (int, bool) {
	switch r := obj.(type) {
	case types.IndirectRef:
		return int(r.ObjectNumber), true
	case *types.IndirectRef:
		if r == nil {
			return 0, false
		}
		return int(r.ObjectNumber), true
	}
	return 0, false
}

// Ref builds a generation zero reference to id
func Ref(id int) types.IndirectRef {
	return *types.NewIndirectRef(id, 0)
}

func unresolved(id int, context string) error {
	return formerrors.NewFormError(formerrors.ErrorTypeUnresolvedReference, "unexpected object kind").
		WithObject(id).
		WithContext(context)
}
