// Package refarray parses and formats arrays of indirect object references,
// such as an AcroForm field list.
package refarray

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var refPattern = regexp.MustCompile(`(\d+)\s+(\d+)\s+R`)

// Ref is one "N G R" token
type Ref struct {
	Num int
	Gen int
}

// String formats the reference as PDF syntax
func (r Ref) String() string {
	return fmt.Sprintf("%d %d R", r.Num, r.Gen)
}

// Indirect converts the reference to a pdfcpu object
func (r Ref) Indirect() types.IndirectRef {
	return *types.NewIndirectRef(r.Num, r.Gen)
}

// Parse extracts the ordered sequence of references from array text. Anything
// that is not a reference token is ignored.
func Parse(text string) []Ref {
	matches := refPattern.FindAllStringSubmatch(text, -1)
	refs := make([]Ref, 0, len(matches))
	for _, m := range matches {
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		gen, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		refs = append(refs, Ref{Num: num, Gen: gen})
	}
	return refs
}

// Format writes refs as array text. An empty sequence formats as "[]".
func Format(refs []Ref) string {
	if len(refs) == 0 {
		return "[]"
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FromArray returns the indirect references held directly by arr, in order.
// Other elements are skipped and references nested inside them are not
// followed.
func FromArray(arr types.Array) []Ref {
	refs := make([]Ref, 0, len(arr))
	for _, e := range arr {
		switch r := e.(type) {
		case types.IndirectRef:
			refs = append(refs, Ref{Num: r.ObjectNumber.Value(), Gen: r.GenerationNumber.Value()})
		case *types.IndirectRef:
			if r != nil {
				refs = append(refs, Ref{Num: r.ObjectNumber.Value(), Gen: r.GenerationNumber.Value()})
			}
		}
	}
	return refs
}

// Others returns the elements of arr that FromArray skips
func Others(arr types.Array) types.Array {
	var others types.Array
	for _, e := range arr {
		switch e.(type) {
		case types.IndirectRef, *types.IndirectRef:
			continue
		}
		others = append(others, e)
	}
	return others
}

// ToArray builds a pdfcpu array holding refs in order
func ToArray(refs []Ref) types.Array {
	arr := make(types.Array, len(refs))
	for i, r := range refs {
		arr[i] = r.Indirect()
	}
	return arr
}

// Index returns the position of the first element of refs that is in set, or
// -1 when none is.
func Index(refs []Ref, set map[Ref]bool) int {
	for i, r := range refs {
		if set[r] {
			return i
		}
	}
	return -1
}

// Remove returns refs without the elements in set, keeping relative order
func Remove(refs []Ref, set map[Ref]bool) []Ref {
	kept := make([]Ref, 0, len(refs))
	for _, r := range refs {
		if !set[r] {
			kept = append(kept, r)
		}
	}
	return kept
}

// Insert returns refs with r placed at index i. Out of range indexes append.
func Insert(refs []Ref, i int, r Ref) []Ref {
	if i < 0 || i >= len(refs) {
		return append(refs, r)
	}
	refs = append(refs, Ref{})
	copy(refs[i+1:], refs[i:])
	refs[i] = r
	return refs
}

// Splice removes every element of set from refs and inserts r where the
// earliest removed element stood, or at the end when none was present.
func Splice(refs []Ref, set map[Ref]bool, r Ref) []Ref {
	at := Index(refs, set)
	kept := Remove(refs, set)
	if at < 0 {
		return append(kept, r)
	}
	return Insert(kept, at, r)
}
