package forms

import (
	"fmt"
	"sort"
)

// MatchSource records which rule resolved a widget to its update record
type MatchSource int

const (
	// MatchExact: same field name bucket, same page, rectangle within tolerance.
	MatchExact MatchSource = iota
	// MatchCrossBucket: another field name bucket, same page and rectangle.
	MatchCrossBucket
	// MatchPool: a record without field name, by page and rectangle.
	MatchPool
	// MatchBucketOrder: earliest record of the widget's own bucket, geometry ignored.
	MatchBucketOrder
	// MatchPoolOrder: earliest unnamed record, geometry ignored.
	MatchPoolOrder
	// MatchSynthetic: nothing matched; a one-member record was fabricated.
	MatchSynthetic
)

// String returns a string representation of the MatchSource
func (s MatchSource) String() string {
	switch s {
	case MatchExact:
		return "exact"
	case MatchCrossBucket:
		return "cross_bucket"
	case MatchPool:
		return "pool"
	case MatchBucketOrder:
		return "bucket_order"
	case MatchPoolOrder:
		return "pool_order"
	default:
		return "synthetic"
	}
}

// Match is the result of re-associating one widget
type Match struct {
	Record UpdateRecord
	// Field is the resolved group name the widget belongs to.
	Field  string
	Source MatchSource
}

// Matcher re-links widgets read from a reopened document to the update
// records emitted while drawing. Object numbers do not survive a save and
// reload, so the link is made on field name, page and rectangle. Every
// record is handed out at most once.
type Matcher struct {
	buckets   map[string][]UpdateRecord
	names     []string
	pool      []UpdateRecord
	tolerance float64
}

// NewMatcher buckets records by field name. Records within a bucket, and the
// unnamed pool, are ordered by their Order value.
func NewMatcher(records []UpdateRecord) *Matcher {
	m := &Matcher{
		buckets:   make(map[string][]UpdateRecord),
		tolerance: RectTolerance,
	}
	for _, rec := range records {
		if rec.FieldName == "" {
			m.pool = append(m.pool, rec)
			continue
		}
		if _, ok := m.buckets[rec.FieldName]; !ok {
			m.names = append(m.names, rec.FieldName)
		}
		m.buckets[rec.FieldName] = append(m.buckets[rec.FieldName], rec)
	}
	for _, name := range m.names {
		bucket := m.buckets[name]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Order < bucket[j].Order })
	}
	sort.SliceStable(m.pool, func(i, j int) bool { return m.pool[i].Order < m.pool[j].Order })
	return m
}

// Remaining returns how many records have not been handed out yet
func (m *Matcher) Remaining() int {
	n := len(m.pool)
	for _, bucket := range m.buckets {
		n += len(bucket)
	}
	return n
}

// MatchGeometric tries the rectangle based rules only and reports whether one
// of them matched
func (m *Matcher) MatchGeometric(w WidgetHandle) (Match, bool) {
	name := w.FieldName

	if rec, ok := m.popByRect(name, w); ok {
		return Match{Record: rec, Field: name, Source: MatchExact}, true
	}

	for _, candidate := range m.names {
		if candidate == name {
			continue
		}
		if rec, ok := m.popByRect(candidate, w); ok {
			return Match{Record: rec, Field: candidate, Source: MatchCrossBucket}, true
		}
	}

	if i := m.findByRect(m.pool, w); i >= 0 {
		rec := m.pool[i]
		m.pool = append(m.pool[:i], m.pool[i+1:]...)
		return Match{Record: rec, Field: resolvedName(w, rec), Source: MatchPool}, true
	}

	return Match{}, false
}

// Match resolves w to an update record, falling back through the ordered
// rules and finally fabricating a one-member record named after the widget.
func (m *Matcher) Match(w WidgetHandle) Match {
	if match, ok := m.MatchGeometric(w); ok {
		return match
	}

	name := w.FieldName
	if bucket := m.buckets[name]; name != "" && len(bucket) > 0 {
		rec := bucket[0]
		m.buckets[name] = bucket[1:]
		return Match{Record: rec, Field: name, Source: MatchBucketOrder}
	}

	if len(m.pool) > 0 {
		rec := m.pool[0]
		m.pool = m.pool[1:]
		return Match{Record: rec, Field: resolvedName(w, rec), Source: MatchPoolOrder}
	}

	rec := UpdateRecord{
		FieldName: resolvedName(w, UpdateRecord{}),
		PageIndex: w.PageIndex,
		Rect:      w.Rect,
	}
	return Match{Record: rec, Field: rec.FieldName, Source: MatchSynthetic}
}

func (m *Matcher) popByRect(name string, w WidgetHandle) (UpdateRecord, bool) {
	bucket := m.buckets[name]
	i := m.findByRect(bucket, w)
	if i < 0 {
		return UpdateRecord{}, false
	}
	rec := bucket[i]
	m.buckets[name] = append(bucket[:i], bucket[i+1:]...)
	return rec, true
}

func (m *Matcher) findByRect(records []UpdateRecord, w WidgetHandle) int {
	for i, rec := range records {
		if rec.Rect.IsZero() || !rec.onPage(w.PageIndex) {
			continue
		}
		if rec.Rect.Close(w.Rect, m.tolerance) {
			return i
		}
	}
	return -1
}

// resolvedName prefers the widget's own name, then the record's, then a name
// derived from the object number
func resolvedName(w WidgetHandle, rec UpdateRecord) string {
	switch {
	case w.FieldName != "":
		return w.FieldName
	case rec.FieldName != "":
		return rec.FieldName
	default:
		return fmt.Sprintf("field_%d", w.ObjectID)
	}
}
