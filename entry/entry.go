// Package entry implements the directory data model: entries, attributes,
// values and the modification list applied to them by the Modify pipeline.
package entry

// OCFlags caches derived objectClass information for an Entry. It must be
// invalidated (zeroed) whenever objectClass or structuralObjectClass changes.
type OCFlags uint64

// Entry is a persistent record identified by a stable numeric ID and two
// name forms: a presentation DN and a normalized DN used for lookup.
type Entry struct {
	ID  uint64
	DN  string
	NDN string

	Attrs []*Attribute

	// OCFlags caches derived objectClass information; cleared by the modify
	// engine whenever objectClass or structuralObjectClass is touched.
	OCFlags OCFlags
}

// Clone returns a shallow clone of e: a new Entry with a freshly allocated
// Attrs slice whose Attribute containers and value slices are duplicated,
// while the value strings themselves are shared with the original. This mirrors attrs_dup in the source system
// and is what the modify engine mutates instead of the caller's Entry.
func (e *Entry) Clone() *Entry {
	clone := &Entry{
		ID:      e.ID,
		DN:      e.DN,
		NDN:     e.NDN,
		OCFlags: e.OCFlags,
		Attrs:   make([]*Attribute, len(e.Attrs)),
	}
	for i, a := range e.Attrs {
		clone.Attrs[i] = a.Clone()
	}
	return clone
}

// Find returns the attribute matching desc, or nil if absent.
func (e *Entry) Find(desc *AttributeDescription) *Attribute {
	for _, a := range e.Attrs {
		if a.Desc.Equal(desc) {
			return a
		}
	}
	return nil
}

// Remove deletes the attribute matching desc entirely. Reports whether an
// attribute was actually removed.
func (e *Entry) Remove(desc *AttributeDescription) bool {
	for i, a := range e.Attrs {
		if a.Desc.Equal(desc) {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Upsert appends attr if no attribute with the same descriptor exists,
// otherwise it is a no-op (callers mutate the found attribute in place).
func (e *Entry) Upsert(attr *Attribute) {
	if e.Find(attr.Desc) == nil {
		e.Attrs = append(e.Attrs, attr)
	}
}

// HasObjectClass reports whether the entry's objectClass attribute contains
// exactly the given single normalized value (used for glue-entry detection).
func (e *Entry) HasObjectClass(ocNormalized string) bool {
	oc := e.Find(ObjectClass)
	if oc == nil || len(oc.NValues) != 1 {
		return false
	}
	return oc.NValues[0] == ocNormalized
}

// StripNonOperational removes every attribute that is not one of the four
// server-managed operational attributes. Used during glue promotion.
func (e *Entry) StripNonOperational() {
	kept := e.Attrs[:0:0]
	for _, a := range e.Attrs {
		if IsOperational(a.Desc) {
			kept = append(kept, a)
		}
	}
	e.Attrs = kept
}
