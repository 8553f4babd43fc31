package entry

import "strings"

// MatchingRule compares two normalized values for equality. When a syntax
// has no equality rule, byte-exact comparison of the normalized forms is
// used (see AttributeDescription.Matches below in value comparisons).
type MatchingRule func(a, b string) bool

// ExactMatch is the default matching rule: byte-exact comparison.
func ExactMatch(a, b string) bool { return a == b }

// AttributeDescription is a schema-resolved pointer into the schema
// registry. The schema registry itself is an external collaborator; this
// struct only carries what the value/modify engines need from it.
type AttributeDescription struct {
	Name string // e.g. "cn", "objectClass"

	// SingleValue reports whether the attribute's syntax restricts it to
	// at most one value.
	SingleValue bool

	// IntegerSyntax reports whether values are required to parse as
	// integers (required for INCREMENT).
	IntegerSyntax bool

	// Equality is the matching rule used to compare values for this
	// attribute. Nil means "no equality rule" -> byte-exact comparison.
	Equality MatchingRule

	// Operational reports whether this is a server-managed attribute that
	// clients may never write directly.
	Operational bool
}

// Equal compares two descriptors by normalized name.
func (d *AttributeDescription) Equal(other *AttributeDescription) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	return strings.EqualFold(d.Name, other.Name)
}

// Matches reports whether a and b are equal under d's matching rule.
func (d *AttributeDescription) Matches(a, b string) bool {
	if d.Equality != nil {
		return d.Equality(a, b)
	}
	return ExactMatch(a, b)
}

// Well-known operational and structural descriptors used throughout the
// pipeline. Real deployments resolve these from the schema registry; the
// core only needs stable pointers to compare against.
var (
	ObjectClass             = &AttributeDescription{Name: "objectClass"}
	StructuralObjectClass   = &AttributeDescription{Name: "structuralObjectClass"}
	ModifiersName           = &AttributeDescription{Name: "modifiersName", SingleValue: true, Operational: true}
	ModifyTimestamp         = &AttributeDescription{Name: "modifyTimestamp", SingleValue: true, Operational: true}
	CreatorsName            = &AttributeDescription{Name: "creatorsName", SingleValue: true, Operational: true}
	CreateTimestamp         = &AttributeDescription{Name: "createTimestamp", SingleValue: true, Operational: true}
)

// operationalNames lists the four attributes a client can never write
// directly, keyed by case-folded name for §4.4's removal pass.
var operationalNames = map[string]bool{
	"modifytimestamp": true,
	"modifiersname":   true,
	"createtimestamp": true,
	"creatorsname":    true,
}

// IsOperational reports whether desc names one of the four server-managed
// operational attributes (case-insensitive).
func IsOperational(desc *AttributeDescription) bool {
	if desc.Operational {
		return true
	}
	return operationalNames[strings.ToLower(desc.Name)]
}

// IndexFlag is scratch state the modify engine stamps onto an Attribute for
// the duration of a single Apply call, recording which index passes are
// owed once schema validation succeeds. It is touched only by the thread
// that owns the working entry clone and needs no locking (§5).
type IndexFlag uint8

const (
	IndexNone IndexFlag = 0
	IndexDel  IndexFlag = 1 << 0
	IndexAdd  IndexFlag = 1 << 1
)

// Attribute pairs an AttributeDescription with parallel presentation and
// normalized value lists.
type Attribute struct {
	Desc    *AttributeDescription
	Values  []string // presentation form
	NValues []string // normalized form, same length/order as Values

	// indexFlag is operation-scoped scratch state; see IndexFlag.
	indexFlag IndexFlag
}

// Clone duplicates the Attribute container; the underlying value slices are
// copied shallowly (new backing arrays, same string contents) so that
// mutating the clone's Values never touches the original's.
func (a *Attribute) Clone() *Attribute {
	clone := &Attribute{Desc: a.Desc}
	if a.Values != nil {
		clone.Values = append([]string(nil), a.Values...)
	}
	if a.NValues != nil {
		clone.NValues = append([]string(nil), a.NValues...)
	}
	return clone
}

// Len returns the number of values held.
func (a *Attribute) Len() int { return len(a.Values) }

// IndexOf returns the position of a normalized value, or -1.
func (a *Attribute) IndexOf(desc *AttributeDescription, nval string) int {
	for i, v := range a.NValues {
		if desc.Matches(v, nval) {
			return i
		}
	}
	return -1
}

// RemoveAt deletes the value pair at position i.
func (a *Attribute) RemoveAt(i int) {
	a.Values = append(a.Values[:i], a.Values[i+1:]...)
	a.NValues = append(a.NValues[:i], a.NValues[i+1:]...)
}

// Append adds a value pair.
func (a *Attribute) Append(value, nvalue string) {
	a.Values = append(a.Values, value)
	a.NValues = append(a.NValues, nvalue)
}

// SetIndexFlag ORs flag into the attribute's scratch index state.
func (a *Attribute) SetIndexFlag(flag IndexFlag) { a.indexFlag |= flag }

// IndexFlags returns the current scratch index state.
func (a *Attribute) IndexFlags() IndexFlag { return a.indexFlag }

// ClearIndexFlag resets the attribute's scratch index state to IndexNone.
func (a *Attribute) ClearIndexFlag() { a.indexFlag = IndexNone }
