package filter

// StringMatch is one optional string criterion: unset, exact equality, or a
// pattern anchored at the start of the field
// The zero value is unset
type StringMatch struct {
	kind  matchKind
	value string
}

type matchKind uint8

const (
	matchUnset matchKind = iota
	matchExact
	matchPattern
)

// Any leaves the field unconstrained
func Any() StringMatch { return StringMatch{} }

// Exact matches the field by equality; an empty value is unset
func Exact(s string) StringMatch {
	if s == "" {
		return StringMatch{}
	}
	return StringMatch{kind: matchExact, value: s}
}

// Pattern matches when expr matches at the start of the field; an empty expr is unset
func Pattern(expr string) StringMatch {
	if expr == "" {
		return StringMatch{}
	}
	return StringMatch{kind: matchPattern, value: expr}
}

// IsSet reports whether the criterion constrains anything
func (m StringMatch) IsSet() bool { return m.kind != matchUnset }

// String renders the criterion for logs
func (m StringMatch) String() string {
	switch m.kind {
	case matchExact:
		return "=" + m.value
	case matchPattern:
		return "~" + m.value
	}
	return "*"
}

// Range bounds view_count inclusively; nil ends are open
type Range struct {
	Min *int64
	Max *int64
}

// Between is a closed range
func Between(lo, hi int64) Range { return Range{Min: &lo, Max: &hi} }

// AtLeast has only a lower bound
func AtLeast(lo int64) Range { return Range{Min: &lo} }

// AtMost has only an upper bound
func AtMost(hi int64) Range { return Range{Max: &hi} }

// IsSet reports whether either bound is present
func (r Range) IsSet() bool { return r.Min != nil || r.Max != nil }

// Contains reports whether n lies within the set bounds
func (r Range) Contains(n int64) bool {
	if r.Min != nil && n < *r.Min {
		return false
	}
	if r.Max != nil && n > *r.Max {
		return false
	}
	return true
}

// BoolMatch is an optional boolean equality; the zero value is unset
type BoolMatch struct {
	set  bool
	want bool
}

// Is requires the flag to equal b
func Is(b bool) BoolMatch { return BoolMatch{set: true, want: b} }

// IsSet reports whether the flag is constrained
func (b BoolMatch) IsSet() bool { return b.set }

// Want returns the required value; meaningful only when IsSet
func (b BoolMatch) Want() bool { return b.want }

// LineCriteria are checks on raw text before decoding
// Empty strings and a nil Custom are unset
type LineCriteria struct {
	Prefix   string
	Contains string
	Regex    string
	Custom   func(line string) bool
}

// IsZero reports whether no line criterion is set
func (c LineCriteria) IsZero() bool {
	return c.Prefix == "" && c.Contains == "" && c.Regex == "" && c.Custom == nil
}

// RecordCriteria are checks on decoded records
type RecordCriteria struct {
	DomainCode    StringMatch
	PageTitle     StringMatch
	Language      StringMatch
	ProjectDomain StringMatch
	Views         Range
	Mobile        BoolMatch
}

// IsZero reports whether no record criterion is set
func (c RecordCriteria) IsZero() bool {
	return !c.DomainCode.IsSet() && !c.PageTitle.IsSet() && !c.Language.IsSet() &&
		!c.ProjectDomain.IsSet() && !c.Views.IsSet() && !c.Mobile.IsSet()
}
