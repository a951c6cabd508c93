package spec

import (
	"fmt"
	"time"
)

// IndexKind discriminates the closed set of index variants.
type IndexKind string

const (
	IndexDateRange IndexKind = "date_range"
	IndexList      IndexKind = "list"
)

// DateLayout is the canonical textual form of a date-range index member.
const DateLayout = "2006-01-02"

// Index is a named domain of values that decision structures range over.
// It is either an inclusive daily date range or a literal ordered list.
type Index struct {
	Kind IndexKind

	// DateRange fields.
	Start time.Time
	End   time.Time

	// List fields.
	Values []string
}

// NewDateRangeIndex builds a date-range index. The range is inclusive on
// both ends and must satisfy start <= end.
func NewDateRangeIndex(start, end time.Time) (*Index, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("date range start %s is after end %s",
			start.Format(DateLayout), end.Format(DateLayout))
	}
	return &Index{Kind: IndexDateRange, Start: start, End: end}, nil
}

// NewListIndex builds a list index from a non-empty ordered value sequence.
func NewListIndex(values []string) (*Index, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("list index requires at least one value")
	}
	vs := make([]string, len(values))
	copy(vs, values)
	return &Index{Kind: IndexList, Values: vs}, nil
}

// Members expands the index into its concrete ordered member sequence: one
// formatted date per day for a date range, the literal values for a list.
func (ix *Index) Members() []string {
	switch ix.Kind {
	case IndexDateRange:
		var members []string
		for d := ix.Start; !d.After(ix.End); d = d.AddDate(0, 0, 1) {
			members = append(members, d.Format(DateLayout))
		}
		return members
	case IndexList:
		members := make([]string, len(ix.Values))
		copy(members, ix.Values)
		return members
	default:
		panic(fmt.Sprintf("unhandled index kind %q", ix.Kind))
	}
}

// Len reports the member count without materializing the sequence.
func (ix *Index) Len() int {
	switch ix.Kind {
	case IndexDateRange:
		return int(ix.End.Sub(ix.Start).Hours()/24) + 1
	case IndexList:
		return len(ix.Values)
	default:
		panic(fmt.Sprintf("unhandled index kind %q", ix.Kind))
	}
}
