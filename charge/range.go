package charge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrUnknownSegment is returned when a range references a missing segment.
var ErrUnknownSegment = errors.New("unknown balance segment")

// =============================================================================
// RANGE
// =============================================================================

// Range restricts a charge to bases in [Minimum, Maximum). A nil Maximum
// means unbounded.
type Range struct {
	Minimum decimal.Decimal
	Maximum *decimal.Decimal
}

// AmountIsWithinRange reports whether x ≥ Minimum and, when bounded, x < Maximum.
func (r Range) AmountIsWithinRange(x decimal.Decimal) bool {
	if x.LessThan(r.Minimum) {
		return false
	}
	return r.Maximum == nil || x.LessThan(*r.Maximum)
}

func (r Range) String() string {
	if r.Maximum == nil {
		return fmt.Sprintf("[%s, ∞)", r.Minimum)
	}
	return fmt.Sprintf("[%s, %s)", r.Minimum, r.Maximum)
}

// =============================================================================
// BALANCE SEGMENT SETS
// =============================================================================

// Segment is a named lower bound within a segment set.
type Segment struct {
	Identifier string
	LowerBound decimal.Decimal
}

// SegmentSet partitions balances into consecutive named segments.
type SegmentSet struct {
	Identifier string
	Segments   []Segment
}

// NewSegmentSet returns a set with segments sorted by lower bound.
func NewSegmentSet(identifier string, segments ...Segment) SegmentSet {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LowerBound.LessThan(sorted[j].LowerBound)
	})
	return SegmentSet{Identifier: identifier, Segments: sorted}
}

// Range returns the range spanning from the from segment through the to
// segment. The maximum is the lower bound of the segment following to, and
// absent when to is the last segment.
func (s SegmentSet) Range(from, to string) (Range, error) {
	fromIdx, toIdx := s.index(from), s.index(to)
	if fromIdx < 0 {
		return Range{}, fmt.Errorf("%w: %s/%s", ErrUnknownSegment, s.Identifier, from)
	}
	if toIdx < 0 {
		return Range{}, fmt.Errorf("%w: %s/%s", ErrUnknownSegment, s.Identifier, to)
	}
	r := Range{Minimum: s.Segments[fromIdx].LowerBound}
	if toIdx+1 < len(s.Segments) {
		max := s.Segments[toIdx+1].LowerBound
		r.Maximum = &max
	}
	return r, nil
}

func (s SegmentSet) index(identifier string) int {
	for i, seg := range s.Segments {
		if seg.Identifier == identifier {
			return i
		}
	}
	return -1
}
