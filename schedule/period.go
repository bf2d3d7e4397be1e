package schedule

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidPeriod is returned when a period's end is before its start.
var ErrInvalidPeriod = errors.New("invalid period: end before start")

// =============================================================================
// PERIOD - A [Start, End) interval of days
// =============================================================================

// Period is a date-bounded interval. Start is inclusive, End exclusive, so
// a one-day accrual period for March 10 is [March 9, March 10).
//
// LastPeriod marks the final repayment period of a term; acceptance of a
// payment in the last period settles the whole remaining balance.
//
// The zero Period stands for "no period" and sorts before every real one.
type Period struct {
	Start      Date
	End        Date
	LastPeriod bool
}

// NewPeriod returns [start, end). End must not be before start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end}, nil
}

// PeriodEndingOn returns the period of `days` days that ends at end.
func PeriodEndingOn(days int, end Date) Period {
	return Period{Start: end.AddDays(-days), End: end}
}

// IsZero reports whether p is the "no period" value.
func (p Period) IsZero() bool { return p.Start.IsZero() && p.End.IsZero() }

// Contains reports whether d is within [Start, End).
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.Before(p.End)
}

// Days returns the length of the period in days.
func (p Period) Days() int { return DaysBetween(p.Start, p.End) }

// Duration returns the length of the period.
func (p Period) Duration() time.Duration { return p.End.Time().Sub(p.Start.Time()) }

// Seconds returns the length of the period in seconds as a decimal.
func (p Period) Seconds() decimal.Decimal {
	return decimal.NewFromInt(int64(p.Duration() / time.Second))
}

// Compare orders periods by start date, then end date.
func (p Period) Compare(other Period) int {
	if c := p.Start.Compare(other.Start); c != 0 {
		return c
	}
	return p.End.Compare(other.End)
}

// WithLastPeriod returns a copy of p flagged as the last period of a term.
func (p Period) WithLastPeriod() Period {
	p.LastPeriod = true
	return p
}

// Key returns p without the LastPeriod flag, for grouping by interval.
func (p Period) Key() Period {
	return Period{Start: p.Start, End: p.End}
}

// String returns a string representation of the period.
func (p Period) String() string {
	if p.IsZero() {
		return "[]"
	}
	return "[" + p.Start.String() + ", " + p.End.String() + ")"
}
