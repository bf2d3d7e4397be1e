package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CASE PARAMETERS - Term and payment cycle of one loan
// =============================================================================

// TermRange is the maximum length of the loan term.
type TermRange struct {
	TemporalUnit ChronoUnit
	Maximum      int
}

// PaymentCycle describes when installments fall due.
//
// Every Period units after the previous payment date, optionally aligned:
//   - WEEKS:  AlignmentDay is the weekday (time.Sunday = 0).
//   - MONTHS: AlignmentDay is the day of month (1-31, clamped to the month
//     length). With AlignmentWeek set, AlignmentDay is a weekday instead and
//     AlignmentWeek picks its occurrence (1-4, or -1 for the last one).
//   - YEARS:  AlignmentMonth and AlignmentDay pick the month and day.
type PaymentCycle struct {
	TemporalUnit   ChronoUnit
	Period         int
	AlignmentDay   *int
	AlignmentWeek  *int
	AlignmentMonth *time.Month
}

// CaseParameters are the per-case inputs to scheduling and costing.
type CaseParameters struct {
	TermRange      TermRange
	PaymentCycle   PaymentCycle
	MaximumBalance decimal.Decimal
}

// RoughEndOfTerm is the start of the term plus the maximum term size.
func (cp CaseParameters) RoughEndOfTerm(startOfTerm Date) Date {
	return cp.TermRange.TemporalUnit.AddTo(startOfTerm, cp.TermRange.Maximum)
}

// NextPaymentDate returns the first payment date after last.
func (pc PaymentCycle) NextPaymentDate(last Date) Date {
	period := pc.Period
	if period < 1 {
		period = 1
	}
	next := pc.TemporalUnit.AddTo(last, period)
	aligned := pc.align(next)
	// Alignment may pull the date back into the previous cycle.
	for !aligned.After(last) {
		next = pc.TemporalUnit.AddTo(next, 1)
		aligned = pc.align(next)
	}
	return aligned
}

func (pc PaymentCycle) align(d Date) Date {
	switch pc.TemporalUnit {
	case Weeks:
		if pc.AlignmentDay == nil {
			return d
		}
		return weekdayInWeek(d, time.Weekday(*pc.AlignmentDay%7))
	case Months:
		return pc.alignInMonth(d)
	case Years:
		if pc.AlignmentMonth != nil {
			d = NewDate(d.Year(), *pc.AlignmentMonth, 1)
			if pc.AlignmentDay == nil {
				return d
			}
		}
		return pc.alignInMonth(d)
	default:
		return d
	}
}

func (pc PaymentCycle) alignInMonth(d Date) Date {
	if pc.AlignmentDay == nil {
		return d
	}
	if pc.AlignmentWeek != nil {
		return nthWeekdayOfMonth(d, time.Weekday(*pc.AlignmentDay%7), *pc.AlignmentWeek)
	}
	day := *pc.AlignmentDay
	if last := EndOfMonth(d).Day(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(d.Year(), d.Month(), day)
}

// weekdayInWeek moves d to the given weekday within its Monday-based week.
func weekdayInWeek(d Date, wd time.Weekday) Date {
	offset := (int(wd)+6)%7 - (int(d.Weekday())+6)%7
	return d.AddDays(offset)
}

func nthWeekdayOfMonth(d Date, wd time.Weekday, n int) Date {
	if n < 0 {
		last := EndOfMonth(d)
		back := (int(last.Weekday()) - int(wd) + 7) % 7
		return last.AddDays(-back)
	}
	if n < 1 {
		n = 1
	}
	first := NewDate(d.Year(), d.Month(), 1)
	forward := (int(wd) - int(first.Weekday()) + 7) % 7
	candidate := first.AddDays(forward + 7*(n-1))
	if candidate.Month() != d.Month() {
		return candidate.AddDays(-7)
	}
	return candidate
}
