package schedule

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ChronoUnit is a calendar unit used for terms, payment cycles and the
// cycle size of a charge ("10% per YEARS").
type ChronoUnit string

const (
	Days   ChronoUnit = "DAYS"
	Weeks  ChronoUnit = "WEEKS"
	Months ChronoUnit = "MONTHS"
	Years  ChronoUnit = "YEARS"
)

// Estimated durations in seconds. A year is 365.2425 days, a month a
// twelfth of that.
var unitSeconds = map[ChronoUnit]int64{
	Days:   86400,
	Weeks:  7 * 86400,
	Months: 31556952 / 12,
	Years:  31556952,
}

// ParseChronoUnit parses a unit name, case-insensitively.
func ParseChronoUnit(s string) (ChronoUnit, error) {
	u := ChronoUnit(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := unitSeconds[u]; !ok {
		return "", fmt.Errorf("unknown chrono unit %q", s)
	}
	return u, nil
}

// Seconds returns the estimated duration of one unit in seconds.
func (u ChronoUnit) Seconds() decimal.Decimal {
	return decimal.NewFromInt(unitSeconds[u])
}

// AddTo adds n units to d.
func (u ChronoUnit) AddTo(d Date, n int) Date {
	switch u {
	case Days:
		return d.AddDays(n)
	case Weeks:
		return d.AddDays(7 * n)
	case Months:
		return d.AddMonths(n)
	case Years:
		return d.AddYears(n)
	default:
		return d
	}
}
