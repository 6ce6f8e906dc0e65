package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, boundaries included.
//
// A zero From or To leaves that side of the range open, so the zero Range
// contains every date.
type Range struct{ From, To Date }

// NewRange return a well known period
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Between returns the range [from, to], swapping the boundaries if needed.
func Between(from, to Date) Range {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// IsZero returns true if the range has no boundaries at all.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// ContainsTime reports whether the local calendar day of t is in the range.
func (r Range) ContainsTime(t time.Time) bool { return r.Contains(Of(t)) }

// Bounds returns the first and last instants covered by the range. An open
// side is returned as the zero time.
func (r Range) Bounds() (from, to time.Time) {
	if !r.From.IsZero() {
		from = r.From.Start()
	}
	if !r.To.IsZero() {
		to = r.To.End()
	}
	return from, to
}

// return the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	if r.From.IsZero() || r.To.IsZero() {
		return Daily, false
	}
	switch {
	case r.From == r.To:
		return Daily, true
	case r.From.Weekday() == time.Monday && r.From.EndOf(Weekly) == r.To:
		return Weekly, true
	case r.From.Day() == 1 && r.From.EndOf(Monthly) == r.To:
		return Monthly, true
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return Quarterly, true
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return Yearly, true
	default:
		return Daily, false
	}
}

// Name the period range
func (r Range) Name() string {
	if p, ok := r.Period(); ok {
		return p.String()
	}
	return "special"
}

// Identifier compute a unique identifier for the Range.
// If the period is defined, use a short insighful name
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		switch {
		case r.IsZero():
			return "all"
		case r.From.IsZero():
			return fmt.Sprintf("until_%s", r.To)
		case r.To.IsZero():
			return fmt.Sprintf("since_%s", r.From)
		}
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Daily:
		return r.From.String()
	case Weekly:
		_, week := r.From.ISOWeek()
		return fmt.Sprintf("%d-W%02d", r.From.Year(), week)
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return r.From.Format("2006")
	default:
		panic("unknown period")
	}
}
