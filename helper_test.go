package pdv

import (
	"time"

	"github.com/etnz/pdv/date"
)

// zeroTime is an open bound for queries.
var zeroTime time.Time

// at is a helper for test to create a local timestamp like "2025-08-01 10:30".
func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

// day is a helper for test to create a date from const.
func day(s string) date.Date { return date.MustParse(s) }

// BRL is a helper for test to create money from const.
func BRL(v float64) Money { return M(v) }

// today is a helper for test returning the single day range of the session
// clock.
func today(s *Session) date.Range {
	d := date.Of(s.now())
	return date.Range{From: d, To: d}
}
