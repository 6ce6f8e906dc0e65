package pdv

import (
	"bytes"
	"io"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/etnz/pdv/date"
)

// Ledger is the log of every action recorded by the point of sale.
//
// In a Ledger actions are kept newest first, in the order they were
// recorded. It is append only: the single in-place mutation is the
// replacement of the cash snapshot of a day by a newer one.
type Ledger struct {
	actions []Action
	store   *fileStore // nil for an in-memory ledger
	logger  *zap.Logger
}

// NewLedger creates an empty, in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{logger: zap.NewNop()}
}

// LoadLedger opens the ledger stored at path. Every later change is written
// back to that file.
//
// A missing or unreadable file is not an error: the ledger starts empty and
// the problem is logged. An unreadable file is moved aside first.
func LoadLedger(path string, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("store", "ledger"))
	l := &Ledger{store: newFileStore(path, logger), logger: logger}

	data, err := l.store.load()
	if err != nil {
		logger.Error("could not read ledger, starting empty", zap.Error(err))
		return l
	}
	if len(bytes.TrimSpace(data)) == 0 {
		logger.Info("no ledger yet, starting empty", zap.String("path", path))
		return l
	}
	actions, err := DecodeLedger(bytes.NewReader(data))
	if err != nil {
		logger.Error("could not decode ledger, starting empty", zap.String("path", path), zap.Error(err))
		l.store.quarantine()
		return l
	}
	l.actions = actions
	logger.Debug("ledger loaded", zap.String("path", path), zap.Int("actions", len(actions)))
	return l
}

// Len returns the number of actions.
func (l *Ledger) Len() int { return len(l.actions) }

// Append records a new action at the head of the ledger and schedules the
// rewrite of the ledger file.
func (l *Ledger) Append(a Action) *Write {
	l.actions = append([]Action{a}, l.actions...)
	l.logger.Debug("action recorded", zap.String("type", string(a.What())), zap.Time("date", a.When()))
	return l.persist()
}

// UpsertCashSnapshot records snap as the cash snapshot of day.
//
// If the ledger already holds a snapshot on that day it is replaced where it
// stands, otherwise snap is prepended. snap is moved onto day, keeping its
// clock time, when its own timestamp falls on another day.
func (l *Ledger) UpsertCashSnapshot(day date.Date, snap CashSnapshot) *Write {
	snap.Type = ActCashSnapshot
	if snap.Day() != day {
		snap.Date = day.At(snap.Date)
	}
	for i, a := range l.actions {
		if c, ok := a.(CashSnapshot); ok && c.Day() == day {
			l.actions[i] = snap
			l.logger.Info("cash snapshot replaced", zap.Stringer("day", day),
				zap.Stringer("initialValue", snap.InitialFloat), zap.Bool("retired", snap.IsRetired()))
			return l.persist()
		}
	}
	return l.Append(snap)
}

// Actions iterates over actions newest first, yielding their position in
// the ledger. When filters are given, only actions matching all of them are
// yielded.
func (l *Ledger) Actions(filters ...func(Action) bool) iter.Seq2[int, Action] {
	return func(yield func(int, Action) bool) {
	next:
		for i, a := range l.actions {
			for _, accept := range filters {
				if !accept(a) {
					continue next
				}
			}
			if !yield(i, a) {
				return
			}
		}
	}
}

// Query returns the actions accepted by match whose timestamp lies within
// [from, to], newest first. A zero bound leaves that side open and a nil
// match accepts everything.
func (l *Ledger) Query(match func(Action) bool, from, to time.Time) []Action {
	var res []Action
	for _, a := range l.Actions(Between(from, to)) {
		if match == nil || match(a) {
			res = append(res, a)
		}
	}
	return res
}

// Sales returns the sales recorded on the days of r, newest first.
func (l *Ledger) Sales(r date.Range) []Sale {
	var res []Sale
	for _, a := range l.Actions(OnDays(r)) {
		if s, ok := a.(Sale); ok {
			res = append(res, s)
		}
	}
	return res
}

// CashSnapshots returns all cash snapshots, newest first.
func (l *Ledger) CashSnapshots() []CashSnapshot {
	var res []CashSnapshot
	for _, a := range l.actions {
		if c, ok := a.(CashSnapshot); ok {
			res = append(res, c)
		}
	}
	return res
}

// SnapshotOn returns the cash snapshot of day, if any.
func (l *Ledger) SnapshotOn(day date.Date) (CashSnapshot, bool) {
	for _, a := range l.actions {
		if c, ok := a.(CashSnapshot); ok && c.Day() == day {
			return c, true
		}
	}
	return CashSnapshot{}, false
}

// EarliestSnapshot returns the chronologically earliest cash snapshot.
func (l *Ledger) EarliestSnapshot() (CashSnapshot, bool) {
	var earliest CashSnapshot
	found := false
	for _, c := range l.CashSnapshots() {
		if !found || !c.When().After(earliest.When()) {
			earliest, found = c, true
		}
	}
	return earliest, found
}

// FirstDay returns the day of the oldest action of the ledger.
func (l *Ledger) FirstDay() (date.Date, bool) {
	var first time.Time
	for _, a := range l.actions {
		if first.IsZero() || a.When().Before(first) {
			first = a.When()
		}
	}
	if first.IsZero() {
		return date.Date{}, false
	}
	return date.Of(first), true
}

// Flush waits for every pending write of the ledger file.
func (l *Ledger) Flush() { l.store.flush() }

func (l *Ledger) persist() *Write {
	return l.store.save(func(w io.Writer) error { return EncodeLedger(w, l.actions) })
}

// Between accepts actions whose timestamp lies in [from, to]. A zero bound
// is open.
func Between(from, to time.Time) func(Action) bool {
	return func(a Action) bool {
		t := a.When()
		if !from.IsZero() && t.Before(from) {
			return false
		}
		if !to.IsZero() && t.After(to) {
			return false
		}
		return true
	}
}

// OnDays accepts actions recorded on a local calendar day of r.
func OnDays(r date.Range) func(Action) bool {
	return func(a Action) bool { return r.Contains(a.Day()) }
}

// OfType accepts actions of the given type.
func OfType(t ActionType) func(Action) bool {
	return func(a Action) bool { return a.What() == t }
}

// Touching accepts sales and stock adjustments involving the product id.
func Touching(productID string) func(Action) bool {
	return func(a Action) bool {
		switch v := a.(type) {
		case Sale:
			_, ok := v.Line(productID)
			return ok
		case StockAdjustment:
			_, ok := v.Delta(productID)
			return ok
		case CashSnapshot:
			return false
		default:
			return false
		}
	}
}
