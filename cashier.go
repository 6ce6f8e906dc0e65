package pdv

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/etnz/pdv/date"
)

// CashRow is the cash register figures of one day.
type CashRow struct {
	Day            date.Date
	InitialFloat   Money  // cash in the register when the day opened
	TotalCashSales Money  // sum of the cash sales of the day
	Retired        *Money // cash withdrawn, nil until the day is retired
	IsFullyRetired bool   // all cash sales of the day were withdrawn
}

// InRegister returns the cash expected in the register: the float plus the
// cash sales, minus what was withdrawn.
func (r CashRow) InRegister() Money {
	total := r.InitialFloat.Add(r.TotalCashSales)
	if r.Retired != nil {
		total = total.Sub(*r.Retired)
	}
	return total
}

// Cashier derives the daily cash register report from the ledger and runs
// the float and withdrawal protocol, recording cash snapshots back into the
// ledger.
type Cashier struct {
	ledger *Ledger
	logger *zap.Logger
	now    func() time.Time
}

// NewCashier returns a cashier working on l.
func NewCashier(l *Ledger, logger *zap.Logger) *Cashier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cashier{ledger: l, logger: logger, now: time.Now}
}

func (c *Cashier) today() date.Date { return date.Of(c.now()) }

// Report returns one row per day with cash sales in r, newest day first.
//
// Today always has a row. When today has no cash snapshot yet, pendingFloat
// is used as its initial float: it is the value the operator is editing and
// has not saved.
func (c *Cashier) Report(r date.Range, pendingFloat Money) []CashRow {
	today := c.today()
	totals := map[date.Date]Money{today: {}}
	for _, a := range c.ledger.Actions(OnDays(r)) {
		switch v := a.(type) {
		case Sale:
			if v.Payment == Cash {
				totals[v.Day()] = totals[v.Day()].Add(v.Total())
			}
		case StockAdjustment, CashSnapshot:
		default:
			c.logger.Warn("unexpected action in ledger", zap.String("type", fmt.Sprintf("%T", a)))
		}
	}

	snapshots := make(map[date.Date]CashSnapshot)
	for _, s := range c.ledger.CashSnapshots() {
		if _, exists := snapshots[s.Day()]; !exists { // newest wins
			snapshots[s.Day()] = s
		}
	}
	if _, exists := snapshots[today]; !exists {
		snapshots[today] = NewCashSnapshot(c.now(), pendingFloat, nil)
	}

	rows := make([]CashRow, 0, len(totals))
	for day, total := range totals {
		row := CashRow{Day: day, TotalCashSales: total}
		if s, ok := snapshots[day]; ok {
			row.InitialFloat = s.InitialFloat
			row.Retired = s.Retired
		}
		row.IsFullyRetired = row.Retired != nil && row.Retired.Equal(total)
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b CashRow) int { return b.Day.Compare(a.Day) })
	return rows
}

// Today returns the row of the current day.
func (c *Cashier) Today(pendingFloat Money) CashRow {
	today := c.today()
	rows := c.Report(date.Range{From: today, To: today}, pendingFloat)
	return rows[0]
}

// CurrentInitialValue returns the opening float of today.
//
// Once today has a cash snapshot, its float is returned with locked set: it
// can no longer be changed with SetInitialFloat. Otherwise the float of the
// earliest snapshot ever recorded is proposed, or zero.
func (c *Cashier) CurrentInitialValue() (value Money, locked bool) {
	if s, ok := c.ledger.SnapshotOn(c.today()); ok {
		return s.InitialFloat, true
	}
	if s, ok := c.ledger.EarliestSnapshot(); ok {
		return s.InitialFloat, false
	}
	return Money{}, false
}

// SetInitialFloat records the opening float of today.
func (c *Cashier) SetInitialFloat(value Money) (*Write, error) {
	if value.IsNegative() {
		return nil, &ValidationError{Field: "initial float", Value: value, Reason: "must not be negative"}
	}
	if !value.Equal(value.Round()) {
		return nil, &ValidationError{Field: "initial float", Value: value.Decimal(), Reason: "more than two decimal places"}
	}
	if _, locked := c.CurrentInitialValue(); locked {
		return nil, fmt.Errorf("initial float of %s already recorded: %w", c.today(), ErrReconciliationConflict)
	}
	now := c.now()
	c.logger.Info("initial float set", zap.Stringer("day", date.Of(now)), zap.Stringer("value", value))
	return c.ledger.UpsertCashSnapshot(date.Of(now), NewCashSnapshot(now, value, nil)), nil
}

// RetirementKind tells whether a withdrawal takes all the cash sales of the
// day.
type RetirementKind string

const (
	FullRetirement    RetirementKind = "full"
	PartialRetirement RetirementKind = "partial"
)

// RetireRequest asks to withdraw Amount from the register today.
type RetireRequest struct {
	Amount         Money
	TotalCashSales Money // cash sales of today
	InitialFloat   Money // opening float of today
	ConfirmPartial bool  // a partial withdrawal is only recorded when set
}

// Retirement describes an accepted, or pending confirmation, withdrawal.
type Retirement struct {
	Kind   RetirementKind
	Day    date.Date
	Amount Money
	Carry  Money // cash left in the register, tomorrow's opening float
}

// Retire withdraws cash from today's register.
//
// It marks today as retired with the amount and records tomorrow's opening
// float as the cash sales left in the register. A partial withdrawal that is
// not confirmed returns its Retirement with ErrConfirmationRequired and
// records nothing.
func (c *Cashier) Retire(req RetireRequest) (Retirement, *Write, error) {
	switch {
	case !req.TotalCashSales.IsPositive():
		return Retirement{}, nil, &ValidationError{Field: "cash sales", Value: req.TotalCashSales, Reason: "nothing to withdraw"}
	case !req.Amount.IsPositive():
		return Retirement{}, nil, &ValidationError{Field: "withdrawal", Value: req.Amount, Reason: "must be positive"}
	case req.Amount.GreaterThan(req.TotalCashSales):
		return Retirement{}, nil, &ValidationError{Field: "withdrawal", Value: req.Amount, Reason: fmt.Sprintf("more than the cash sales %v", req.TotalCashSales)}
	case !req.Amount.Equal(req.Amount.Round()):
		return Retirement{}, nil, &ValidationError{Field: "withdrawal", Value: req.Amount.Decimal(), Reason: "more than two decimal places"}
	}

	now := c.now()
	today := date.Of(now)
	if s, ok := c.ledger.SnapshotOn(today); ok && s.IsRetired() && s.Retired.Equal(req.TotalCashSales) {
		return Retirement{}, nil, fmt.Errorf("cash of %s already fully withdrawn: %w", today, ErrReconciliationConflict)
	}

	ret := Retirement{
		Kind:   FullRetirement,
		Day:    today,
		Amount: req.Amount,
		Carry:  req.TotalCashSales.Sub(req.Amount),
	}
	if ret.Carry.IsPositive() {
		ret.Kind = PartialRetirement
		if !req.ConfirmPartial {
			return ret, nil, ErrConfirmationRequired
		}
	}

	closing := c.ledger.UpsertCashSnapshot(today, NewCashSnapshot(now, req.InitialFloat, req.Amount.Ptr()))
	tomorrow := today.Add(1)
	opening := c.ledger.UpsertCashSnapshot(tomorrow, NewCashSnapshot(tomorrow.At(now), ret.Carry, nil))
	c.logger.Info("cash withdrawn", zap.Stringer("day", today), zap.String("kind", string(ret.Kind)),
		zap.Stringer("amount", ret.Amount), zap.Stringer("carry", ret.Carry))
	return ret, joinWrites(closing, opening), nil
}

// RetireToday withdraws amount from today's register, reading the cash
// sales and the float of today from the ledger.
func (c *Cashier) RetireToday(amount Money, confirmPartial bool) (Retirement, *Write, error) {
	float, _ := c.CurrentInitialValue()
	row := c.Today(float)
	return c.Retire(RetireRequest{
		Amount:         amount,
		TotalCashSales: row.TotalCashSales,
		InitialFloat:   row.InitialFloat,
		ConfirmPartial: confirmPartial,
	})
}
