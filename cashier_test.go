package pdv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/etnz/pdv/date"
)

// newTestCashier is a helper for test returning a cashier whose clock is
// frozen at now.
func newTestCashier(t *testing.T, l *Ledger, now string) *Cashier {
	c := NewCashier(l, zaptest.NewLogger(t))
	c.now = func() time.Time { return at(now) }
	return c
}

func cashSale(when string, amounts ...float64) Sale {
	var lines []SaleLine
	for i, a := range amounts {
		lines = append(lines, SaleLine{ProductID: string(rune('a' + i)), Quantity: Q(1), StockQuantity: Q(10), UnitPrice: BRL(a)})
	}
	return NewSale(at(when), Cash, lines...)
}

func TestCashier_Report(t *testing.T) {
	l := NewLedger()
	l.Append(NewCashSnapshot(at("2025-08-01 08:00"), BRL(20), nil))
	l.Append(cashSale("2025-08-01 10:00", 10))
	l.Append(cashSale("2025-08-01 11:00", 15))
	l.Append(NewSale(at("2025-08-01 12:00"), Pix, SaleLine{ProductID: "a", Quantity: Q(1), UnitPrice: BRL(100)}))
	l.Append(cashSale("2025-08-02 10:00", 7.5))
	l.Append(NewStockAdjustment(at("2025-08-02 11:00"), StockDelta{ProductID: "a", Delta: Q(3)}))
	c := newTestCashier(t, l, "2025-08-04 09:00")

	rows := c.Report(date.Range{}, BRL(12))
	require.Len(t, rows, 3)

	// today is always present, with the pending float.
	assert.Equal(t, day("2025-08-04"), rows[0].Day)
	assert.True(t, rows[0].TotalCashSales.IsZero())
	assert.True(t, rows[0].InitialFloat.Equal(BRL(12)))
	assert.False(t, rows[0].IsFullyRetired)

	assert.Equal(t, day("2025-08-02"), rows[1].Day)
	assert.True(t, rows[1].InitialFloat.IsZero(), "no snapshot defaults to zero")
	assert.True(t, rows[1].TotalCashSales.Equal(BRL(7.5)))

	d := rows[2]
	assert.Equal(t, day("2025-08-01"), d.Day)
	assert.True(t, d.InitialFloat.Equal(BRL(20)))
	assert.True(t, d.TotalCashSales.Equal(BRL(25)), "only cash sales are counted")
	assert.Nil(t, d.Retired)
	assert.False(t, d.IsFullyRetired)
	assert.True(t, d.InRegister().Equal(BRL(45)))

	t.Run("range", func(t *testing.T) {
		rows := c.Report(date.Range{From: day("2025-08-02"), To: day("2025-08-02")}, BRL(0))
		require.Len(t, rows, 2)
		assert.Equal(t, day("2025-08-04"), rows[0].Day)
		assert.Equal(t, day("2025-08-02"), rows[1].Day)
	})
}

func TestCashier_ReportFullyRetiredIsExact(t *testing.T) {
	l := NewLedger()
	// 0.1 + 0.2 is not 0.3 with binary floats.
	l.Append(cashSale("2025-08-01 10:00", 0.1, 0.2))
	l.Append(NewCashSnapshot(at("2025-08-01 18:00"), BRL(0), BRL(0.3).Ptr()))
	c := newTestCashier(t, l, "2025-08-01 19:00")

	row := c.Today(Money{})
	assert.True(t, row.IsFullyRetired)
}

func TestCashier_CurrentInitialValue(t *testing.T) {
	l := NewLedger()
	c := newTestCashier(t, l, "2025-08-03 09:00")

	v, locked := c.CurrentInitialValue()
	assert.True(t, v.IsZero())
	assert.False(t, locked)

	l.Append(NewCashSnapshot(at("2025-08-01 08:00"), BRL(30), nil))
	l.Append(NewCashSnapshot(at("2025-08-02 08:00"), BRL(40), nil))
	v, locked = c.CurrentInitialValue()
	assert.True(t, v.Equal(BRL(30)), "earliest snapshot")
	assert.False(t, locked)

	l.Append(NewCashSnapshot(at("2025-08-03 08:00"), BRL(50), BRL(5).Ptr()))
	v, locked = c.CurrentInitialValue()
	assert.True(t, v.Equal(BRL(50)))
	assert.True(t, locked, "locked even when retired")
}

func TestCashier_SetInitialFloat(t *testing.T) {
	l := NewLedger()
	c := newTestCashier(t, l, "2025-08-03 09:00")

	_, err := c.SetInitialFloat(BRL(-1))
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, l.Len())

	w, err := c.SetInitialFloat(BRL(25))
	require.NoError(t, err)
	require.NoError(t, w.Wait())
	s, ok := l.SnapshotOn(day("2025-08-03"))
	require.True(t, ok)
	assert.True(t, s.InitialFloat.Equal(BRL(25)))
	assert.False(t, s.IsRetired())

	_, err = c.SetInitialFloat(BRL(30))
	assert.ErrorIs(t, err, ErrReconciliationConflict)
}

func TestCashier_Retire(t *testing.T) {
	testCases := []struct {
		name        string
		req         RetireRequest
		wantKind    RetirementKind
		wantCarry   float64
		wantInvalid bool
	}{
		{
			name:      "partial",
			req:       RetireRequest{Amount: BRL(10), TotalCashSales: BRL(25), InitialFloat: BRL(5), ConfirmPartial: true},
			wantKind:  PartialRetirement,
			wantCarry: 15,
		},
		{
			name:      "full",
			req:       RetireRequest{Amount: BRL(25), TotalCashSales: BRL(25), InitialFloat: BRL(5)},
			wantKind:  FullRetirement,
			wantCarry: 0,
		},
		{
			name:        "more than sales",
			req:         RetireRequest{Amount: BRL(30), TotalCashSales: BRL(25), InitialFloat: BRL(5)},
			wantInvalid: true,
		},
		{
			name:        "no sales",
			req:         RetireRequest{Amount: BRL(5), TotalCashSales: BRL(0), InitialFloat: BRL(5)},
			wantInvalid: true,
		},
		{
			name:        "zero amount",
			req:         RetireRequest{Amount: BRL(0), TotalCashSales: BRL(25)},
			wantInvalid: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			c := newTestCashier(t, l, "2025-08-01 18:00")

			ret, w, err := c.Retire(tc.req)
			if tc.wantInvalid {
				assert.True(t, IsValidation(err))
				assert.Nil(t, w)
				assert.Equal(t, 0, l.Len())
				return
			}
			require.NoError(t, err)
			require.NoError(t, w.Wait())
			assert.Equal(t, tc.wantKind, ret.Kind)
			assert.True(t, ret.Carry.Equal(BRL(tc.wantCarry)))

			todaySnap, ok := l.SnapshotOn(day("2025-08-01"))
			require.True(t, ok)
			require.True(t, todaySnap.IsRetired())
			assert.True(t, todaySnap.Retired.Equal(tc.req.Amount))
			assert.True(t, todaySnap.InitialFloat.Equal(tc.req.InitialFloat))

			tomorrow, ok := l.SnapshotOn(day("2025-08-02"))
			require.True(t, ok)
			assert.False(t, tomorrow.IsRetired())
			assert.True(t, tomorrow.InitialFloat.Equal(BRL(tc.wantCarry)))
		})
	}
}

func TestCashier_RetirePartialNeedsConfirmation(t *testing.T) {
	l := NewLedger()
	c := newTestCashier(t, l, "2025-08-01 18:00")

	ret, w, err := c.Retire(RetireRequest{Amount: BRL(10), TotalCashSales: BRL(25)})
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Nil(t, w)
	assert.Equal(t, PartialRetirement, ret.Kind)
	assert.True(t, ret.Carry.Equal(BRL(15)))
	assert.Equal(t, 0, l.Len(), "nothing recorded")
}

func TestCashier_RetireToday(t *testing.T) {
	l := NewLedger()
	l.Append(NewCashSnapshot(at("2025-08-01 08:00"), BRL(5), nil))
	l.Append(cashSale("2025-08-01 10:00", 10, 15))
	c := newTestCashier(t, l, "2025-08-01 18:00")

	ret, w, err := c.RetireToday(BRL(25), false)
	require.NoError(t, err)
	require.NoError(t, w.Wait())
	assert.Equal(t, FullRetirement, ret.Kind)

	row := c.Today(Money{})
	assert.True(t, row.IsFullyRetired)
	assert.True(t, row.InitialFloat.Equal(BRL(5)))

	_, _, err = c.RetireToday(BRL(25), false)
	assert.ErrorIs(t, err, ErrReconciliationConflict)

	// the next day opens with what was left in the register.
	c.now = func() time.Time { return at("2025-08-02 08:00") }
	v, locked := c.CurrentInitialValue()
	assert.True(t, locked)
	assert.True(t, v.IsZero())
}
