package pdv

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestSession is a helper for test returning an in-memory session with
// a frozen clock and a recorder subscribed to its notices.
func newTestSession(t *testing.T, now string, products ...Product) (*Session, *recorder) {
	s := NewSession(NewLedger(), NewCatalog(products...), zaptest.NewLogger(t))
	s.setClock(func() time.Time { return at(now) })
	var rec recorder
	s.Subscribe(rec.notify)
	return s, &rec
}

func stockOf(t *testing.T, s *Session, id string) Quantity {
	p, ok := s.Catalog().Product(id)
	require.True(t, ok)
	return p.StockQuantity
}

func TestSession_Checkout(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-01 10:00", product("a", 2.5, 10, 0, Unit), product("k", 10, 2, 0, Kilo))
	require.NoError(t, s.AddToCart("a"))
	require.NoError(t, s.SetCartQuantity("a", Q(4)))
	require.NoError(t, s.AddToCart("k"))
	require.NoError(t, s.SetCartQuantity("k", Q(0.5)))

	r, err := s.Checkout(Card)
	require.NoError(t, err)
	require.NoError(t, r.Write.Wait())

	assert.Nil(t, r.Snapshot, "no float snapshot for a card sale")
	assert.True(t, r.Sale.Total().Equal(BRL(15)))
	assert.Equal(t, 0, s.Cart().Len())
	assert.Equal(t, 1, s.Ledger().Len())
	assert.True(t, stockOf(t, s, "a").Equal(Q(6)))
	assert.True(t, stockOf(t, s, "k").Equal(Q(1.5)))
	require.NoError(t, s.Flush())
}

func TestSession_CheckoutFirstCashSaleRecordsFloat(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-02 10:00", product("a", 5, 10, 0, Unit))
	s.Ledger().Append(NewCashSnapshot(at("2025-08-01 08:00"), BRL(20), nil))

	require.NoError(t, s.AddToCart("a"))
	r, err := s.Checkout(Cash)
	require.NoError(t, err)
	require.NotNil(t, r.Snapshot)
	assert.True(t, r.Snapshot.InitialFloat.Equal(BRL(20)))

	v, locked := s.Cashier().CurrentInitialValue()
	assert.True(t, locked)
	assert.True(t, v.Equal(BRL(20)))

	require.NoError(t, s.AddToCart("a"))
	r, err = s.Checkout(Cash)
	require.NoError(t, err)
	assert.Nil(t, r.Snapshot, "today is already locked")
	assert.Len(t, s.Ledger().CashSnapshots(), 2)

	rows := s.CashReport(today(s))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalCashSales.Equal(BRL(10)))
	assert.True(t, rows[0].InitialFloat.Equal(BRL(20)))
}

func TestSession_CheckoutRevalidatesAgainstCatalog(t *testing.T) {
	s, rec := newTestSession(t, "2025-08-01 10:00", product("a", 1, 3, 0, Unit))
	require.NoError(t, s.AddToCart("a"))
	require.NoError(t, s.SetCartQuantity("a", Q(3)))

	// the stock changed behind the cart.
	s.Catalog().ApplyAdjustment([]StockDelta{{ProductID: "a", Delta: Q(-2)}})

	_, err := s.Checkout(Pix)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 1, s.Cart().Len(), "the cart is kept for a retry")
	assert.Equal(t, 0, s.Ledger().Len())
	assert.Contains(t, rec.kinds(), NoticeValidation)

	require.NoError(t, s.SetCartQuantity("a", Q(1)))
	r, err := s.Checkout(Pix)
	require.NoError(t, err)
	assert.True(t, r.Sale.Lines[0].StockQuantity.Equal(Q(1)), "stock recorded is the current one")
}

func TestSession_CheckoutEmptyCart(t *testing.T) {
	s, rec := newTestSession(t, "2025-08-01 10:00")
	_, err := s.Checkout(Cash)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, []NoticeKind{NoticeValidation}, rec.kinds())
}

func TestSession_AdjustStock(t *testing.T) {
	s, rec := newTestSession(t, "2025-08-01 10:00", product("a", 1, 5, 0, Unit), product("k", 1, 5, 0, Kilo))
	require.NoError(t, s.AddToCart("a"))
	require.NoError(t, s.SetCartQuantity("a", Q(4)))

	w, err := s.AdjustStock([]StockDelta{{ProductID: "a", Delta: Q(-3)}, {ProductID: "k", Delta: Q(0.25)}})
	require.NoError(t, err)
	require.NoError(t, w.Wait())

	assert.True(t, stockOf(t, s, "a").Equal(Q(2)))
	assert.True(t, stockOf(t, s, "k").Equal(Q(5.25)))
	l, _ := s.Cart().Line("a")
	assert.True(t, l.Quantity.Equal(Q(2)), "cart line clamped")
	assert.Contains(t, rec.kinds(), NoticeCartAdjusted)
	assert.Len(t, s.Ledger().Query(OfType(ActStock), zeroTime, zeroTime), 1)

	testCases := []struct {
		name   string
		deltas []StockDelta
	}{
		{"empty", nil},
		{"unknown product", []StockDelta{{ProductID: "x", Delta: Q(1)}}},
		{"zero delta", []StockDelta{{ProductID: "a", Delta: Q(0)}}},
		{"precision", []StockDelta{{ProductID: "a", Delta: Q(0.5)}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.AdjustStock(tc.deltas)
			assert.Error(t, err)
			assert.Equal(t, 1, s.Ledger().Len(), "nothing recorded")
		})
	}
}

func TestSession_ApplyAdjustmentSumsDeltas(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-01 10:00", product("a", 1, 5, 0, Unit))
	deltas := []float64{3, -10, 4, -1, 7}
	sum := Q(5)
	for _, d := range deltas {
		_, err := s.AdjustStock([]StockDelta{{ProductID: "a", Delta: Q(d)}})
		require.NoError(t, err)
		sum = sum.Add(Q(d))
	}
	assert.True(t, stockOf(t, s, "a").Equal(sum))
}

func TestSession_TrackDropsCompletedWrites(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-01 10:00", product("a", 1, 5, 0, Unit))
	for range 100 {
		w, err := s.AdjustStock([]StockDelta{{ProductID: "a", Delta: Q(1)}})
		require.NoError(t, err)
		require.NoError(t, w.Wait())
	}
	assert.Len(t, s.pending, 1, "only the last write is kept")

	// failed writes are kept until Flush reports them.
	failed := written(errors.New("disk full"))
	s.track(failed)
	_, err := s.AdjustStock([]StockDelta{{ProductID: "a", Delta: Q(1)}})
	require.NoError(t, err)
	assert.Contains(t, s.pending, failed)
	assert.ErrorContains(t, s.Flush(), "disk full")
	assert.Empty(t, s.pending)
}

func TestSession_SaveProduct(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-01 10:00")

	p := product("a", 3, 10, 2, Unit)
	_, err := s.SaveProduct(p)
	require.NoError(t, err)
	require.NoError(t, s.AddToCart("a"))
	require.NoError(t, s.SetCartQuantity("a", Q(8)))

	p.StockQuantity = Q(6)
	p.Price = BRL(4)
	_, err = s.SaveProduct(p)
	require.NoError(t, err)

	adjustments := s.Ledger().Query(OfType(ActStock), zeroTime, zeroTime)
	require.Len(t, adjustments, 2)
	d, _ := adjustments[0].(StockAdjustment).Delta("a")
	assert.True(t, d.Equal(Q(-4)), "edit records the difference")
	d, _ = adjustments[1].(StockAdjustment).Delta("a")
	assert.True(t, d.Equal(Q(10)), "creation records the initial stock")

	l, _ := s.Cart().Line("a")
	assert.True(t, l.Quantity.Equal(Q(6)))
	assert.True(t, l.Price.Equal(BRL(4)))

	p.Name = "renamed"
	_, err = s.SaveProduct(p)
	require.NoError(t, err)
	assert.Len(t, s.Ledger().Query(OfType(ActStock), zeroTime, zeroTime), 2, "no stock change, nothing recorded")

	_, err = s.SaveProduct(Product{ID: "b"})
	assert.True(t, IsValidation(err))
}

func TestSession_DeleteProduct(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-01 10:00", product("a", 1, 5, 0, Unit))
	require.NoError(t, s.AddToCart("a"))

	_, err := s.DeleteProduct("a")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cart().Len())
	assert.ErrorIs(t, s.AddToCart("a"), ErrNotFound)

	_, err = s.DeleteProduct("zz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_Subscribe(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-01 10:00", product("a", 1, 1, 1, Unit))
	var got []Notice
	unsubscribe := s.Subscribe(func(n Notice) { got = append(got, n) })

	require.NoError(t, s.AddToCart("a"))
	require.Len(t, got, 1)
	assert.Equal(t, NoticeLowStock, got[0].Kind)
	assert.Equal(t, "a", got[0].ProductID)

	unsubscribe()
	assert.Error(t, s.AddToCart("a"))
	assert.Len(t, got, 1)
}

func TestSession_RetireToday(t *testing.T) {
	s, _ := newTestSession(t, "2025-08-01 18:00", product("a", 12.5, 10, 0, Unit))
	_, err := s.SetInitialFloat(BRL(5))
	require.NoError(t, err)
	require.NoError(t, s.AddToCart("a"))
	require.NoError(t, s.SetCartQuantity("a", Q(2)))
	_, err = s.Checkout(Cash)
	require.NoError(t, err)

	ret, w, err := s.RetireToday(BRL(10), false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Nil(t, w)
	assert.True(t, ret.Carry.Equal(BRL(15)))

	_, w, err = s.RetireToday(BRL(10), true)
	require.NoError(t, err)
	require.NoError(t, w.Wait())

	rows := s.CashReport(today(s))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Retired.Equal(BRL(10)))
	assert.False(t, rows[0].IsFullyRetired)
}

func TestOpenSession_Persists(t *testing.T) {
	dir := t.TempDir()
	ledgerPath, catalogPath := filepath.Join(dir, "pdv-actions.json"), filepath.Join(dir, "pdv-produtos.json")
	logger := zaptest.NewLogger(t)

	s := OpenSession(ledgerPath, catalogPath, logger)
	_, err := s.SaveProduct(product("a", 2, 5, 0, Unit))
	require.NoError(t, err)
	require.NoError(t, s.AddToCart("a"))
	_, err = s.Checkout(Pix)
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	reopened := OpenSession(ledgerPath, catalogPath, logger)
	assert.Equal(t, 2, reopened.Ledger().Len())
	assert.True(t, stockOf(t, reopened, "a").Equal(Q(4)))
}
