package pdv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a helper for test collecting published notices.
type recorder struct{ notices []Notice }

func (r *recorder) notify(n Notice) { r.notices = append(r.notices, n) }

func (r *recorder) kinds() []NoticeKind {
	var res []NoticeKind
	for _, n := range r.notices {
		res = append(res, n.Kind)
	}
	return res
}

func TestCart_AddLine(t *testing.T) {
	t.Run("no stock", func(t *testing.T) {
		c := NewCart(nil)
		err := c.AddLine(product("a", 1, 0.5, 0, Kilo))
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("increment up to stock then reject", func(t *testing.T) {
		c := NewCart(nil)
		p := product("a", 1, 2, 0, Unit)
		require.NoError(t, c.AddLine(p))
		require.NoError(t, c.AddLine(p))
		err := c.AddLine(p)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		l, ok := c.Line("a")
		require.True(t, ok)
		assert.True(t, l.Quantity.Equal(Q(2)), "rejected, not clamped")
	})

	t.Run("deleted product", func(t *testing.T) {
		c := NewCart(nil)
		p := product("a", 1, 2, 0, Unit)
		p.IsDeleted = true
		assert.ErrorIs(t, c.AddLine(p), ErrNotFound)
	})

	t.Run("insertion order", func(t *testing.T) {
		c := NewCart(nil)
		require.NoError(t, c.AddLine(product("b", 1, 5, 0, Unit)))
		require.NoError(t, c.AddLine(product("a", 1, 5, 0, Unit)))
		require.NoError(t, c.AddLine(product("b", 1, 5, 0, Unit)))
		lines := c.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "b", lines[0].ProductID)
		assert.Equal(t, "a", lines[1].ProductID)
	})
}

func TestCart_LowStockNoticeOncePerSession(t *testing.T) {
	var rec recorder
	c := NewCart(rec.notify)
	p := product("a", 1, 5, 3, Unit)

	require.NoError(t, c.AddLine(p)) // 5-1=4 > 3
	assert.Empty(t, rec.notices)
	require.NoError(t, c.AddLine(p)) // 5-2=3 <= 3
	require.NoError(t, c.AddLine(p))
	require.NoError(t, c.SetQuantity("a", Q(5)))
	assert.Equal(t, []NoticeKind{NoticeLowStock}, rec.kinds())

	c.Clear()
	require.NoError(t, c.AddLine(p))
	require.NoError(t, c.AddLine(p))
	assert.Equal(t, []NoticeKind{NoticeLowStock, NoticeLowStock}, rec.kinds(), "clear resets the notices")
}

func TestCart_SetQuantity(t *testing.T) {
	newCart := func(t *testing.T) *Cart {
		c := NewCart(nil)
		require.NoError(t, c.AddLine(product("u", 2, 5, 0, Unit)))
		require.NoError(t, c.AddLine(product("k", 10, 2.5, 0, Kilo)))
		return c
	}

	testCases := []struct {
		name     string
		id       string
		q        float64
		wantErr  error
		wantVal  bool
		wantQ    float64
		wantGone bool
	}{
		{name: "update", id: "u", q: 4, wantQ: 4},
		{name: "up to stock", id: "k", q: 2.5, wantQ: 2.5},
		{name: "above stock", id: "u", q: 6, wantErr: ErrInsufficientStock, wantQ: 1},
		{name: "zero removes", id: "u", q: 0, wantGone: true},
		{name: "negative removes", id: "k", q: -1, wantGone: true},
		{name: "fraction of unit", id: "u", q: 1.5, wantVal: true, wantQ: 1},
		{name: "three decimals of kg", id: "k", q: 1.125, wantVal: true, wantQ: 1},
		{name: "unknown line", id: "x", q: 1, wantErr: ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCart(t)
			err := c.SetQuantity(tc.id, Q(tc.q))
			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.wantVal:
				assert.True(t, IsValidation(err))
			default:
				require.NoError(t, err)
			}
			if tc.id == "x" {
				return
			}
			l, ok := c.Line(tc.id)
			if tc.wantGone {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.True(t, l.Quantity.Equal(Q(tc.wantQ)), "quantity %v", l.Quantity)
		})
	}
}

func TestCart_ReconcileAfterStockChange(t *testing.T) {
	var rec recorder
	c := NewCart(rec.notify)
	require.NoError(t, c.AddLine(product("a", 1, 10, 0, Unit)))
	require.NoError(t, c.SetQuantity("a", Q(8)))
	require.NoError(t, c.AddLine(product("b", 1, 3, 0, Unit)))
	require.NoError(t, c.AddLine(product("c", 1, 3, 0, Unit)))

	c.ReconcileAfterStockChange([]StockDelta{
		{ProductID: "a", Delta: Q(-5)}, // 10-5=5 < 8: clamped
		{ProductID: "b", Delta: Q(-3)}, // 0: removed
		{ProductID: "c", Delta: Q(4)},  // 7: untouched quantity
		{ProductID: "z", Delta: Q(1)},  // not in cart
	})

	require.Equal(t, 2, c.Len())
	a, _ := c.Line("a")
	assert.True(t, a.Quantity.Equal(Q(5)))
	assert.True(t, a.StockQuantity.Equal(Q(5)))
	_, ok := c.Line("b")
	assert.False(t, ok)
	cl, _ := c.Line("c")
	assert.True(t, cl.Quantity.Equal(Q(1)))
	assert.True(t, cl.StockQuantity.Equal(Q(7)))
	assert.Equal(t, []NoticeKind{NoticeCartAdjusted, NoticeCartAdjusted}, rec.kinds())

	// every line keeps 0 < quantity <= stock.
	for _, l := range c.Lines() {
		assert.True(t, l.Quantity.IsPositive())
		assert.True(t, l.Quantity.LessThanOrEqual(l.StockQuantity))
	}
}

func TestCart_ReconcileAfterProductEdit(t *testing.T) {
	c := NewCart(nil)
	require.NoError(t, c.AddLine(product("a", 1, 10, 0, Unit)))
	require.NoError(t, c.SetQuantity("a", Q(6)))

	edited := product("a", 3, 4, 1, Unit)
	c.ReconcileAfterProductEdit(edited)
	l, _ := c.Line("a")
	assert.True(t, l.Price.Equal(BRL(3)))
	assert.True(t, l.Quantity.Equal(Q(4)))
	assert.True(t, l.MinStockQuantity.Equal(Q(1)))
	assert.True(t, c.Total().Equal(BRL(12)))

	edited.StockQuantity = Q(0)
	c.ReconcileAfterProductEdit(edited)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.AddLine(product("b", 1, 10, 0, Unit)))
	deleted := product("b", 1, 10, 0, Unit)
	deleted.IsDeleted = true
	c.ReconcileAfterProductEdit(deleted)
	assert.Equal(t, 0, c.Len())
}

func TestCart_Checkout(t *testing.T) {
	c := NewCart(nil)
	_, err := c.Checkout(Cash, at("2025-08-01 10:00"))
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, c.AddLine(product("a", 2.5, 10, 0, Unit)))
	require.NoError(t, c.SetQuantity("a", Q(3)))
	require.NoError(t, c.AddLine(product("k", 10, 2, 0, Kilo)))
	require.NoError(t, c.SetQuantity("k", Q(0.75)))

	_, err = c.Checkout("cheque", at("2025-08-01 10:00"))
	assert.True(t, IsValidation(err))

	co, err := c.Checkout(Pix, at("2025-08-01 10:00"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len(), "checkout does not clear")

	assert.Equal(t, Pix, co.Sale.Payment)
	assert.True(t, co.Sale.Total().Equal(BRL(15)))
	assert.True(t, co.Sale.Total().Equal(c.Total()))
	l, ok := co.Sale.Line("a")
	require.True(t, ok)
	assert.True(t, l.StockQuantity.Equal(Q(10)))

	require.Len(t, co.Adjustment.Deltas, 2)
	for i, d := range co.Adjustment.Deltas {
		assert.Equal(t, co.Sale.Lines[i].ProductID, d.ProductID)
		assert.True(t, d.Delta.Equal(co.Sale.Lines[i].Quantity.Neg()))
	}
	assert.Equal(t, co.Sale.When(), co.Adjustment.When())
}
