package pdv

import (
	"fmt"
	"slices"
	"time"
)

// CartLine is a product in the cart, with a copy of the product figures
// taken when it was added and refreshed on every stock or product change.
//
// The quantity is always positive and never above StockQuantity.
type CartLine struct {
	ProductID        string
	Name             string
	Quantity         Quantity
	Price            Money
	StockQuantity    Quantity
	MinStockQuantity Quantity
	UnitType         UnitType
}

// Total returns quantity × price.
func (l CartLine) Total() Money { return l.Price.Mul(l.Quantity) }

func (l *CartLine) refresh(p Product) {
	l.Name = p.Name
	l.Price = p.Price
	l.StockQuantity = p.StockQuantity
	l.MinStockQuantity = p.MinStockQuantity
	l.UnitType = p.UnitType
}

// Checkout is the outcome of a cart checkout: the sale to record and the
// stock it consumes.
type Checkout struct {
	Sale       Sale
	Adjustment StockAdjustment
}

// Cart is the transient list of products being sold. Lines keep their
// insertion order.
type Cart struct {
	lines  []CartLine
	warned map[string]bool // products whose low-stock notice was published
	notify func(Notice)
}

// NewCart returns an empty cart publishing its notices to notify, which may
// be nil.
func NewCart(notify func(Notice)) *Cart {
	if notify == nil {
		notify = func(Notice) {}
	}
	return &Cart{warned: make(map[string]bool), notify: notify}
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Lines returns a copy of the lines.
func (c *Cart) Lines() []CartLine { return slices.Clone(c.lines) }

// Line returns the line of a product, if any.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if i := c.find(productID); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

// Total returns the sum of all lines.
func (c *Cart) Total() Money {
	var total Money
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) find(productID string) int {
	return slices.IndexFunc(c.lines, func(l CartLine) bool { return l.ProductID == productID })
}

// AddLine adds one unit of p to the cart.
//
// It fails with ErrInsufficientStock when p has less than one unit in stock
// or when its line already takes the whole stock; the cart is then left
// unchanged.
func (c *Cart) AddLine(p Product) error {
	if p.IsDeleted {
		return fmt.Errorf("product %q: %w", p.ID, ErrNotFound)
	}
	if p.StockQuantity.LessThan(Q(1)) {
		return fmt.Errorf("cannot add %q with stock %v: %w", p.Name, p.StockQuantity, ErrInsufficientStock)
	}

	i := c.find(p.ID)
	if i < 0 {
		l := CartLine{ProductID: p.ID, Quantity: Q(1)}
		l.refresh(p)
		c.lines = append(c.lines, l)
		c.checkLowStock(l)
		return nil
	}

	l := &c.lines[i]
	q := l.Quantity.Add(Q(1))
	if q.GreaterThan(p.StockQuantity) {
		return fmt.Errorf("cannot take %v of %q with stock %v: %w", q, p.Name, p.StockQuantity, ErrInsufficientStock)
	}
	l.refresh(p)
	l.Quantity = q
	c.checkLowStock(*l)
	return nil
}

// SetQuantity sets the quantity of a product already in the cart. A
// quantity of zero or less removes the line.
//
// The quantity must be written with the precision of the product unit and
// must not exceed the known stock. On error the cart is unchanged.
func (c *Cart) SetQuantity(productID string, q Quantity) error {
	i := c.find(productID)
	if i < 0 {
		return fmt.Errorf("product %q is not in the cart: %w", productID, ErrNotFound)
	}
	l := &c.lines[i]
	if err := l.UnitType.ValidateQuantity(q); err != nil {
		return err
	}
	if !q.IsPositive() {
		c.RemoveLine(productID)
		return nil
	}
	if q.GreaterThan(l.StockQuantity) {
		return fmt.Errorf("cannot take %v of %q with stock %v: %w", q, l.Name, l.StockQuantity, ErrInsufficientStock)
	}
	l.Quantity = q
	c.checkLowStock(*l)
	return nil
}

// RemoveLine removes the line of a product. It reports whether there was
// one.
func (c *Cart) RemoveLine(productID string) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

// Clear empties the cart and forgets the low-stock notices already
// published.
func (c *Cart) Clear() {
	c.lines = nil
	clear(c.warned)
}

// ReconcileAfterStockChange applies stock deltas to the cached stock of the
// matching lines. A line whose quantity exceeds the new stock is clamped to
// it; a line left without stock is removed.
func (c *Cart) ReconcileAfterStockChange(deltas []StockDelta) {
	for _, d := range deltas {
		i := c.find(d.ProductID)
		if i < 0 {
			continue
		}
		c.lines[i].StockQuantity = c.lines[i].StockQuantity.Add(d.Delta)
		c.fit(i)
	}
}

// ReconcileAfterProductEdit refreshes the line of p with its new figures,
// with the same clamping rule as ReconcileAfterStockChange. A deleted
// product leaves the cart.
func (c *Cart) ReconcileAfterProductEdit(p Product) {
	i := c.find(p.ID)
	if i < 0 {
		return
	}
	if p.IsDeleted {
		c.RemoveLine(p.ID)
		c.notify(Notice{Kind: NoticeCartAdjusted, ProductID: p.ID, Message: fmt.Sprintf("%s removed from the cart: product deleted", p.Name)})
		return
	}
	c.lines[i].refresh(p)
	c.fit(i)
}

// fit clamps the quantity of line i to its cached stock, or removes the line
// when there is no stock left.
func (c *Cart) fit(i int) {
	l := c.lines[i]
	switch {
	case !l.StockQuantity.IsPositive():
		c.lines = slices.Delete(c.lines, i, i+1)
		c.notify(Notice{Kind: NoticeCartAdjusted, ProductID: l.ProductID, Message: fmt.Sprintf("%s removed from the cart: out of stock", l.Name)})
	case l.Quantity.GreaterThan(l.StockQuantity):
		c.lines[i].Quantity = l.StockQuantity
		c.notify(Notice{Kind: NoticeCartAdjusted, ProductID: l.ProductID, Message: fmt.Sprintf("%s reduced to %v: stock changed", l.Name, l.StockQuantity)})
	}
}

func (c *Cart) checkLowStock(l CartLine) {
	if c.warned[l.ProductID] {
		return
	}
	if l.StockQuantity.Sub(l.Quantity).LessThanOrEqual(l.MinStockQuantity) {
		c.warned[l.ProductID] = true
		c.notify(Notice{Kind: NoticeLowStock, ProductID: l.ProductID, Message: fmt.Sprintf("minimum stock reached for %s", l.Name)})
	}
}

// Checkout builds the sale of the cart content paid with payment at the
// given time, and the stock adjustment it implies.
//
// The cart is neither cleared nor recorded: the caller does both once the
// sale is accepted.
func (c *Cart) Checkout(payment PaymentMethod, at time.Time) (Checkout, error) {
	if len(c.lines) == 0 {
		return Checkout{}, ErrEmptyCart
	}
	if !slices.Contains(PaymentMethods, payment) {
		return Checkout{}, &ValidationError{Field: "payment method", Value: payment, Reason: "want card, pix or cash"}
	}
	lines := make([]SaleLine, 0, len(c.lines))
	deltas := make([]StockDelta, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, SaleLine{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			StockQuantity: l.StockQuantity,
			UnitPrice:     l.Price,
		})
		deltas = append(deltas, StockDelta{ProductID: l.ProductID, Delta: l.Quantity.Neg()})
	}
	return Checkout{
		Sale:       NewSale(at, payment, lines...),
		Adjustment: NewStockAdjustment(at, deltas...),
	}, nil
}
