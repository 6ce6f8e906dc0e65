package pdv

import (
	"fmt"
	"time"
)

// HistoryReport is the stock history of one product.
type HistoryReport struct {
	Product Product
	Entries []HistoryEntry // newest first
}

// HistoryEntry is a ledger action changing the stock of the product.
type HistoryEntry struct {
	Date    time.Time
	Type    ActionType
	Delta   Quantity      // signed change of stock
	Price   Money         // price at sale, zero for stock adjustments
	Payment PaymentMethod // empty for stock adjustments
	Stock   Quantity      // stock right after the change
}

// NewHistory lists the sales and stock adjustments of a product, newest
// first.
//
// The stock after each entry is rebuilt backwards from the current catalog
// stock.
func NewHistory(l *Ledger, c *Catalog, productID string) (*HistoryReport, error) {
	p, ok := c.Product(productID)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, ErrNotFound)
	}
	report := &HistoryReport{Product: p}

	stock := p.StockQuantity
	for _, a := range l.Actions(Touching(productID)) {
		entry := HistoryEntry{Date: a.When(), Type: a.What(), Stock: stock}
		switch v := a.(type) {
		case Sale:
			line, _ := v.Line(productID)
			entry.Delta = line.Quantity.Neg()
			entry.Price = line.UnitPrice
			entry.Payment = v.Payment
		case StockAdjustment:
			entry.Delta, _ = v.Delta(productID)
		case CashSnapshot:
			continue
		default:
			return nil, fmt.Errorf("unsupported action type in history: %T", a)
		}
		stock = stock.Sub(entry.Delta)
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}

// ProductHistory returns the history of a product, see [NewHistory].
func (s *Session) ProductHistory(productID string) (*HistoryReport, error) {
	return NewHistory(s.ledger, s.catalog, productID)
}
