package pdv

import (
	"cmp"
	"slices"

	"github.com/etnz/pdv/date"
)

// SalesFilter restricts a sales report. Zero fields do not filter.
type SalesFilter struct {
	Payment    PaymentMethod // only sales paid this way
	ProductIDs []string      // only these products
	Categories []string      // only products in one of these categories
}

func (f SalesFilter) acceptSale(s Sale) bool {
	return f.Payment == "" || s.Payment == f.Payment
}

func (f SalesFilter) acceptProduct(p Product) bool {
	if len(f.ProductIDs) > 0 && !slices.Contains(f.ProductIDs, p.ID) {
		return false
	}
	if len(f.Categories) > 0 && !slices.ContainsFunc(f.Categories, p.HasCategory) {
		return false
	}
	return true
}

// SalesReport is the per product summary of the sales of a period.
type SalesReport struct {
	Range  date.Range
	Filter SalesFilter
	Rows   []SalesRow
	Total  Money
}

// SalesRow is the sales of one product.
type SalesRow struct {
	Product  Product
	Quantity Quantity        // total quantity sold
	Sales    int             // number of sales including the product
	Payments []PaymentMethod // distinct payment methods used, sorted
	Total    Money           // sum of quantity × price at sale
}

// NewSalesReport computes the sales of the days of r accepted by f.
//
// Rows follow the catalog order and only products actually sold are listed.
// Deleted products are reported too: their sales are still revenue. A sold
// product missing from the catalog is reported under its id.
func NewSalesReport(l *Ledger, c *Catalog, r date.Range, f SalesFilter) *SalesReport {
	report := &SalesReport{Range: r, Filter: f}

	rows := make(map[string]*SalesRow)
	for _, a := range l.Actions(OnDays(r), OfType(ActSale)) {
		sale, ok := a.(Sale)
		if !ok || !f.acceptSale(sale) {
			continue
		}
		for _, line := range sale.Lines {
			row, exists := rows[line.ProductID]
			if !exists {
				p, known := c.Product(line.ProductID)
				if !known {
					p = Product{ID: line.ProductID, Name: line.ProductID, UnitType: Unit}
				}
				if !f.acceptProduct(p) {
					continue
				}
				row = &SalesRow{Product: p}
				rows[line.ProductID] = row
			}
			row.Quantity = row.Quantity.Add(line.Quantity)
			row.Total = row.Total.Add(line.Total())
			row.Sales++
			if sale.Payment != "" && !slices.Contains(row.Payments, sale.Payment) {
				row.Payments = append(row.Payments, sale.Payment)
			}
		}
	}

	order := make(map[string]int, c.Len())
	for i, p := range c.products {
		order[p.ID] = i
	}
	for _, row := range rows {
		slices.Sort(row.Payments)
		report.Rows = append(report.Rows, *row)
		report.Total = report.Total.Add(row.Total)
	}
	slices.SortFunc(report.Rows, func(a, b SalesRow) int {
		ia, oka := order[a.Product.ID]
		ib, okb := order[b.Product.ID]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		default:
			return cmp.Compare(a.Product.ID, b.Product.ID)
		}
	})
	return report
}

// SalesReport returns the sales report of r, see [NewSalesReport].
func (s *Session) SalesReport(r date.Range, f SalesFilter) *SalesReport {
	return NewSalesReport(s.ledger, s.catalog, r, f)
}
