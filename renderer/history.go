package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/pdv"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the stock history of a product.
func HistoryMarkdown(r *pdv.HistoryReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("History of %s", r.Product.Name))
	doc.PlainText(fmt.Sprintf("Current stock: %s", md.Bold(Quantity(r.Product.StockQuantity, r.Product.UnitType))))

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Date", "Action", "Change", "Price", "Payment", "Stock"},
		Rows:   [][]string{},
	}
	for _, e := range r.Entries {
		action, price, payment := "stock", "-", "-"
		if e.Type == pdv.ActSale {
			action, price, payment = "sale", e.Price.String(), string(e.Payment)
		}
		table.Rows = append(table.Rows, []string{
			e.Date.Local().Format("02/01/2006 15:04"),
			action,
			signed(e.Delta),
			price,
			payment,
			Quantity(e.Stock, r.Product.UnitType),
		})
	}
	doc.Table(table)
	return doc.String()
}

// signed formats a stock change with an explicit sign.
func signed(q pdv.Quantity) string {
	if q.IsPositive() {
		return "+" + q.String()
	}
	return q.String()
}
