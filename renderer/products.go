package renderer

import (
	"bytes"
	"strings"

	"github.com/etnz/pdv"
	md "github.com/nao1215/markdown"
)

// ProductsMarkdown renders the catalog, followed by the products that
// reached their minimum stock, if any.
func ProductsMarkdown(products []pdv.Product) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Products")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Id", "Name", "Price", "Stock", "Minimum", "Categories"},
		Rows:   [][]string{},
	}
	for _, p := range products {
		table.Rows = append(table.Rows, []string{
			p.ID,
			p.Name,
			p.Price.String(),
			Quantity(p.StockQuantity, p.UnitType),
			Quantity(p.MinStockQuantity, p.UnitType),
			strings.Join(p.Categories, ", "),
		})
	}
	doc.Table(table)

	var low []string
	for _, p := range products {
		if p.IsLow() {
			low = append(low, p.Name+": "+md.Bold(Quantity(p.StockQuantity, p.UnitType)))
		}
	}
	if len(low) > 0 {
		doc.PlainText("")
		doc.H2("Low stock")
		doc.BulletList(low...)
	}
	return doc.String()
}
