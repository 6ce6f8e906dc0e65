package renderer

import (
	"time"

	"github.com/etnz/pdv"
)

// receipt is the template data of a sale receipt.
type receipt struct {
	Date    time.Time
	Payment pdv.PaymentMethod
	Lines   []receiptLine
	Total   pdv.Money
	Opening *pdv.CashSnapshot
}

type receiptLine struct {
	Name     string
	Quantity pdv.Quantity
	Unit     pdv.UnitType
	Price    pdv.Money
	Total    pdv.Money
}

// ReceiptMarkdown renders a checkout receipt. Product names and units are
// resolved in catalog c, unknown products are shown by id.
func ReceiptMarkdown(r pdv.Receipt, c *pdv.Catalog) string {
	data := receipt{
		Date:    r.Sale.When(),
		Payment: r.Sale.Payment,
		Total:   r.Sale.Total(),
		Opening: r.Snapshot,
	}
	for _, l := range r.Sale.Lines {
		line := receiptLine{Name: l.ProductID, Quantity: l.Quantity, Unit: pdv.Unit, Price: l.UnitPrice, Total: l.Total()}
		if p, ok := c.Product(l.ProductID); ok {
			line.Name, line.Unit = p.Name, p.UnitType
		}
		data.Lines = append(data.Lines, line)
	}
	partials := map[string]string{
		"receipt_lines": "receipt_lines.md",
	}
	return renderTemplate("receipt", "receipt.md", partials, data)
}
