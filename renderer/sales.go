package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/date"
	md "github.com/nao1215/markdown"
)

// SalesMarkdown renders the per product sales report.
func SalesMarkdown(r *pdv.SalesReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Sales %s", rangeTitle(r.Range)))

	var filters []string
	if r.Filter.Payment != "" {
		filters = append(filters, "payment: "+string(r.Filter.Payment))
	}
	if len(r.Filter.Categories) > 0 {
		filters = append(filters, "categories: "+strings.Join(r.Filter.Categories, ", "))
	}
	if len(r.Filter.ProductIDs) > 0 {
		filters = append(filters, "products: "+strings.Join(r.Filter.ProductIDs, ", "))
	}
	if len(filters) > 0 {
		doc.PlainText("Filtered by " + strings.Join(filters, "; ") + ".")
	}

	if len(r.Rows) == 0 {
		doc.PlainText("No sales.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Product", "Quantity", "Categories", "Price", "Payments", "Total"},
		Rows:   [][]string{},
	}
	for _, row := range r.Rows {
		name := row.Product.Name
		if row.Product.IsDeleted {
			name += " (deleted)"
		}
		categories := "-"
		if len(row.Product.Categories) > 0 {
			categories = strings.Join(row.Product.Categories, ", ")
		}
		payments := make([]string, 0, len(row.Payments))
		for _, p := range row.Payments {
			payments = append(payments, string(p))
		}
		table.Rows = append(table.Rows, []string{
			name,
			Quantity(row.Quantity, row.Product.UnitType),
			categories,
			row.Product.Price.String(),
			strings.Join(payments, ", "),
			md.Bold(row.Total.String()),
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", "", "", md.Bold(r.Total.String())})
	doc.Table(table)
	return doc.String()
}

// rangeTitle names a date range for report titles.
func rangeTitle(r date.Range) string {
	switch {
	case r.IsZero():
		return "since the beginning"
	case r.From == r.To:
		return "on " + r.From.Format("02/01/2006")
	case r.From.IsZero():
		return "until " + r.To.Format("02/01/2006")
	case r.To.IsZero():
		return "since " + r.From.Format("02/01/2006")
	default:
		return fmt.Sprintf("from %s to %s", r.From.Format("02/01/2006"), r.To.Format("02/01/2006"))
	}
}
