package renderer

import (
	"bytes"

	"github.com/etnz/pdv"
	md "github.com/nao1215/markdown"
)

// CashierMarkdown renders the cash register report, one row per day.
func CashierMarkdown(rows []pdv.CashRow) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Cash register")

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Day", "Initial float", "Cash sales", "Withdrawn", "In register", "Status"},
		Rows:   [][]string{},
	}
	for _, row := range rows {
		retired, status := "-", "open"
		if row.Retired != nil {
			retired, status = row.Retired.String(), "partially withdrawn"
		}
		if row.IsFullyRetired {
			status = md.Bold("closed")
		}
		table.Rows = append(table.Rows, []string{
			row.Day.Format("02/01/2006"),
			row.InitialFloat.String(),
			row.TotalCashSales.String(),
			retired,
			row.InRegister().String(),
			status,
		})
	}
	doc.Table(table)
	return doc.String()
}

// RetirementMarkdown renders the outcome of a cash withdrawal.
func RetirementMarkdown(r pdv.Retirement) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("Cash withdrawn on " + r.Day.Format("02/01/2006"))
	doc.BulletList(
		"Kind: "+string(r.Kind),
		"Withdrawn: "+md.Bold(r.Amount.String()),
		"Left for tomorrow: "+r.Carry.String(),
	)
	return doc.String()
}
