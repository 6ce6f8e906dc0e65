package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/date"
)

func TestQuantity(t *testing.T) {
	assert.Equal(t, "3 un", Quantity(pdv.Q(3), pdv.Unit))
	assert.Equal(t, "1.25 kg", Quantity(pdv.Q(1.25), pdv.Kilo))
	assert.Equal(t, "0.5 l", Quantity(pdv.Q(0.5), pdv.Liter))
}

func TestCashierMarkdown(t *testing.T) {
	rows := []pdv.CashRow{
		{Day: date.New(2025, time.August, 2), InitialFloat: pdv.M(15), TotalCashSales: pdv.M(0)},
		{Day: date.New(2025, time.August, 1), InitialFloat: pdv.M(20), TotalCashSales: pdv.M(25), Retired: pdv.M(25).Ptr(), IsFullyRetired: true},
	}
	got := CashierMarkdown(rows)
	assert.Contains(t, got, "# Cash register")
	assert.Contains(t, got, "02/08/2025")
	assert.Contains(t, got, "R$25,00")
	assert.Contains(t, got, "**closed**")
	assert.Contains(t, got, "open")
}

func TestSalesMarkdown(t *testing.T) {
	r := &pdv.SalesReport{
		Range:  date.Range{From: date.New(2025, time.August, 1), To: date.New(2025, time.August, 1)},
		Filter: pdv.SalesFilter{Payment: pdv.Cash},
		Rows: []pdv.SalesRow{{
			Product:  pdv.Product{ID: "a", Name: "Arroz", Price: pdv.M(5.5), UnitType: pdv.Kilo, Categories: []string{"grãos"}},
			Quantity: pdv.Q(2),
			Sales:    1,
			Payments: []pdv.PaymentMethod{pdv.Cash},
			Total:    pdv.M(11),
		}},
		Total: pdv.M(11),
	}
	got := SalesMarkdown(r)
	assert.Contains(t, got, "# Sales on 01/08/2025")
	assert.Contains(t, got, "payment: cash")
	assert.Contains(t, got, "Arroz")
	assert.Contains(t, got, "2 kg")
	assert.Contains(t, got, "**R$11,00**")

	empty := SalesMarkdown(&pdv.SalesReport{})
	assert.Contains(t, empty, "since the beginning")
	assert.Contains(t, empty, "No sales.")
}

func TestHistoryMarkdown(t *testing.T) {
	r := &pdv.HistoryReport{
		Product: pdv.Product{ID: "a", Name: "Arroz", StockQuantity: pdv.Q(7), UnitType: pdv.Unit},
		Entries: []pdv.HistoryEntry{
			{Date: time.Date(2025, time.August, 1, 11, 0, 0, 0, time.Local), Type: pdv.ActStock, Delta: pdv.Q(5), Stock: pdv.Q(7)},
			{Date: time.Date(2025, time.August, 1, 10, 0, 0, 0, time.Local), Type: pdv.ActSale, Delta: pdv.Q(-3), Price: pdv.M(2), Payment: pdv.Pix, Stock: pdv.Q(2)},
		},
	}
	got := HistoryMarkdown(r)
	assert.Contains(t, got, "# History of Arroz")
	assert.Contains(t, got, "+5")
	assert.Contains(t, got, "-3")
	assert.Contains(t, got, "01/08/2025 10:00")
	assert.Contains(t, got, "pix")
}

func TestProductsMarkdown(t *testing.T) {
	products := []pdv.Product{
		{ID: "a", Name: "Arroz", Price: pdv.M(5), StockQuantity: pdv.Q(10), MinStockQuantity: pdv.Q(2), UnitType: pdv.Unit},
		{ID: "b", Name: "Feijão", Price: pdv.M(7), StockQuantity: pdv.Q(1), MinStockQuantity: pdv.Q(2), UnitType: pdv.Kilo},
	}
	got := ProductsMarkdown(products)
	assert.Contains(t, got, "# Products")
	assert.Contains(t, got, "## Low stock")
	assert.Contains(t, got, "Feijão: **1 kg**")

	got = ProductsMarkdown(products[:1])
	assert.NotContains(t, got, "Low stock")
}

func TestReceiptMarkdown(t *testing.T) {
	c := pdv.NewCatalog(pdv.Product{ID: "a", Name: "Arroz", Price: pdv.M(2.5), StockQuantity: pdv.Q(10), UnitType: pdv.Unit})
	at := time.Date(2025, time.August, 1, 10, 30, 0, 0, time.Local)
	opening := pdv.NewCashSnapshot(at, pdv.M(20), nil)
	r := pdv.Receipt{
		Sale: pdv.NewSale(at, pdv.Cash,
			pdv.SaleLine{ProductID: "a", Quantity: pdv.Q(2), StockQuantity: pdv.Q(10), UnitPrice: pdv.M(2.5)},
			pdv.SaleLine{ProductID: "x", Quantity: pdv.Q(1), StockQuantity: pdv.Q(1), UnitPrice: pdv.M(1)},
		),
		Snapshot: &opening,
	}
	got := ReceiptMarkdown(r, c)
	assert.Contains(t, got, "# Sale of 01/08/2025 10:30")
	assert.Contains(t, got, "Paid by **cash**.")
	assert.Contains(t, got, "| Arroz | 2 un | R$2,50 | R$5,00 |")
	assert.Contains(t, got, "| x | 1 un | R$1,00 | R$1,00 |")
	assert.Contains(t, got, "**R$6,00**")
	assert.Contains(t, got, "Opening float of the day recorded: R$20,00.")
}

func TestRetirementMarkdown(t *testing.T) {
	got := RetirementMarkdown(pdv.Retirement{Kind: pdv.PartialRetirement, Day: date.New(2025, time.August, 1), Amount: pdv.M(10), Carry: pdv.M(15)})
	assert.Contains(t, got, "partial")
	assert.Contains(t, got, "**R$10,00**")
	assert.Contains(t, got, "R$15,00")
}
