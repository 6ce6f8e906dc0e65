package api

import (
	"time"

	"github.com/etnz/pdv"
	"github.com/etnz/pdv/date"
)

type cartLineDTO struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Quantity      pdv.Quantity `json:"quantity"`
	Price         pdv.Money    `json:"price"`
	StockQuantity pdv.Quantity `json:"stockQuantity"`
	UnitType      pdv.UnitType `json:"unitType"`
	Total         pdv.Money    `json:"total"`
}

type cartDTO struct {
	Lines []cartLineDTO `json:"lines"`
	Total pdv.Money     `json:"total"`
}

func newCartDTO(c *pdv.Cart) cartDTO {
	dto := cartDTO{Lines: []cartLineDTO{}, Total: c.Total()}
	for _, l := range c.Lines() {
		dto.Lines = append(dto.Lines, cartLineDTO{
			ID:            l.ProductID,
			Name:          l.Name,
			Quantity:      l.Quantity,
			Price:         l.Price,
			StockQuantity: l.StockQuantity,
			UnitType:      l.UnitType,
			Total:         l.Total(),
		})
	}
	return dto
}

type cashRowDTO struct {
	Day            date.Date  `json:"day"`
	InitialValue   pdv.Money  `json:"initialValue"`
	TotalCashSales pdv.Money  `json:"totalCashSales"`
	RetiredValue   *pdv.Money `json:"retiredValue,omitempty"`
	FullyRetired   bool       `json:"fullyRetired"`
	InRegister     pdv.Money  `json:"inRegister"`
}

func newCashRowDTO(r pdv.CashRow) cashRowDTO {
	return cashRowDTO{
		Day:            r.Day,
		InitialValue:   r.InitialFloat,
		TotalCashSales: r.TotalCashSales,
		RetiredValue:   r.Retired,
		FullyRetired:   r.IsFullyRetired,
		InRegister:     r.InRegister(),
	}
}

type retirementDTO struct {
	Kind   pdv.RetirementKind `json:"kind"`
	Day    date.Date          `json:"day"`
	Amount pdv.Money          `json:"amount"`
	Carry  pdv.Money          `json:"carry"`
}

func newRetirementDTO(r pdv.Retirement) retirementDTO {
	return retirementDTO{Kind: r.Kind, Day: r.Day, Amount: r.Amount, Carry: r.Carry}
}

type salesRowDTO struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Quantity pdv.Quantity        `json:"quantity"`
	Sales    int                 `json:"sales"`
	Payments []pdv.PaymentMethod `json:"payments"`
	Total    pdv.Money           `json:"total"`
}

type salesDTO struct {
	From  date.Date     `json:"from"`
	To    date.Date     `json:"to"`
	Rows  []salesRowDTO `json:"rows"`
	Total pdv.Money     `json:"total"`
}

func newSalesDTO(r *pdv.SalesReport) salesDTO {
	dto := salesDTO{From: r.Range.From, To: r.Range.To, Rows: []salesRowDTO{}, Total: r.Total}
	for _, row := range r.Rows {
		name := row.Product.Name
		if name == "" {
			name = row.Product.ID
		}
		dto.Rows = append(dto.Rows, salesRowDTO{
			ID:       row.Product.ID,
			Name:     name,
			Quantity: row.Quantity,
			Sales:    row.Sales,
			Payments: row.Payments,
			Total:    row.Total,
		})
	}
	return dto
}

type historyEntryDTO struct {
	Date    time.Time         `json:"date"`
	Type    pdv.ActionType    `json:"type"`
	Delta   pdv.Quantity      `json:"delta"`
	Price   *pdv.Money        `json:"price,omitempty"`
	Payment pdv.PaymentMethod `json:"paymentType,omitempty"`
	Stock   pdv.Quantity      `json:"stock"`
}

type historyDTO struct {
	Product pdv.Product       `json:"product"`
	Entries []historyEntryDTO `json:"entries"`
}

func newHistoryDTO(h *pdv.HistoryReport) historyDTO {
	dto := historyDTO{Product: h.Product, Entries: []historyEntryDTO{}}
	for _, e := range h.Entries {
		entry := historyEntryDTO{Date: e.Date, Type: e.Type, Delta: e.Delta, Payment: e.Payment, Stock: e.Stock}
		if e.Type == pdv.ActSale {
			entry.Price = e.Price.Ptr()
		}
		dto.Entries = append(dto.Entries, entry)
	}
	return dto
}

type noticeDTO struct {
	Kind      pdv.NoticeKind `json:"kind"`
	ProductID string         `json:"productId,omitempty"`
	Message   string         `json:"message"`
}
