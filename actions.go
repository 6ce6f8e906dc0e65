package pdv

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/pdv/date"
)

// ActionType is a typed string for identifying ledger actions.
type ActionType string

// Action types, as persisted in the ledger file.
const (
	ActSale         ActionType = "sale"
	ActStock        ActionType = "stock"
	ActCashSnapshot ActionType = "cash-stock"
)

// PaymentMethod is how a sale was paid.
type PaymentMethod string

const (
	Card PaymentMethod = "card"
	Pix  PaymentMethod = "pix"
	Cash PaymentMethod = "cash"
)

// PaymentMethods lists the known payment methods in display order.
var PaymentMethods = []PaymentMethod{Card, Pix, Cash}

// ParsePaymentMethod parses a payment method. The portuguese names used by
// older ledger files ("cartao", "dinheiro") are accepted.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card", "cartao", "cartão":
		return Card, nil
	case "pix":
		return Pix, nil
	case "cash", "dinheiro":
		return Cash, nil
	default:
		return "", &ValidationError{Field: "payment method", Value: s, Reason: "want card, pix or cash"}
	}
}

func (p *PaymentMethod) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParsePaymentMethod(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Action is one entry of the ledger: a Sale, a StockAdjustment or a
// CashSnapshot. The set is closed; consumers switch on the concrete type.
type Action interface {
	What() ActionType // What returns the kind of action.
	When() time.Time  // When returns the instant the action was recorded.
	Day() date.Date   // Day returns the local calendar day of When.
	isAction()
}

// timestampFormat mimics the ISO-8601 strings written by the original
// desktop app: UTC with milliseconds.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

type baseAction struct {
	Type ActionType
	Date time.Time
}

func (a baseAction) What() ActionType { return a.Type }
func (a baseAction) When() time.Time  { return a.Date }
func (a baseAction) Day() date.Date   { return date.Of(a.Date) }
func (baseAction) isAction()          {}

// header starts the JSON object of an action with its date and type.
func (a baseAction) header() *objectBuilder {
	var o objectBuilder
	return o.field("date", a.Date.UTC().Format(timestampFormat)).field("type", a.Type)
}

func (a baseAction) MarshalJSON() ([]byte, error) { return a.header().bytes() }

func (a *baseAction) UnmarshalJSON(b []byte) error {
	var raw struct {
		Date string     `json:"date"`
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	on, err := time.Parse(time.RFC3339Nano, raw.Date)
	if err != nil {
		return fmt.Errorf("invalid action date %q: %w", raw.Date, err)
	}
	a.Type, a.Date = raw.Type, on
	return nil
}

// SaleLine is one product of a sale, with the figures captured at the time
// of the sale so that later product edits do not rewrite history.
type SaleLine struct {
	ProductID     string   `json:"id"`
	Quantity      Quantity `json:"quantity"`
	StockQuantity Quantity `json:"stockQuantity"` // stock before the sale
	UnitPrice     Money    `json:"price"`
}

// Total returns quantity × unit price.
func (l SaleLine) Total() Money { return l.UnitPrice.Mul(l.Quantity) }

// Sale records a completed checkout.
type Sale struct {
	baseAction
	Lines   []SaleLine
	Payment PaymentMethod
}

// NewSale creates a new Sale.
func NewSale(at time.Time, payment PaymentMethod, lines ...SaleLine) Sale {
	return Sale{
		baseAction: baseAction{Type: ActSale, Date: at},
		Lines:      lines,
		Payment:    payment,
	}
}

// Total returns the sum of all lines.
func (s Sale) Total() Money {
	var total Money
	for _, l := range s.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Line returns the line of the given product, if any.
func (s Sale) Line(productID string) (SaleLine, bool) {
	for _, l := range s.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return SaleLine{}, false
}

func (s Sale) MarshalJSON() ([]byte, error) {
	lines := s.Lines
	if lines == nil {
		lines = []SaleLine{}
	}
	return s.header().field("products", lines).field("paymentType", s.Payment).bytes()
}

func (s *Sale) UnmarshalJSON(b []byte) error {
	var temp struct {
		Products    []SaleLine    `json:"products"`
		PaymentType PaymentMethod `json:"paymentType"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	if err := s.baseAction.UnmarshalJSON(b); err != nil {
		return err
	}
	s.Lines, s.Payment = temp.Products, temp.PaymentType
	return nil
}

// StockDelta is a signed change of the stock of one product.
type StockDelta struct {
	ProductID string   `json:"id"`
	Delta     Quantity `json:"quantity"`
}

// StockAdjustment records a manual change of stock, or the stock consumed by
// a sale.
type StockAdjustment struct {
	baseAction
	Deltas []StockDelta
}

// NewStockAdjustment creates a new StockAdjustment.
func NewStockAdjustment(at time.Time, deltas ...StockDelta) StockAdjustment {
	return StockAdjustment{
		baseAction: baseAction{Type: ActStock, Date: at},
		Deltas:     deltas,
	}
}

// Delta returns the change applied to a product, if any.
func (a StockAdjustment) Delta(productID string) (Quantity, bool) {
	for _, d := range a.Deltas {
		if d.ProductID == productID {
			return d.Delta, true
		}
	}
	return Quantity{}, false
}

func (a StockAdjustment) MarshalJSON() ([]byte, error) {
	deltas := a.Deltas
	if deltas == nil {
		deltas = []StockDelta{}
	}
	return a.header().field("products", deltas).bytes()
}

func (a *StockAdjustment) UnmarshalJSON(b []byte) error {
	var temp struct {
		Products []StockDelta `json:"products"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	if err := a.baseAction.UnmarshalJSON(b); err != nil {
		return err
	}
	a.Deltas = temp.Products
	return nil
}

// CashSnapshot records the opening float of a day and, once the cash has
// been withdrawn, the retired amount.
type CashSnapshot struct {
	baseAction
	InitialFloat Money
	Retired      *Money // nil until the day is retired
}

// NewCashSnapshot creates a new CashSnapshot.
func NewCashSnapshot(at time.Time, initialFloat Money, retired *Money) CashSnapshot {
	return CashSnapshot{
		baseAction:   baseAction{Type: ActCashSnapshot, Date: at},
		InitialFloat: initialFloat,
		Retired:      retired,
	}
}

// IsRetired reports whether cash was withdrawn on that day.
func (c CashSnapshot) IsRetired() bool { return c.Retired != nil }

func (c CashSnapshot) MarshalJSON() ([]byte, error) {
	return c.header().
		field("products", []struct{}{}).
		field("initialValue", c.InitialFloat).
		fieldIf(c.Retired != nil, "retiredValue", c.Retired).
		bytes()
}

func (c *CashSnapshot) UnmarshalJSON(b []byte) error {
	var temp struct {
		InitialValue Money  `json:"initialValue"`
		RetiredValue *Money `json:"retiredValue"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	if err := c.baseAction.UnmarshalJSON(b); err != nil {
		return err
	}
	c.InitialFloat, c.Retired = temp.InitialValue, temp.RetiredValue
	return nil
}

// check that every action kind is a json marshall/unmarshaller type.
var (
	_ json.Marshaler   = Sale{}
	_ json.Unmarshaler = (*Sale)(nil)
	_ json.Marshaler   = StockAdjustment{}
	_ json.Unmarshaler = (*StockAdjustment)(nil)
	_ json.Marshaler   = CashSnapshot{}
	_ json.Unmarshaler = (*CashSnapshot)(nil)
)
