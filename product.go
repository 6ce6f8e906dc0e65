package pdv

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// UnitType is the unit a product is counted and sold in.
type UnitType string

const (
	Unit  UnitType = "unit"
	Kilo  UnitType = "kg"
	Liter UnitType = "liter"
)

// ParseUnitType parses a unit type. The names of older product files ("un",
// "litro") are accepted, and an empty string means Unit.
func ParseUnitType(s string) (UnitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unit", "un", "unidade":
		return Unit, nil
	case "kg", "kilo":
		return Kilo, nil
	case "liter", "litre", "litro", "l":
		return Liter, nil
	default:
		return "", &ValidationError{Field: "unit type", Value: s, Reason: "want unit, kg or liter"}
	}
}

// Places returns the number of fraction digits allowed for quantities in
// that unit.
func (u UnitType) Places() int32 {
	switch u {
	case Kilo, Liter:
		return 2
	default:
		return 0
	}
}

// ValidateQuantity checks that q is written with the precision of the unit:
// whole units, or at most two decimals for kg and liter.
func (u UnitType) ValidateQuantity(q Quantity) error {
	if !q.HasPlaces(u.Places()) {
		reason := "must be a whole number"
		if u.Places() > 0 {
			reason = fmt.Sprintf("at most %d decimal places for %s", u.Places(), u)
		}
		return &ValidationError{Field: "quantity", Value: q, Reason: reason}
	}
	return nil
}

func (u *UnitType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseUnitType(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Product is a record of the catalog. Products are never removed: a deleted
// product is flagged so that history still resolves it.
type Product struct {
	ID               string
	Name             string
	Price            Money
	StockQuantity    Quantity
	MinStockQuantity Quantity
	UnitType         UnitType
	Categories       []string
	Image            string // path of the picture, relative to the data dir
	IsDeleted        bool
}

// Validate checks a product record supplied for creation or edition.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return &ValidationError{Field: "product id", Value: p.ID, Reason: "must not be empty"}
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "product name", Value: p.Name, Reason: "must not be empty"}
	case p.Price.IsNegative():
		return &ValidationError{Field: "price", Value: p.Price, Reason: "must not be negative"}
	case !p.Price.Equal(p.Price.Round()):
		return &ValidationError{Field: "price", Value: p.Price.Decimal(), Reason: "more than two decimal places"}
	case p.MinStockQuantity.IsNegative():
		return &ValidationError{Field: "minimum stock", Value: p.MinStockQuantity, Reason: "must not be negative"}
	}
	if _, err := ParseUnitType(string(p.UnitType)); err != nil {
		return err
	}
	if err := p.UnitType.ValidateQuantity(p.StockQuantity); err != nil {
		return err
	}
	return p.UnitType.ValidateQuantity(p.MinStockQuantity)
}

// IsLow reports whether the stock reached the minimum stock.
func (p Product) IsLow() bool { return p.StockQuantity.LessThanOrEqual(p.MinStockQuantity) }

// HasCategory reports whether p belongs to category c.
func (p Product) HasCategory(c string) bool { return slices.Contains(p.Categories, c) }

func (p Product) MarshalJSON() ([]byte, error) {
	unit := p.UnitType
	if unit == "" {
		unit = Unit
	}
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	var o objectBuilder
	return o.field("id", p.ID).
		field("name", p.Name).
		field("price", p.Price).
		field("stockQuantity", p.StockQuantity).
		field("minStockQuantity", p.MinStockQuantity).
		field("unitType", unit).
		field("categories", categories).
		fieldIf(p.Image != "", "image", p.Image).
		fieldIf(p.IsDeleted, "isDeleted", true).
		bytes()
}

func (p *Product) UnmarshalJSON(b []byte) error {
	var temp struct {
		ID               string   `json:"id"`
		Name             string   `json:"name"`
		Price            Money    `json:"price"`
		StockQuantity    Quantity `json:"stockQuantity"`
		MinStockQuantity Quantity `json:"minStockQuantity"`
		UnitType         UnitType        `json:"unitType"`
		QuantityType     UnitType        `json:"quantityType"` // unit key of older files
		Categories       []string        `json:"categories"`
		Category         json.RawMessage `json:"category"` // single category of older files
		Image            *string         `json:"image"`
		IsDeleted        bool            `json:"isDeleted"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	if temp.UnitType == "" {
		temp.UnitType = temp.QuantityType
	}
	if temp.UnitType == "" {
		temp.UnitType = Unit
	}
	if len(temp.Categories) == 0 {
		category, err := legacyCategory(temp.Category)
		if err != nil {
			return err
		}
		if category != "" {
			temp.Categories = []string{category}
		}
	}
	*p = Product{
		ID:               temp.ID,
		Name:             temp.Name,
		Price:            temp.Price,
		StockQuantity:    temp.StockQuantity,
		MinStockQuantity: temp.MinStockQuantity,
		UnitType:         temp.UnitType,
		Categories:       temp.Categories,
		IsDeleted:        temp.IsDeleted,
	}
	if temp.Image != nil {
		p.Image = *temp.Image
	}
	return nil
}

// legacyCategory reads the single category of older files, written either as
// a string or as a {"label", "value"} option.
func legacyCategory(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return strings.TrimSpace(name), nil
	}
	var option struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &option); err != nil {
		return "", fmt.Errorf("invalid category %s: %w", raw, err)
	}
	if option.Label == "" {
		option.Label = option.Value
	}
	return strings.TrimSpace(option.Label), nil
}

var (
	_ json.Marshaler   = Product{}
	_ json.Unmarshaler = (*Product)(nil)
)
