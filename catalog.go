package pdv

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Catalog is the authoritative store of products and of their stock.
//
// Stock only changes through signed deltas (ApplyAdjustment) or through a
// whole product record supplied by Put. Every change rewrites the catalog
// file.
type Catalog struct {
	products []Product     // in file order
	index    map[string]int // index products by id
	store    *fileStore     // nil for an in-memory catalog
	logger   *zap.Logger
}

// NewCatalog creates an in-memory catalog holding products.
func NewCatalog(products ...Product) *Catalog {
	c := &Catalog{logger: zap.NewNop()}
	c.reset(products)
	return c
}

// LoadCatalog opens the product file at path, with the same lenient rules
// as LoadLedger: a missing or unreadable file yields an empty catalog.
func LoadCatalog(path string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("store", "catalog"))
	c := &Catalog{store: newFileStore(path, logger), logger: logger}
	c.reset(nil)

	data, err := c.store.load()
	if err != nil {
		logger.Error("could not read catalog, starting empty", zap.Error(err))
		return c
	}
	if len(bytes.TrimSpace(data)) == 0 {
		logger.Info("no catalog yet, starting empty", zap.String("path", path))
		return c
	}
	products, err := DecodeCatalog(bytes.NewReader(data))
	if err != nil {
		logger.Error("could not decode catalog, starting empty", zap.String("path", path), zap.Error(err))
		c.store.quarantine()
		return c
	}
	c.reset(products)
	logger.Debug("catalog loaded", zap.String("path", path), zap.Int("products", len(products)))
	return c
}

func (c *Catalog) reset(products []Product) {
	c.products = products
	c.index = make(map[string]int, len(products))
	for i, p := range products {
		if _, exists := c.index[p.ID]; exists {
			c.logger.Warn("duplicate product id, keeping the last one", zap.String("id", p.ID))
		}
		c.index[p.ID] = i
	}
}

// Len returns the number of products, deleted ones included.
func (c *Catalog) Len() int { return len(c.products) }

// Product returns the product with this id, deleted or not.
func (c *Catalog) Product(id string) (Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Active returns the products that are not deleted, in catalog order.
func (c *Catalog) Active() []Product {
	var res []Product
	for _, p := range c.products {
		if !p.IsDeleted {
			res = append(res, p)
		}
	}
	return res
}

// Categories returns the categories of active products, in order of first
// appearance.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var res []string
	for _, p := range c.Active() {
		for _, cat := range p.Categories {
			if !seen[cat] {
				seen[cat] = true
				res = append(res, cat)
			}
		}
	}
	return res
}

// LowStock returns the active products whose stock reached their minimum.
func (c *Catalog) LowStock() []Product {
	var res []Product
	for _, p := range c.Active() {
		if p.IsLow() {
			res = append(res, p)
		}
	}
	return res
}

// Put adds p to the catalog, or replaces the product with the same id.
func (c *Catalog) Put(p Product) (*Write, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if i, ok := c.index[p.ID]; ok {
		c.products[i] = p
		c.logger.Debug("product updated", zap.String("id", p.ID))
	} else {
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p)
		c.logger.Debug("product added", zap.String("id", p.ID))
	}
	return c.persist(), nil
}

// Delete flags the product as deleted.
func (c *Catalog) Delete(id string) (*Write, error) {
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	c.products[i].IsDeleted = true
	c.logger.Info("product deleted", zap.String("id", id))
	return c.persist(), nil
}

// ApplyAdjustment adds each delta to the stock of its product.
//
// Stock is neither clamped nor checked: it may go negative. Deltas of
// unknown products are skipped.
func (c *Catalog) ApplyAdjustment(deltas []StockDelta) *Write {
	for _, d := range deltas {
		i, ok := c.index[d.ProductID]
		if !ok {
			c.logger.Warn("stock delta for unknown product skipped", zap.String("id", d.ProductID), zap.Stringer("delta", d.Delta))
			continue
		}
		p := &c.products[i]
		p.StockQuantity = p.StockQuantity.Add(d.Delta)
		if p.StockQuantity.IsNegative() {
			c.logger.Warn("negative stock", zap.String("id", p.ID), zap.Stringer("stock", p.StockQuantity))
		}
	}
	return c.persist()
}

// Flush waits for every pending write of the catalog file.
func (c *Catalog) Flush() { c.store.flush() }

func (c *Catalog) persist() *Write {
	return c.store.save(func(w io.Writer) error { return EncodeCatalog(w, c.products) })
}
