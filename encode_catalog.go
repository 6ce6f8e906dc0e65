package pdv

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeCatalog decodes the product file format: a JSON array of products.
func DecodeCatalog(r io.Reader) ([]Product, error) {
	var products []Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("could not read product array: %w", err)
	}
	return products, nil
}

// EncodeCatalog writes products in the product file format, one product per
// line.
func EncodeCatalog(w io.Writer, products []Product) error {
	return encodeArray(w, products)
}
