package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Prices are persisted as JSON numbers, the shape the catalog serves.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog item as returned by the remote catalog. Only ID, Title,
// Price and Images matter to the cart; the rest is carried for display.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Images      []string        `json:"images"`

	Brand  string   `json:"brand,omitempty"`
	Stock  *int     `json:"stock,omitempty"`
	Rating *float64 `json:"rating,omitempty"`

	CreationAt time.Time `json:"creationAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Thumbnail returns the first image, or "" when the product has none.
func (p Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category is either a structured tag or, for some backends, a bare string.
// A bare string decodes into Name and Slug.
type Category struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image string `json:"image,omitempty"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Category{}
		return nil
	}

	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("category: %w", err)
		}
		*c = Category{Name: name, Slug: name}
		return nil
	}

	type plain Category
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	*c = Category(p)
	return nil
}

// ProductList decodes the catalog listing shapes seen across backends:
// a bare array, or an object wrapping the array under "products" or "recipes".
type ProductList []Product

func (l *ProductList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '[' {
		var items []Product
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("product list: %w", err)
		}
		*l = items
		return nil
	}

	var wrapped struct {
		Products []Product `json:"products"`
		Recipes  []Product `json:"recipes"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("product list: %w", err)
	}

	switch {
	case wrapped.Products != nil:
		*l = wrapped.Products
	case wrapped.Recipes != nil:
		*l = wrapped.Recipes
	default:
		*l = ProductList{}
	}
	return nil
}
