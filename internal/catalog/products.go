package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
)

// DefaultPage mirrors the listing the storefront home screen asks for.
var DefaultPage = port.Page{Limit: 100, Offset: 10}

var _ port.Catalog = (*Client)(nil)

func (c *Client) Products(ctx context.Context, page port.Page) ([]domain.Product, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPage.Limit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	values := url.Values{}
	values.Set("limit", strconv.Itoa(page.Limit))
	values.Set("offset", strconv.Itoa(page.Offset))

	var list domain.ProductList
	if err := c.Get(ctx, "/products?"+values.Encode(), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Product(ctx context.Context, id int) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, fmt.Errorf("product id required")
	}

	var p domain.Product
	if err := c.Get(ctx, "/products/"+strconv.Itoa(id), &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.Get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// FilterProducts queries the catalog with the server-side filters and then
// applies the price band locally. Without any server-side filter it falls back
// to the default listing.
func (c *Client) FilterProducts(ctx context.Context, filter port.ProductFilter) ([]domain.Product, error) {
	if err := validateBand(filter.Band); err != nil {
		return nil, err
	}

	values := url.Values{}
	if title := strings.TrimSpace(filter.Title); title != "" {
		values.Set("title", title)
	}
	if filter.CategoryID > 0 {
		values.Set("categoryId", strconv.Itoa(filter.CategoryID))
	}
	if filter.PriceMin > 0 {
		values.Set("price_min", strconv.Itoa(filter.PriceMin))
	}
	if filter.PriceMax > 0 {
		values.Set("price_max", strconv.Itoa(filter.PriceMax))
	}

	var (
		items []domain.Product
		err   error
	)
	if len(values) == 0 {
		items, err = c.Products(ctx, DefaultPage)
	} else {
		var list domain.ProductList
		err = c.Get(ctx, "/products/?"+values.Encode(), &list)
		items = list
	}
	if err != nil {
		return nil, err
	}

	return FilterByBand(items, filter.Band), nil
}

var (
	fifty      = decimal.NewFromInt(50)
	twoHundred = decimal.NewFromInt(200)
)

func validateBand(band port.PriceBand) error {
	switch band {
	case port.PriceBandAny, port.PriceBandUnder50, port.PriceBand50To200, port.PriceBandAbove200:
		return nil
	default:
		return fmt.Errorf("unknown price band %q", band)
	}
}

// FilterByBand keeps the products whose price falls inside band. Bounds of
// the middle band are inclusive.
func FilterByBand(items []domain.Product, band port.PriceBand) []domain.Product {
	if band == port.PriceBandAny {
		return items
	}

	out := make([]domain.Product, 0, len(items))
	for _, p := range items {
		var keep bool
		switch band {
		case port.PriceBandUnder50:
			keep = p.Price.LessThan(fifty)
		case port.PriceBand50To200:
			keep = p.Price.GreaterThanOrEqual(fifty) && p.Price.LessThanOrEqual(twoHundred)
		case port.PriceBandAbove200:
			keep = p.Price.GreaterThan(twoHundred)
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}
