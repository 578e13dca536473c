package domain_test

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

func randomProduct() domain.Product {
	return productWithID(gofakeit.Number(1, 1_000_000))
}

func productWithID(id int) domain.Product {
	return domain.Product{
		ID:          id,
		Title:       gofakeit.ProductName(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Description: gofakeit.ProductDescription(),
		Category: domain.Category{
			ID:   gofakeit.Number(1, 50),
			Name: gofakeit.ProductCategory(),
		},
		Images: []string{gofakeit.URL()},
	}
}

func ids(products []domain.Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
