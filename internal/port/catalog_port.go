package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type Page struct {
	Limit  int
	Offset int
}

// PriceBand narrows a listing client-side since the catalog cannot.
type PriceBand string

const (
	PriceBandAny      PriceBand = ""
	PriceBandUnder50  PriceBand = "under50"
	PriceBand50To200  PriceBand = "50to200"
	PriceBandAbove200 PriceBand = "above200"
)

type ProductFilter struct {
	Title      string
	CategoryID int
	PriceMin   int
	PriceMax   int
	Band       PriceBand
}

type Catalog interface {
	Products(ctx context.Context, page Page) ([]domain.Product, error)
	Product(ctx context.Context, id int) (domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	FilterProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}

// Authenticator is the subset of the catalog backend used for accounts.
// Login responses differ between backends, so tokens come back already
// extracted and the profile is mapped defensively by the implementation.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Tokens, error)
	Profile(ctx context.Context, accessToken string) (domain.User, error)
	Register(ctx context.Context, user domain.NewUser) (domain.User, error)
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}
