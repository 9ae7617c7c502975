package catalog

import (
	"context"
	"errors"

	"github.com/example/storefront/pkg/models"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrEmptySearch      = errors.New("no search criteria entered")
)

// Query captures the browse parameters: sort key and direction, category
// name filter, free-text search over name and description.
type Query struct {
	Sort       string
	Direction  string
	Categories []string
	Search     string
}

// Repository is the catalog persistence surface. The checkout core only ever
// reads ProductByID; the rest serves browsing and the admin surface.
type Repository interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, q Query) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProducts(ctx context.Context, ids []string) (int64, error)
}
