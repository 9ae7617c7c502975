package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

// CatalogRepository implements catalog.Repository on MySQL via gorm.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// sortExpression maps a browse sort key onto an ORDER BY clause. Name sorts
// case-insensitively, unknown keys fall back to newest-first.
func sortExpression(sort, direction string) string {
	var column string
	switch sort {
	case "name":
		column = "LOWER(products.name)"
	case "price":
		column = "products.price"
	case "rating":
		column = "products.rating"
	case "category":
		column = "products.category_id"
	default:
		return "products.created_at DESC"
	}
	if direction == "desc" {
		return column + " DESC"
	}
	return column + " ASC"
}

func (r *CatalogRepository) List(ctx context.Context, q catalog.Query) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")

	if len(q.Categories) > 0 {
		query = query.Where("category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("name IN ?", q.Categories))
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
	}

	var products []models.Product
	if err := query.Order(sortExpression(q.Sort, q.Direction)).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepository) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category %s: %w", name, err)
	}
	return &category, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(p).Error
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(p).Error
}

func (r *CatalogRepository) DeleteProducts(ctx context.Context, ids []string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Product{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete products: %w", result.Error)
	}
	return result.RowsAffected, nil
}
