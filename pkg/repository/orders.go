package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

// OrderRepository implements checkout.OrderStore and profile.OrderHistory on
// MySQL via gorm.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// InTransaction hands the closure a repository bound to the transaction;
// any error rolls back everything written through it.
func (r *OrderRepository) InTransaction(ctx context.Context, fn func(tx checkout.OrderStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{db: tx})
	})
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("LineItems").Create(o).Error
}

func (r *OrderRepository) CreateLineItem(ctx context.Context, item *models.OrderLineItem) error {
	return r.db.WithContext(ctx).Omit("Product").Create(item).Error
}

func (r *OrderRepository) UpdateTotals(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"item_total":    o.ItemTotal,
			"delivery_cost": o.DeliveryCost,
			"grand_total":   o.GrandTotal,
		}).Error
}

func (r *OrderRepository) OrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("LineItems.Product").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checkout.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderNumber, err)
	}
	return &order, nil
}

func (r *OrderRepository) SetProfile(ctx context.Context, orderID, profileID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("user_profile_id", profileID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return checkout.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) OrdersForProfile(ctx context.Context, profileID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("user_profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for profile %s: %w", profileID, err)
	}
	return orders, nil
}
