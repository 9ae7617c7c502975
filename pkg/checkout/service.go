package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/bag"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore is the persistence surface the materializer needs. The store
// handed to the InTransaction closure is bound to that transaction;
// returning an error from the closure rolls every write back.
type OrderStore interface {
	InTransaction(ctx context.Context, fn func(tx OrderStore) error) error
	CreateOrder(ctx context.Context, o *models.Order) error
	CreateLineItem(ctx context.Context, item *models.OrderLineItem) error
	UpdateTotals(ctx context.Context, o *models.Order) error
	OrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	SetProfile(ctx context.Context, orderID, profileID string) error
}

// Catalog is the read-only product lookup used while materializing.
type Catalog interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

// Auditor appends checkout events to the audit trail. Implementations may
// be slow; the service always calls it off the request path.
type Auditor interface {
	RecordEvent(ctx context.Context, action, entityID string, data map[string]interface{}) error
}

type Service struct {
	orders  OrderStore
	catalog Catalog
	pricer  *pricing.Builder
	bags    bag.Store
	audit   Auditor
	logger  *zap.Logger
}

func NewService(orders OrderStore, cat Catalog, pricer *pricing.Builder, bags bag.Store, audit Auditor, logger *zap.Logger) *Service {
	return &Service{
		orders:  orders,
		catalog: cat,
		pricer:  pricer,
		bags:    bags,
		audit:   audit,
		logger:  logger,
	}
}

// Materialize turns a validated order form plus a bag snapshot into a
// durable order reconciled with the payment intent id.
//
// The order shell is persisted first so the generated order number exists
// for the rest of the flow; every bag entry is then resolved against the
// live catalog and written as a line item; totals are computed last, all
// inside one transaction. A bag entry that no longer resolves aborts the
// transaction, so a ProductVanishedError guarantees zero persisted rows.
func (s *Service) Materialize(ctx context.Context, form *OrderForm, snapshot bag.Bag, intentID string) (*models.Order, error) {
	if invalid := form.Validate(); invalid != nil {
		return nil, invalid
	}
	if snapshot.IsEmpty() {
		return nil, pricing.ErrEmptyBag
	}

	snapshotJSON, err := snapshot.Snapshot()
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.orders.InTransaction(ctx, func(tx OrderStore) error {
		o := &models.Order{
			StripePID:   intentID,
			OriginalBag: snapshotJSON,
		}
		form.apply(o)
		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to create order shell: %w", err)
		}

		itemTotal := decimal.Zero
		for _, productID := range snapshot.ProductIDs() {
			quantity := snapshot[productID]
			product, err := s.catalog.ProductByID(ctx, productID)
			if err != nil {
				if errors.Is(err, catalog.ErrProductNotFound) {
					return &ProductVanishedError{ProductID: productID}
				}
				return fmt.Errorf("failed to resolve product %s: %w", productID, err)
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
			item := &models.OrderLineItem{
				OrderID:   o.ID,
				ProductID: product.ID,
				Product:   product,
				Quantity:  quantity,
				LineTotal: lineTotal,
			}
			if err := tx.CreateLineItem(ctx, item); err != nil {
				return fmt.Errorf("failed to create line item for product %s: %w", productID, err)
			}
			o.LineItems = append(o.LineItems, *item)
			itemTotal = itemTotal.Add(lineTotal)
		}

		o.ItemTotal = itemTotal
		o.DeliveryCost = s.pricer.DeliveryCost(itemTotal)
		o.GrandTotal = itemTotal.Add(o.DeliveryCost)
		if err := tx.UpdateTotals(ctx, o); err != nil {
			return fmt.Errorf("failed to persist order totals: %w", err)
		}

		order = o
		return nil
	})
	if err != nil {
		var vanished *ProductVanishedError
		if errors.As(err, &vanished) {
			s.logger.Warn("Order rolled back, product vanished from catalog",
				zap.String("product_id", vanished.ProductID),
				zap.String("intent_id", intentID))
			s.recordEvent("order_rolled_back", intentID, map[string]interface{}{
				"product_id": vanished.ProductID,
			})
		}
		return nil, err
	}

	s.logger.Info("Order materialized",
		zap.String("order_number", order.OrderNumber),
		zap.String("intent_id", intentID),
		zap.String("grand_total", order.GrandTotal.StringFixed(2)))
	s.recordEvent("order_created", order.ID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"intent_id":    intentID,
		"grand_total":  order.GrandTotal.StringFixed(2),
	})

	return order, nil
}

// AttachProfile links a completed order to the actor's profile. It is an
// idempotent upsert: guests are a no-op, repeat calls with the same profile
// write the same value, and a different profile is rejected rather than
// reassigned.
func (s *Service) AttachProfile(ctx context.Context, order *models.Order, profileID string) (*models.Order, error) {
	if profileID == "" {
		return order, nil
	}
	if order.UserProfileID != nil {
		if *order.UserProfileID == profileID {
			return order, nil
		}
		return nil, ErrProfileMismatch
	}

	if err := s.orders.SetProfile(ctx, order.ID, profileID); err != nil {
		return nil, fmt.Errorf("failed to attach profile to order %s: %w", order.OrderNumber, err)
	}
	order.UserProfileID = &profileID

	s.recordEvent("profile_attached", order.ID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"profile_id":   profileID,
	})
	return order, nil
}

// ClearBag drops the session's bag; an absent bag is not an error.
func (s *Service) ClearBag(ctx context.Context, sessionID string) error {
	return s.bags.Delete(ctx, sessionID)
}

func (s *Service) OrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.orders.OrderByNumber(ctx, orderNumber)
}

func (s *Service) recordEvent(action, entityID string, data map[string]interface{}) {
	if s.audit == nil {
		return
	}
	go func() {
		if err := s.audit.RecordEvent(context.Background(), action, entityID, data); err != nil {
			s.logger.Warn("Failed to record audit event",
				zap.String("action", action),
				zap.Error(err))
		}
	}()
}
