package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/bag"
	"github.com/example/storefront/pkg/models"
	"github.com/shopspring/decimal"
)

// ErrEmptyBag signals the precondition failure: no pricing context and no
// payment intent may be produced for an empty bag.
var ErrEmptyBag = errors.New("bag is empty")

// Catalog resolves live products; pricing always works off current catalog
// prices, never off the snapshot stored on historical orders.
type Catalog interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

type Settings struct {
	DeliveryFlatRate      decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

type LineItem struct {
	Product   *models.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Context is everything the checkout page needs: priced lines and the
// server-computed totals.
type Context struct {
	LineItems         []LineItem      `json:"line_items"`
	ProductCount      int             `json:"product_count"`
	ItemTotal         decimal.Decimal `json:"item_total"`
	DeliveryCost      decimal.Decimal `json:"delivery_cost"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	FreeDeliveryDelta decimal.Decimal `json:"free_delivery_delta"`
}

type Builder struct {
	catalog  Catalog
	settings Settings
}

func NewBuilder(catalog Catalog, settings Settings) *Builder {
	return &Builder{catalog: catalog, settings: settings}
}

// Build derives the pricing context from the bag and live catalog prices.
// Line items come out in stable product-id order.
func (b *Builder) Build(ctx context.Context, items bag.Bag) (*Context, error) {
	if items.IsEmpty() {
		return nil, ErrEmptyBag
	}

	pc := &Context{
		ProductCount: items.TotalItems(),
		ItemTotal:    decimal.Zero,
	}
	for _, id := range items.ProductIDs() {
		quantity := items[id]
		product, err := b.catalog.ProductByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to price product %s: %w", id, err)
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
		pc.LineItems = append(pc.LineItems, LineItem{
			Product:   product,
			Quantity:  quantity,
			LineTotal: lineTotal,
		})
		pc.ItemTotal = pc.ItemTotal.Add(lineTotal)
	}

	pc.DeliveryCost = b.DeliveryCost(pc.ItemTotal)
	pc.GrandTotal = pc.ItemTotal.Add(pc.DeliveryCost)
	if pc.ItemTotal.LessThan(b.settings.FreeDeliveryThreshold) {
		pc.FreeDeliveryDelta = b.settings.FreeDeliveryThreshold.Sub(pc.ItemTotal)
	} else {
		pc.FreeDeliveryDelta = decimal.Zero
	}
	return pc, nil
}

// DeliveryCost is the flat rate, waived at or above the free threshold.
func (b *Builder) DeliveryCost(itemTotal decimal.Decimal) decimal.Decimal {
	if itemTotal.GreaterThanOrEqual(b.settings.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return b.settings.DeliveryFlatRate
}

// MinorUnits rounds a grand total to integer minor currency units (cents)
// for the payment provider.
func MinorUnits(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
