package pricing

import (
	"context"
	"testing"

	"github.com/example/storefront/pkg/bag"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog resolves products from a map, missing ids fail like the real
// repository does.
type fakeCatalog struct {
	products map[string]*models.Product
}

func (f *fakeCatalog) ProductByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func testSettings() Settings {
	return Settings{
		DeliveryFlatRate:      decimal.RequireFromString("5.00"),
		FreeDeliveryThreshold: decimal.RequireFromString("50.00"),
	}
}

func product(id, price string) *models.Product {
	return &models.Product{ID: id, Name: "product " + id, Price: decimal.RequireFromString(price)}
}

func TestBuild_GrandTotalIncludesDelivery(t *testing.T) {
	builder := NewBuilder(&fakeCatalog{products: map[string]*models.Product{
		"42": product("42", "10.00"),
	}}, testSettings())

	pc, err := builder.Build(context.Background(), bag.Bag{"42": 2})

	require.NoError(t, err)
	require.Len(t, pc.LineItems, 1)
	assert.Equal(t, 2, pc.ProductCount)
	assert.True(t, pc.ItemTotal.Equal(decimal.RequireFromString("20.00")), "item total %s", pc.ItemTotal)
	assert.True(t, pc.DeliveryCost.Equal(decimal.RequireFromString("5.00")), "delivery %s", pc.DeliveryCost)
	assert.True(t, pc.GrandTotal.Equal(decimal.RequireFromString("25.00")), "grand total %s", pc.GrandTotal)
}

func TestBuild_FreeDeliveryAtThreshold(t *testing.T) {
	builder := NewBuilder(&fakeCatalog{products: map[string]*models.Product{
		"42": product("42", "25.00"),
	}}, testSettings())

	pc, err := builder.Build(context.Background(), bag.Bag{"42": 2})

	require.NoError(t, err)
	assert.True(t, pc.DeliveryCost.IsZero())
	assert.True(t, pc.GrandTotal.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, pc.FreeDeliveryDelta.IsZero())
}

func TestBuild_ReportsFreeDeliveryDelta(t *testing.T) {
	builder := NewBuilder(&fakeCatalog{products: map[string]*models.Product{
		"42": product("42", "30.00"),
	}}, testSettings())

	pc, err := builder.Build(context.Background(), bag.Bag{"42": 1})

	require.NoError(t, err)
	assert.True(t, pc.FreeDeliveryDelta.Equal(decimal.RequireFromString("20.00")))
}

func TestBuild_EmptyBag(t *testing.T) {
	builder := NewBuilder(&fakeCatalog{}, testSettings())

	_, err := builder.Build(context.Background(), bag.New())

	assert.ErrorIs(t, err, ErrEmptyBag)
}

func TestBuild_MissingProduct(t *testing.T) {
	builder := NewBuilder(&fakeCatalog{products: map[string]*models.Product{
		"42": product("42", "10.00"),
	}}, testSettings())

	_, err := builder.Build(context.Background(), bag.Bag{"42": 1, "99": 1})

	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestBuild_StableLineItemOrder(t *testing.T) {
	builder := NewBuilder(&fakeCatalog{products: map[string]*models.Product{
		"1": product("1", "1.00"), "2": product("2", "2.00"), "3": product("3", "3.00"),
	}}, testSettings())

	pc, err := builder.Build(context.Background(), bag.Bag{"3": 1, "1": 1, "2": 1})

	require.NoError(t, err)
	require.Len(t, pc.LineItems, 3)
	assert.Equal(t, "1", pc.LineItems[0].Product.ID)
	assert.Equal(t, "2", pc.LineItems[1].Product.ID)
	assert.Equal(t, "3", pc.LineItems[2].Product.ID)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2500), MinorUnits(decimal.RequireFromString("25.00")))
	assert.Equal(t, int64(1999), MinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}
