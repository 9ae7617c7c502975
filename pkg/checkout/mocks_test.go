package checkout

import (
	"context"
	"fmt"

	"github.com/example/storefront/pkg/bag"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
)

// fakeOrderStore implements OrderStore in memory. InTransaction applies the
// closure to a copy and commits it only on success, mirroring the rollback
// behavior of the real gorm transaction.
type fakeOrderStore struct {
	orders    map[string]*models.Order
	lineItems []models.OrderLineItem
	seq       int

	createOrderErr    error
	createLineItemErr error
	setProfileErr     error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderStore) clone() *fakeOrderStore {
	c := &fakeOrderStore{
		orders:            make(map[string]*models.Order, len(f.orders)),
		lineItems:         append([]models.OrderLineItem(nil), f.lineItems...),
		seq:               f.seq,
		createOrderErr:    f.createOrderErr,
		createLineItemErr: f.createLineItemErr,
		setProfileErr:     f.setProfileErr,
	}
	for id, o := range f.orders {
		copied := *o
		c.orders[id] = &copied
	}
	return c
}

func (f *fakeOrderStore) InTransaction(_ context.Context, fn func(tx OrderStore) error) error {
	tx := f.clone()
	if err := fn(tx); err != nil {
		return err
	}
	*f = *tx
	return nil
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, o *models.Order) error {
	if f.createOrderErr != nil {
		return f.createOrderErr
	}
	f.seq++
	if o.ID == "" {
		o.ID = fmt.Sprintf("order-%d", f.seq)
	}
	if o.OrderNumber == "" {
		o.OrderNumber = fmt.Sprintf("ORD%04d", f.seq)
	}
	copied := *o
	f.orders[o.ID] = &copied
	return nil
}

func (f *fakeOrderStore) CreateLineItem(_ context.Context, item *models.OrderLineItem) error {
	if f.createLineItemErr != nil {
		return f.createLineItemErr
	}
	f.lineItems = append(f.lineItems, *item)
	return nil
}

func (f *fakeOrderStore) UpdateTotals(_ context.Context, o *models.Order) error {
	stored, ok := f.orders[o.ID]
	if !ok {
		return ErrOrderNotFound
	}
	stored.ItemTotal = o.ItemTotal
	stored.DeliveryCost = o.DeliveryCost
	stored.GrandTotal = o.GrandTotal
	return nil
}

func (f *fakeOrderStore) OrderByNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			copied := *o
			return &copied, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (f *fakeOrderStore) SetProfile(_ context.Context, orderID, profileID string) error {
	if f.setProfileErr != nil {
		return f.setProfileErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.UserProfileID = &profileID
	return nil
}

func (f *fakeOrderStore) orderCount() int {
	return len(f.orders)
}

func (f *fakeOrderStore) lineItemCount() int {
	return len(f.lineItems)
}

// fakeCatalog resolves products from a map.
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

// fakeBagStore keeps bags in a map; Delete on an absent key is a no-op.
type fakeBagStore struct {
	bags map[string]bag.Bag
}

func newFakeBagStore() *fakeBagStore {
	return &fakeBagStore{bags: make(map[string]bag.Bag)}
}

func (f *fakeBagStore) Get(_ context.Context, sessionID string) (bag.Bag, error) {
	if b, ok := f.bags[sessionID]; ok {
		return b, nil
	}
	return bag.New(), nil
}

func (f *fakeBagStore) Save(_ context.Context, sessionID string, b bag.Bag) error {
	f.bags[sessionID] = b
	return nil
}

func (f *fakeBagStore) Delete(_ context.Context, sessionID string) error {
	delete(f.bags, sessionID)
	return nil
}
