package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/example/storefront/pkg/bag"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/pricing"
	"github.com/example/storefront/pkg/profile"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeGateway records intent traffic so tests can assert what crossed the
// wire without a remote provider.
type fakeGateway struct {
	mu           sync.Mutex
	created      int
	lastAmount   int64
	lastCurrency string
	createErr    error
	metadata     map[string]map[string]string
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created++
	g.lastAmount = amountMinor
	g.lastCurrency = currency
	id := fmt.Sprintf("pi_%d", g.created)
	return &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret_test",
		Status:       "requires_payment_method",
		Amount:       amountMinor,
		Currency:     currency,
	}, nil
}

func (g *fakeGateway) UpdateMetadata(_ context.Context, intentID string, metadata map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.metadata == nil {
		g.metadata = make(map[string]map[string]string)
	}
	g.metadata[intentID] = metadata
	return nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, intentID string) (*payment.Intent, error) {
	return &payment.Intent{ID: intentID, Status: "succeeded"}, nil
}

func (g *fakeGateway) intentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.created
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
		clone := bag.New()
		clone.Merge(b)
		return clone, nil
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

// fakeCatalog implements catalog.Repository off in-memory maps.
type fakeCatalog struct {
	products   map[string]*models.Product
	categories []models.Category
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: make(map[string]*models.Product)}
}

func (f *fakeCatalog) ProductByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) List(_ context.Context, _ catalog.Query) ([]models.Product, error) {
	ids := make([]string, 0, len(f.products))
	for id := range f.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.products[id])
	}
	return out, nil
}

func (f *fakeCatalog) Categories(_ context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) CategoryByName(_ context.Context, name string) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].Name == name {
			return &f.categories[i], nil
		}
	}
	return nil, catalog.ErrCategoryNotFound
}

func (f *fakeCatalog) CreateProduct(_ context.Context, p *models.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, p *models.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalog) DeleteProducts(_ context.Context, ids []string) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := f.products[id]; ok {
			delete(f.products, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeOrderStore implements checkout.OrderStore in memory. InTransaction
// truncates back to the pre-closure state on error, mirroring a rollback.
type fakeOrderStore struct {
	orders []*models.Order
	items  []*models.OrderLineItem
}

func (f *fakeOrderStore) InTransaction(_ context.Context, fn func(tx checkout.OrderStore) error) error {
	orderMark, itemMark := len(f.orders), len(f.items)
	if err := fn(f); err != nil {
		f.orders = f.orders[:orderMark]
		f.items = f.items[:itemMark]
		return err
	}
	return nil
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, o *models.Order) error {
	if err := o.BeforeCreate(nil); err != nil {
		return err
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderStore) CreateLineItem(_ context.Context, item *models.OrderLineItem) error {
	item.ID = uint(len(f.items) + 1)
	f.items = append(f.items, item)
	return nil
}

func (f *fakeOrderStore) UpdateTotals(_ context.Context, _ *models.Order) error {
	return nil
}

func (f *fakeOrderStore) OrderByNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, checkout.ErrOrderNotFound
}

func (f *fakeOrderStore) SetProfile(_ context.Context, orderID, profileID string) error {
	for _, o := range f.orders {
		if o.ID == orderID {
			pid := profileID
			o.UserProfileID = &pid
			return nil
		}
	}
	return checkout.ErrOrderNotFound
}

// fakeProfileRepo implements profile.Repository in memory.
type fakeProfileRepo struct {
	profiles  map[string]*models.UserProfile
	addresses map[uint]*models.Address
	saved     map[string]map[string]bool
	nextAddr  uint
	nextProf  int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles:  make(map[string]*models.UserProfile),
		addresses: make(map[uint]*models.Address),
		saved:     make(map[string]map[string]bool),
	}
}

func (f *fakeProfileRepo) GetOrCreate(_ context.Context, userID string) (*models.UserProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	f.nextProf++
	p := &models.UserProfile{ID: fmt.Sprintf("profile-%d", f.nextProf), UserID: userID}
	f.profiles[userID] = p
	return p, nil
}

func (f *fakeProfileRepo) Addresses(_ context.Context, profileID string) ([]models.Address, error) {
	ids := make([]int, 0, len(f.addresses))
	for id := range f.addresses {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	var out []models.Address
	for _, id := range ids {
		a := f.addresses[uint(id)]
		if a.UserProfileID == profileID {
			out = append(out, *a)
		}
	}
	// default first, like the real repository's ordering
	sort.SliceStable(out, func(i, j int) bool { return out[i].Default && !out[j].Default })
	return out, nil
}

func (f *fakeProfileRepo) AddressByID(_ context.Context, profileID string, addressID uint) (*models.Address, error) {
	a, ok := f.addresses[addressID]
	if !ok || a.UserProfileID != profileID {
		return nil, profile.ErrAddressNotFound
	}
	return a, nil
}

func (f *fakeProfileRepo) CreateAddress(_ context.Context, address *models.Address) error {
	f.nextAddr++
	address.ID = f.nextAddr
	f.addresses[address.ID] = address
	return nil
}

func (f *fakeProfileRepo) UpdateAddress(_ context.Context, address *models.Address) error {
	if _, ok := f.addresses[address.ID]; !ok {
		return profile.ErrAddressNotFound
	}
	f.addresses[address.ID] = address
	return nil
}

func (f *fakeProfileRepo) DeleteAddresses(_ context.Context, profileID string, addressIDs []uint) (int64, error) {
	var deleted int64
	for _, id := range addressIDs {
		if a, ok := f.addresses[id]; ok && a.UserProfileID == profileID {
			delete(f.addresses, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeProfileRepo) SetDefaultAddress(_ context.Context, profileID string, addressID uint) error {
	target, ok := f.addresses[addressID]
	if !ok || target.UserProfileID != profileID {
		return profile.ErrAddressNotFound
	}
	for _, a := range f.addresses {
		if a.UserProfileID == profileID {
			a.Default = false
		}
	}
	target.Default = true
	return nil
}

func (f *fakeProfileRepo) SavedProducts(_ context.Context, profileID string) ([]models.SavedProduct, error) {
	var out []models.SavedProduct
	for productID := range f.saved[profileID] {
		out = append(out, models.SavedProduct{UserProfileID: profileID, ProductID: productID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (f *fakeProfileRepo) SaveProduct(_ context.Context, profileID, productID string) error {
	if f.saved[profileID][productID] {
		return profile.ErrAlreadySaved
	}
	if f.saved[profileID] == nil {
		f.saved[profileID] = make(map[string]bool)
	}
	f.saved[profileID][productID] = true
	return nil
}

func (f *fakeProfileRepo) RemoveSavedProduct(_ context.Context, profileID, productID string) error {
	if !f.saved[profileID][productID] {
		return profile.ErrNotSaved
	}
	delete(f.saved[profileID], productID)
	return nil
}

// fakeOrderHistory reads completed orders straight out of the order store.
type fakeOrderHistory struct {
	store *fakeOrderStore
}

func (h *fakeOrderHistory) OrdersForProfile(_ context.Context, profileID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range h.store.orders {
		if o.UserProfileID != nil && *o.UserProfileID == profileID {
			out = append(out, *o)
		}
	}
	return out, nil
}

// harness wires a Server over the fakes, the way main wires the real thing.
type harness struct {
	server  *Server
	gateway *fakeGateway
	bags    *fakeBagStore
	catalog *fakeCatalog
	orders  *fakeOrderStore
}

func newTestServer() *harness {
	logger := zap.NewNop()
	gw := &fakeGateway{}
	bags := newFakeBagStore()
	cat := newFakeCatalog()
	orders := &fakeOrderStore{}

	pricer := pricing.NewBuilder(cat, pricing.Settings{
		DeliveryFlatRate:      decimal.RequireFromString("5.00"),
		FreeDeliveryThreshold: decimal.RequireFromString("50.00"),
	})
	checkoutSvc := checkout.NewService(orders, cat, pricer, bags, nil, logger)
	profiles := profile.NewService(newFakeProfileRepo(), &fakeOrderHistory{store: orders}, logger)

	cfg := &config.Config{}
	cfg.Stripe.PublicKey = "pk_test_storefront"
	cfg.Stripe.Currency = "usd"

	srv := NewServer(cfg, logger, Deps{
		Bags:     bags,
		Pricer:   pricer,
		Gateway:  gw,
		Checkout: checkoutSvc,
		Catalog:  cat,
		Profiles: profiles,
	})
	srv.SetupRoutes()

	return &harness{server: srv, gateway: gw, bags: bags, catalog: cat, orders: orders}
}

func (h *harness) addProduct(id, name, price string) {
	h.catalog.products[id] = &models.Product{
		ID:    id,
		SKU:   "sku-" + id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

func (h *harness) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.server.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		panic(err)
	}
	return body
}
