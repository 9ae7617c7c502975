package bag

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Bag is the session-scoped cart: product id mapped to quantity. It has no
// behavior beyond read/merge/clear; pricing and persistence live elsewhere.
type Bag map[string]int

func New() Bag {
	return make(Bag)
}

// Add increases the quantity for a product, creating the entry on first add.
func (b Bag) Add(productID string, quantity int) {
	if quantity <= 0 {
		return
	}
	b[productID] = b[productID] + quantity
}

// SetQuantity overwrites the quantity for a product. Zero or negative
// removes the entry.
func (b Bag) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		delete(b, productID)
		return
	}
	b[productID] = quantity
}

func (b Bag) Remove(productID string) {
	delete(b, productID)
}

// Merge folds another bag into this one, summing quantities.
func (b Bag) Merge(other Bag) {
	for id, qty := range other {
		b.Add(id, qty)
	}
}

func (b Bag) IsEmpty() bool {
	return len(b) == 0
}

// TotalItems is the unit count across all entries.
func (b Bag) TotalItems() int {
	total := 0
	for _, qty := range b {
		total += qty
	}
	return total
}

// ProductIDs returns the product ids in stable order.
func (b Bag) ProductIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot serializes the bag for intent metadata and order audit columns.
func (b Bag) Snapshot() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to serialize bag: %w", err)
	}
	return string(data), nil
}

func FromSnapshot(snapshot string) (Bag, error) {
	b := New()
	if err := json.Unmarshal([]byte(snapshot), &b); err != nil {
		return nil, fmt.Errorf("failed to parse bag snapshot: %w", err)
	}
	return b, nil
}

// Store is the session-storage abstraction the handlers get injected with.
// Get on an unknown session returns an empty bag, not an error; Delete on an
// absent key is a no-op.
type Store interface {
	Get(ctx context.Context, sessionID string) (Bag, error)
	Save(ctx context.Context, sessionID string, b Bag) error
	Delete(ctx context.Context, sessionID string) error
}
