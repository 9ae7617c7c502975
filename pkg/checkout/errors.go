package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrProfileMismatch guards the set-once invariant: an order linked to
	// one profile is never reassigned to another.
	ErrProfileMismatch = errors.New("order already belongs to a different profile")
)

// FormInvalidError is a user-correctable input error. Nothing was persisted;
// the caller re-renders the form with the offending fields.
type FormInvalidError struct {
	Fields map[string]string
}

func (e *FormInvalidError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("order form invalid: %s", strings.Join(names, ", "))
}

// ProductVanishedError is the catalog/bag inconsistency: a bag entry no
// longer resolves to a product. The whole order has been rolled back.
type ProductVanishedError struct {
	ProductID string
}

func (e *ProductVanishedError) Error() string {
	return fmt.Sprintf("product %s in the bag no longer exists", e.ProductID)
}
