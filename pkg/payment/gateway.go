package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Intent is the remote payment-provider object representing a pending
// charge. ClientSecret goes to the browser; ID is what the server keeps.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// Gateway is the thin adapter to the remote payment service. Calls are
// blocking network operations; failures are surfaced to the actor and never
// retried automatically, and none of them mutate local state.
type Gateway interface {
	// CreateIntent registers a pending charge for a positive amount in minor
	// currency units. Every call creates a new remote intent.
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error)
	// UpdateMetadata attaches the finalized bag snapshot and actor details
	// to an existing intent.
	UpdateMetadata(ctx context.Context, intentID string, metadata map[string]string) error
	// RetrieveIntent fetches the current remote state of an intent.
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}

// GatewayError wraps any remote failure: unreachable service, rejected
// amount, validation error.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

const clientSecretSeparator = "_secret"

// IntentIDFromClientSecret recovers the intent id from the client secret the
// browser reports back: everything before the "_secret" marker.
func IntentIDFromClientSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, clientSecretSeparator)
	if !found || id == "" {
		return "", errors.New("malformed client secret")
	}
	return id, nil
}
