package payment

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway against the Stripe PaymentIntents API.
type StripeGateway struct {
	client *client.API
	logger *zap.Logger
}

func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{
		client: api,
		logger: logger,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error) {
	if amountMinor <= 0 {
		return nil, &GatewayError{Op: "create intent", Err: errors.New("amount must be a positive number of minor units")}
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error("Failed to create payment intent",
			zap.Int64("amount", amountMinor),
			zap.String("currency", currency),
			zap.Error(err))
		return nil, &GatewayError{Op: "create intent", Err: err}
	}

	g.logger.Info("Payment intent created",
		zap.String("intent_id", pi.ID),
		zap.Int64("amount", amountMinor),
		zap.String("currency", currency))

	return intentFromStripe(pi), nil
}

func (g *StripeGateway) UpdateMetadata(ctx context.Context, intentID string, metadata map[string]string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	if _, err := g.client.PaymentIntents.Update(intentID, params); err != nil {
		g.logger.Error("Failed to update payment intent metadata",
			zap.String("intent_id", intentID),
			zap.Error(err))
		return &GatewayError{Op: "update metadata", Err: err}
	}
	return nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, &GatewayError{Op: "retrieve intent", Err: err}
	}
	return intentFromStripe(pi), nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
