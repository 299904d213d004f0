package stripegw

import (
	"context"
	"errors"
	"fmt"

	"balance-topup-service/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/paymentmethod"
)

// Client implements ports.PaymentGateway on top of the Stripe API.
type Client struct {
	log zerolog.Logger
}

// NewClient creates a new Stripe-backed gateway adapter. The stripe-go
// library keys all package-level calls off the global stripe.Key.
func NewClient(secretKey string, log zerolog.Logger) *Client {
	stripe.Key = secretKey
	return &Client{log: log}
}

// CreateCustomer provisions a Stripe customer for a new seller.
func (c *Client) CreateCustomer(ctx context.Context, name string) (string, error) {
	params := &stripe.CustomerParams{
		Name: stripe.String(name),
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	c.log.Info().Str("customer_id", cust.ID).Msg("created stripe customer")
	return cust.ID, nil
}

// GetPaymentMethod retrieves a tokenized payment method from Stripe.
func (c *Client) GetPaymentMethod(ctx context.Context, token string) (*ports.GatewayPaymentMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := paymentmethod.Get(token, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}

	method := &ports.GatewayPaymentMethod{Token: pm.ID}
	if pm.Customer != nil {
		method.CustomerID = pm.Customer.ID
	}
	if pm.Card != nil {
		method.Brand = string(pm.Card.Brand)
		method.Last4 = pm.Card.Last4
		method.ExpMonth = int(pm.Card.ExpMonth)
		method.ExpYear = int(pm.Card.ExpYear)
	}
	return method, nil
}

// AttachPaymentMethod binds a token to a Stripe customer.
func (c *Client) AttachPaymentMethod(ctx context.Context, token string, customerID string) error {
	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	if _, err := paymentmethod.Attach(token, params); err != nil {
		return fmt.Errorf("failed to attach payment method: %w", err)
	}
	return nil
}

// DetachPaymentMethod unbinds a token from its Stripe customer.
func (c *Client) DetachPaymentMethod(ctx context.Context, token string) error {
	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx

	if _, err := paymentmethod.Detach(token, params); err != nil {
		return fmt.Errorf("failed to detach payment method: %w", err)
	}
	return nil
}

// CreateOffSessionCharge creates a confirmed off-session PaymentIntent
// against a stored payment method. Card-level declines come back as
// *ports.CardDeclinedError; everything else is a generic gateway failure.
func (c *Client) CreateOffSessionCharge(ctx context.Context, req ports.OffSessionChargeRequest) (*ports.GatewayCharge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(req.Currency),
		Customer:      stripe.String(req.CustomerID),
		PaymentMethod: stripe.String(req.PaymentMethodToken),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Metadata:      req.Metadata,
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, mapChargeError(err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, &ports.CardDeclinedError{
			Message: fmt.Sprintf("payment intent not settled, status %s", intent.Status),
		}
	}

	c.log.Info().
		Str("payment_intent_id", intent.ID).
		Int64("amount", req.Amount).
		Msg("off-session charge succeeded")

	return &ports.GatewayCharge{ID: intent.ID, Status: string(intent.Status)}, nil
}

// mapChargeError translates Stripe errors into the gateway port's error
// taxonomy. Only card_error types map to declines.
func mapChargeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}
	if stripeErr.Type != stripe.ErrorTypeCard {
		return err
	}

	declined := &ports.CardDeclinedError{
		Code:    string(stripeErr.DeclineCode),
		Message: stripeErr.Msg,
	}
	if declined.Code == "" {
		declined.Code = string(stripeErr.Code)
	}
	if declined.Message == "" {
		declined.Message = "Your card was declined."
	}
	return declined
}
