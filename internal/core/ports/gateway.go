package ports

import (
	"context"
	"fmt"
)

// PaymentGateway is the contract with the external card processor.
// The adapter surfaces card-level declines as *CardDeclinedError so the
// charge service can distinguish them from generic gateway failures.
type PaymentGateway interface {
	// CreateCustomer provisions a gateway customer for a new seller and
	// returns its identifier.
	CreateCustomer(ctx context.Context, name string) (string, error)
	// GetPaymentMethod retrieves details for a tokenized payment method.
	GetPaymentMethod(ctx context.Context, token string) (*GatewayPaymentMethod, error)
	// AttachPaymentMethod binds an unbound token to a gateway customer.
	AttachPaymentMethod(ctx context.Context, token string, customerID string) error
	// DetachPaymentMethod unbinds a token from its gateway customer.
	DetachPaymentMethod(ctx context.Context, token string) error
	// CreateOffSessionCharge creates an immediate, confirmed, off-session
	// charge against a stored payment method.
	CreateOffSessionCharge(ctx context.Context, req OffSessionChargeRequest) (*GatewayCharge, error)
}

// GatewayPaymentMethod holds card details as reported by the gateway.
type GatewayPaymentMethod struct {
	Token      string
	CustomerID string // Empty if the token is not bound to a customer
	Brand      string
	Last4      string
	ExpMonth   int
	ExpYear    int
}

// OffSessionChargeRequest holds input for an off-session gateway charge.
type OffSessionChargeRequest struct {
	Amount             int64 // Minor currency units
	Currency           string
	CustomerID         string
	PaymentMethodToken string
	Metadata           map[string]string // seller_id / topup_charge_id for traceability
}

// GatewayCharge is the gateway's record of a settled charge.
type GatewayCharge struct {
	ID     string
	Status string
}

// CardDeclinedError is returned by gateway adapters for card-level
// declines (insufficient funds, expired card, fraud block), as opposed
// to transport or API failures.
type CardDeclinedError struct {
	Code    string // Gateway decline code
	Message string // Human-readable message from the gateway
}

func (e *CardDeclinedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("card declined (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("card declined: %s", e.Message)
}
