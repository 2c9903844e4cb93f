package payment

import "context"

// GatewayOrder is the gateway-side order the browser widget is opened with.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	KeyID    string
}

// Gateway abstracts the payment provider. The browser-injected checkout
// widget remains an external collaborator: the server creates the gateway
// order up front and verifies the signed success callback afterwards.
type Gateway interface {
	Name() string
	// PublicKeyID is the key id the browser widget is initialized with.
	PublicKeyID() string
	// CreateOrder registers an order-to-be-paid with the gateway and returns
	// the gateway order the widget must reference. Amount is in minor
	// currency units.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error)
	// VerifySignature checks the signature the widget's success handler
	// delivers for (gateway order id, payment id).
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}
