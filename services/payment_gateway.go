package services

import "context"

// EventCheckoutCompleted is the gateway event type that confirms payment.
const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutLineItem is one priced line of a checkout session. UnitPrice is in
// minor currency units.
type CheckoutLineItem struct {
	Name      string
	UnitPrice int64
	Quantity  int64
}

// CheckoutParams carries everything the gateway needs to build a hosted
// checkout session for one order.
type CheckoutParams struct {
	OrderReference string
	RestaurantID   uint
	LineItems      []CheckoutLineItem
	DeliveryPrice  int64
}

// CheckoutSession is the gateway-hosted payment page created for an order.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified gateway callback. OrderReference and AmountTotal
// are only populated for EventCheckoutCompleted.
type WebhookEvent struct {
	ID             string
	Type           string
	OrderReference string
	AmountTotal    int64
}

// PaymentGateway is implemented by the Stripe adapter and by test fakes.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
