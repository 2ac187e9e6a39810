package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds Stripe configuration.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	FrontendURL   string
}

// ValidateConfig validates Stripe configuration.
func (cfg *StripeConfig) ValidateConfig() error {
	if cfg.APIKey == "" {
		return fmt.Errorf("STRIPE_API_KEY is not set")
	}
	if cfg.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}
	if cfg.FrontendURL == "" {
		return fmt.Errorf("FRONTEND_URL is not set")
	}
	return nil
}

// StripeService handles Stripe API interactions.
type StripeService struct {
	config *StripeConfig
	client *client.API
}

// NewStripeService creates a new instance of StripeService.
func NewStripeService(cfg *StripeConfig) *StripeService {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)
	return &StripeService{
		config: cfg,
		client: api,
	}
}

// CreateCheckoutSession creates a hosted checkout session carrying the order's
// line items plus a flat delivery fee as a shipping line. The order reference
// travels in the session metadata so the webhook can find the order again.
func (ss *StripeService) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(fmt.Sprintf("%s/order-status?success=true", ss.config.FrontendURL)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/detail/%d?cancelled=true", ss.config.FrontendURL, p.RestaurantID)),
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					DisplayName: stripe.String("Delivery"),
					Type:        stripe.String("fixed_amount"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(p.DeliveryPrice),
						Currency: stripe.String(string(stripe.CurrencyUSD)),
					},
				},
			},
		},
	}
	params.Context = ctx

	for _, li := range p.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(li.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(li.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			},
		})
	}

	params.AddMetadata("orderId", p.OrderReference)
	params.AddMetadata("restaurantId", strconv.FormatUint(uint64(p.RestaurantID), 10))

	sess, err := ss.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if sess.URL == "" {
		return nil, errors.New("gateway returned no redirect url")
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhook checks the event signature against the shared secret and
// decodes the session payload for completed checkouts.
func (ss *StripeService) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	// accounts pin their own API version, so do not reject on mismatch
	event, err := webhook.ConstructEventWithOptions(payload, signature, ss.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	we := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if we.Type == EventCheckoutCompleted {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode session payload: %w", err)
		}
		we.OrderReference = sess.Metadata["orderId"]
		we.AmountTotal = sess.AmountTotal
	}

	return we, nil
}
