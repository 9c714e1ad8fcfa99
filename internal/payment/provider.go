package payment

import (
	"context"
	"encoding/json"
	"fmt"

	appconfig "photo-market/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Status is the provider payment outcome this service acts on.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusIgnored covers event types that are not terminal signals.
	StatusIgnored Status = "ignored"
)

// Intent is the provider-side payment handle created at checkout.
type Intent struct {
	ProviderID   string
	ClientSecret string
}

// Event is a verified webhook delivery reduced to what fulfillment needs:
// the payment status and the external reference (our order id) it carries.
type Event struct {
	ID       string
	Status   Status
	OrderRef string
}

// Provider abstracts the payment provider.
type Provider interface {
	// CreateIntent registers a payment intent for the amount, tagged with
	// the order id as an opaque external reference.
	CreateIntent(ctx context.Context, amount decimal.Decimal, orderRef string) (Intent, error)

	// VerifyWebhook authenticates a webhook delivery and extracts the
	// event. Unverifiable payloads return an error and must not be acted on.
	VerifyWebhook(payload []byte, signature string) (Event, error)
}

const orderRefMetadataKey = "order_id"

// stripeProvider implements Provider against Stripe.
type stripeProvider struct {
	api           *client.API
	webhookSecret string
	currency      string
	logger        zerolog.Logger
}

// NewStripeProvider creates a new Stripe-backed payment provider.
func NewStripeProvider(cfg appconfig.StripeConfig, logger zerolog.Logger) Provider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &stripeProvider{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
		logger:        logger.With().Str("component", "stripe").Logger(),
	}
}

func (p *stripeProvider) CreateIntent(ctx context.Context, amount decimal.Decimal, orderRef string) (Intent, error) {
	// Stripe amounts are integer minor units.
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(p.currency),
	}
	params.AddMetadata(orderRefMetadataKey, orderRef)

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("order_ref", orderRef).
			Msg("failed to create payment intent")
		return Intent{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	p.logger.Info().
		Str("order_ref", orderRef).
		Str("intent_id", pi.ID).
		Int64("amount_cents", cents).
		Msg("payment intent created")

	return Intent{ProviderID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (p *stripeProvider) VerifyWebhook(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		p.logger.Warn().Err(err).Msg("webhook signature verification failed")
		return Event{}, fmt.Errorf("webhook verification failed: %w", err)
	}

	out := Event{ID: event.ID, Status: StatusIgnored}

	switch event.Type {
	case "payment_intent.succeeded":
		out.Status = StatusSucceeded
	case "payment_intent.payment_failed":
		out.Status = StatusFailed
	default:
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return Event{}, fmt.Errorf("failed to decode payment intent from event %s: %w", event.ID, err)
	}

	out.OrderRef = pi.Metadata[orderRefMetadataKey]
	if out.OrderRef == "" {
		return Event{}, fmt.Errorf("event %s carries no order reference", event.ID)
	}

	return out, nil
}
