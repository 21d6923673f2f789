// Package paystack adapts Paystack's webhook conventions: an HMAC-SHA512
// hex signature over the raw body in the X-Paystack-Signature header, and
// event envelopes of the form {"event": "...", "data": {...}}.
package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/payment/domain"
)

// SignatureHeader is the header Paystack sends the body signature in.
const SignatureHeader = "X-Paystack-Signature"

type Gateway struct {
	secret []byte
}

func New(webhookSecret string) (*Gateway, error) {
	if strings.TrimSpace(webhookSecret) == "" {
		return nil, errors.New("paystack: webhook secret is required")
	}
	return &Gateway{secret: []byte(webhookSecret)}, nil
}

func (g *Gateway) Provider() string { return "paystack" }

func (g *Gateway) VerifySignature(signature string, body []byte) error {
	mac := hmac.New(sha512.New, g.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return domain.ErrInvalidSignature
	}
	return nil
}

type envelope struct {
	Event string `json:"event"`
	Data  struct {
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		PaidAt    string  `json:"paid_at"`
		// Subscription lifecycle events nest the reference differently.
		SubscriptionCode string `json:"subscription_code"`
		Metadata         struct {
			TenantID string `json:"tenant_id"`
		} `json:"metadata"`
	} `json:"data"`
}

func (g *Gateway) Parse(body []byte) (*domain.GatewayEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.ErrMalformedEvent
	}
	if env.Event == "" {
		return nil, domain.ErrMalformedEvent
	}

	reference := env.Data.Reference
	if reference == "" {
		reference = env.Data.SubscriptionCode
	}

	event := &domain.GatewayEvent{
		Provider: g.Provider(),
		RawKind:  env.Event,
		// Paystack amounts arrive in the currency's minor unit.
		Amount:           env.Data.Amount / 100,
		Currency:         env.Data.Currency,
		Reference:        reference,
		SubscriptionCode: env.Data.SubscriptionCode,
	}
	if env.Data.Metadata.TenantID != "" {
		if id, err := strconv.ParseInt(env.Data.Metadata.TenantID, 10, 64); err == nil {
			event.TenantID = snowflake.ID(id)
		}
	}

	switch env.Event {
	case "charge.success":
		event.Kind = domain.EventChargeSucceeded
	case "subscription.create":
		event.Kind = domain.EventSubscriptionCreated
	case "subscription.disable":
		event.Kind = domain.EventSubscriptionDisabled
	case "invoice.payment_failed":
		event.Kind = domain.EventInvoiceFailed
	default:
		event.Kind = domain.EventUnknown
		// Unrecognized kinds may carry no reference at all; a body digest
		// keeps their idempotency key unique per distinct delivery.
		if event.Reference == "" {
			sum := sha512.Sum512(body)
			event.Reference = hex.EncodeToString(sum[:16])
		}
		return event, nil
	}

	if reference == "" {
		return nil, domain.ErrMalformedEvent
	}
	if env.Data.PaidAt != "" {
		if at, err := time.Parse(time.RFC3339, env.Data.PaidAt); err == nil {
			event.PaidAt = at
		}
	}
	if event.PaidAt.IsZero() {
		event.PaidAt = time.Now().UTC()
	}
	return event, nil
}
