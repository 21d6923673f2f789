package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Outcome summarizes what processing a webhook delivery did.
type Outcome string

const (
	// OutcomeApplied means the event changed state.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the event was seen before and skipped.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored means the event kind is not one the register acts on.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUnmatched means no subscription carries the event's reference.
	OutcomeUnmatched Outcome = "unmatched"
)

type Service interface {
	// ProcessEvent verifies, records and applies one webhook delivery.
	// Replays of a processed event return OutcomeDuplicate with no error so
	// the transport layer can acknowledge them.
	ProcessEvent(ctx context.Context, signature string, body []byte) (Outcome, error)
	ListPayments(ctx context.Context, tenantID snowflake.ID) ([]Payment, error)
}

// Gateway abstracts the payment provider's webhook conventions.
type Gateway interface {
	Provider() string
	// VerifySignature checks the signature over the raw body using the
	// shared webhook secret.
	VerifySignature(signature string, body []byte) error
	Parse(body []byte) (*GatewayEvent, error)
}
