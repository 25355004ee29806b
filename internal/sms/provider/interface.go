package provider

import "context"

// SendOutcome reports the result of a custom send. ProviderMessageID is
// best-effort: the gateway nests its upstream response and not every
// success carries a parseable id.
type SendOutcome struct {
	Success           bool
	ProviderMessageID string
}

// Gateway abstracts the third-party SMS HTTP gateway.
type Gateway interface {
	// SendOTP delivers a templated verification code message.
	SendOTP(ctx context.Context, phone, code string) error
	// SendCustom delivers arbitrary text (length-limited by the caller).
	SendCustom(ctx context.Context, phone, text string) (*SendOutcome, error)
	// SendBomber asks the gateway to fan a templated notice out repeat
	// times. The gateway owns the fan-out; success is solely HTTP 200.
	SendBomber(ctx context.Context, phone string, repeat int) error
}
