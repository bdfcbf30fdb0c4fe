package paystack

import "encoding/json"

// Metadata is embedded into every charge and echoed back by the gateway on
// verification and step-up responses. It is the durable, authoritative link
// between an opaque gateway reference and the internal booking.
type Metadata struct {
	BookingID string `json:"booking_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type Card struct {
	Number      string `json:"number"`
	CVV         string `json:"cvv"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
}

type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // minor units
	Currency    string   `json:"currency"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
	Channels    []string `json:"channels,omitempty"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type ChargeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // minor units
	Currency    string   `json:"currency"`
	Card        Card     `json:"card"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

// ChargeData is the shared outcome shape of /charge and the step-up submit
// endpoints.
type ChargeData struct {
	ID          int64    `json:"id"`
	Status      string   `json:"status"`
	Reference   string   `json:"reference"`
	URL         string   `json:"url,omitempty"` // set for open_url (3-D Secure)
	DisplayText string   `json:"display_text,omitempty"`
	Message     string   `json:"message,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

type VerifyData struct {
	ID              int64    `json:"id"`
	Status          string   `json:"status"`
	Reference       string   `json:"reference"`
	Amount          int64    `json:"amount"` // minor units
	Currency        string   `json:"currency"`
	GatewayResponse string   `json:"gateway_response"`
	Channel         string   `json:"channel"`
	PaidAt          string   `json:"paid_at"`
	Metadata        Metadata `json:"metadata"`
}

// WebhookEvent is the inbound event envelope delivered at least once per
// charge.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Channel   string `json:"channel"`
	Status    string `json:"status"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
