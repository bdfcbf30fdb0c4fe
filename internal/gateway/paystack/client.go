package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://api.paystack.co"
	Provider       = "paystack"

	// RoleSecret is the credential role used for all authenticated calls and
	// for webhook signature verification.
	RoleSecret = "secret"
)

// GatewayError is an explicit rejection from the gateway (envelope status
// false). The message is propagated verbatim for support triage.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("paystack rejected request: %s", e.Message)
}

// Client talks to the Paystack REST API. Calls are plain blocking HTTP with a
// bounded timeout; nothing is retried here, because a repeated charge is a
// duplicate charge. Only Verify is safe to repeat.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Initialize starts a redirect-flow charge and returns the authorization URL
// the payer's browser must be sent to.
func (c *Client) Initialize(ctx context.Context, secret string, req InitializeRequest) (*InitializeData, error) {
	var data InitializeData
	if err := c.post(ctx, secret, "/transaction/initialize", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Charge submits an inline card charge. The returned status drives the
// step-up state machine (send_pin, send_otp, open_url, pending, success).
func (c *Client) Charge(ctx context.Context, secret string, req ChargeRequest) (*ChargeData, error) {
	var data ChargeData
	if err := c.post(ctx, secret, "/charge", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) SubmitPIN(ctx context.Context, secret, pin, reference string) (*ChargeData, error) {
	payload := map[string]string{"pin": pin, "reference": reference}
	var data ChargeData
	if err := c.post(ctx, secret, "/charge/submit_pin", payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) SubmitOTP(ctx context.Context, secret, otp, reference string) (*ChargeData, error) {
	payload := map[string]string{"otp": otp, "reference": reference}
	var data ChargeData
	if err := c.post(ctx, secret, "/charge/submit_otp", payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Verify fetches the definitive state of a reference. It is a read-only GET,
// idempotent and safe to repeat after timeouts.
func (c *Client) Verify(ctx context.Context, secret, reference string) (*VerifyData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secret)

	var data VerifyData
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) post(ctx context.Context, secret, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+secret)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read paystack response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse paystack response: %w", err)
	}
	if !env.Status {
		return &GatewayError{Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("parse paystack data: %w", err)
		}
	}
	return nil
}
