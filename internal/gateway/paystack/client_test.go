package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCharge_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/charge", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))

		var req ChargeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(15290000), req.Amount)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Charge attempted","data":{"id":42,"status":"send_pin","reference":"ref_abc"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	data, err := client.Charge(context.Background(), "sk_test_x", ChargeRequest{
		Email:    "ada@example.com",
		Amount:   15290000,
		Currency: "NGN",
		Card:     Card{Number: "4084084084084081", CVV: "408", ExpiryMonth: "12", ExpiryYear: "30"},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), data.ID)
	assert.Equal(t, "send_pin", data.Status)
	assert.Equal(t, "ref_abc", data.Reference)
}

func TestCharge_EnvelopeFalseIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid card number"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Charge(context.Background(), "sk_test_x", ChargeRequest{Email: "a@b.c", Amount: 100})

	var gwErr *GatewayError
	assert.ErrorAs(t, err, &gwErr)
	assert.Contains(t, gwErr.Error(), "Invalid card number")
}

func TestVerify_UsesReferencePathAndGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref_abc", r.URL.Path)
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"id":42,"status":"success","reference":"ref_abc","amount":15290000,"currency":"NGN","gateway_response":"Successful","channel":"card","metadata":{"booking_id":"7","user_id":"42"}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	data, err := client.Verify(context.Background(), "sk_test_x", "ref_abc")

	assert.NoError(t, err)
	assert.Equal(t, "success", data.Status)
	assert.Equal(t, int64(15290000), data.Amount)
	assert.Equal(t, "7", data.Metadata.BookingID)
}

func TestSubmitPIN_SendsPinAndReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charge/submit_pin", r.URL.Path)
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "1234", payload["pin"])
		assert.Equal(t, "ref_abc", payload["reference"])
		w.Write([]byte(`{"status":true,"message":"Charge attempted","data":{"status":"send_otp","reference":"ref_abc"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	data, err := client.SubmitPIN(context.Background(), "sk_test_x", "1234", "ref_abc")

	assert.NoError(t, err)
	assert.Equal(t, "send_otp", data.Status)
}

func TestInitialize_ReturnsAuthorizationURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref_abc"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	data, err := client.Initialize(context.Background(), "sk_test_x", InitializeRequest{Email: "ada@example.com", Amount: 100})

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", data.AuthorizationURL)
	assert.Equal(t, "abc", data.AccessCode)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", 0)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestParseChargeStatus_ClosedSet(t *testing.T) {
	for _, known := range []string{"success", "send_pin", "send_otp", "pending", "open_url"} {
		status, ok := ParseChargeStatus(known)
		assert.True(t, ok, known)
		assert.Equal(t, ChargeStatus(known), status)
	}

	for _, unknown := range []string{"failed", "timeout", "SUCCESS", ""} {
		_, ok := ParseChargeStatus(unknown)
		assert.False(t, ok, unknown)
	}
}
