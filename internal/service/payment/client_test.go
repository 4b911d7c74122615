package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Initialize(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/transaction/initialize", r.URL.Path)

			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"status": true,
				"message": "Authorization URL created",
				"data": {
					"reference": "INV-001",
					"authorization_url": "https://checkout.example.com/abc",
					"access_code": "abc"
				}
			}`))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "sk_test_secret", nil)

		tx, err := c.Initialize(t.Context(), "payer@example.com", decimal.RequireFromString("250.50"), "INV-001")

		require.NoError(t, err)
		assert.Equal(t, "Bearer sk_test_secret", gotAuth)
		assert.Equal(t, "25050", gotBody["amount"], "amount should be sent in subunits")
		assert.Equal(t, "payer@example.com", gotBody["email"])
		assert.Equal(t, "INV-001", tx.Reference)
		assert.Equal(t, "https://checkout.example.com/abc", tx.AuthorizationURL)
	})

	t.Run("provider rejects request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": false, "message": "Invalid email"}`))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "sk_test_secret", nil)

		_, err := c.Initialize(t.Context(), "payer@example.com", decimal.NewFromInt(10), "INV-001")

		var pe *PaymentError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, CodeDeclined, pe.Code)
	})
}

func TestClient_Verify(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/transaction/verify/INV-001", r.URL.Path)

			w.Write([]byte(`{
				"status": true,
				"message": "Verification successful",
				"data": {"reference": "INV-001", "status": "success", "amount": 25050}
			}`))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "sk_test_secret", nil)

		tx, err := c.Verify(t.Context(), "INV-001")

		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, tx.Status)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(25050)))
	})

	tests := []struct {
		name       string
		statusCode int
		wantCode   string
	}{
		{name: "unknown reference", statusCode: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "declined transaction", statusCode: http.StatusPaymentRequired, wantCode: CodeDeclined},
		{name: "provider down", statusCode: http.StatusInternalServerError, wantCode: CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			t.Cleanup(srv.Close)

			c := NewClient(srv.URL, "sk_test_secret", nil)

			_, err := c.Verify(t.Context(), "INV-001")

			var pe *PaymentError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, tt.wantCode, pe.Code)
		})
	}

	t.Run("unreachable provider", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "sk_test_secret", nil)

		_, err := c.Verify(t.Context(), "INV-001")

		var pe *PaymentError
		require.True(t, errors.As(err, &pe))
		require.Equal(t, CodeUnknown, pe.Code)
	})
}

func TestClient_VerifyWebhook(t *testing.T) {
	t.Parallel()

	c := NewClient("http://provider", "sk_test_secret", nil)
	body := []byte(`{"event":"charge.success","data":{"reference":"INV-001"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	require.True(t, c.VerifyWebhook(signature, body), "matching signature should verify")
	require.False(t, c.VerifyWebhook(signature, []byte(`tampered`)), "tampered body should not verify")
	require.False(t, c.VerifyWebhook("deadbeef", body), "wrong signature should not verify")
}
