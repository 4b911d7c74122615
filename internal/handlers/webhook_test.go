package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/SmoothTransact/smooth-transact-api/internal/apperrors"
	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
	"github.com/SmoothTransact/smooth-transact-api/internal/models"
	"github.com/SmoothTransact/smooth-transact-api/internal/repository"
	"github.com/SmoothTransact/smooth-transact-api/internal/service/payment"
)

// Invoice service stub, only MarkPaidByReference matters for the webhook
type invoiceServiceStub struct {
	paid []string
	err  error
}

func (s *invoiceServiceStub) MarkPaidByReference(_ context.Context, reference string) (models.Invoice, error) {
	if s.err != nil {
		return models.Invoice{}, s.err
	}
	s.paid = append(s.paid, reference)
	return models.Invoice{Reference: reference, Status: models.InvoiceStatusPaid}, nil
}

func (s *invoiceServiceStub) Create(context.Context, uuid.UUID, repository.CreateInvoiceParams) (models.Invoice, error) {
	panic("not expected")
}
func (s *invoiceServiceStub) Get(context.Context, uuid.UUID, uuid.UUID) (models.Invoice, error) {
	panic("not expected")
}
func (s *invoiceServiceStub) List(context.Context, uuid.UUID) ([]models.Invoice, error) {
	panic("not expected")
}
func (s *invoiceServiceStub) Finalize(context.Context, uuid.UUID, uuid.UUID) (models.Invoice, error) {
	panic("not expected")
}
func (s *invoiceServiceStub) Void(context.Context, uuid.UUID, uuid.UUID) (models.Invoice, error) {
	panic("not expected")
}

type settledCounter struct{ count int }

func (c *settledCounter) RecordPaymentSettled() { c.count++ }

func sign(secret string, body string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func Test_PaymentWebhook(t *testing.T) {
	t.Parallel()

	const secret = "sk_test_secret"

	serve := func(stub *invoiceServiceStub, counter *settledCounter) *httptest.Server {
		verifier := payment.NewClient("http://provider", secret, nil)
		return httptest.NewServer(handlePaymentWebhook(stub, verifier, logger.NewNoOp(), counter))
	}

	post := func(t *testing.T, url string, body string, signature string) (*http.Response, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set("X-Payment-Signature", signature)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()

		return resp, string(respBody)
	}

	t.Run("settles invoice on charge success", func(t *testing.T) {
		stub := &invoiceServiceStub{}
		counter := &settledCounter{}
		srv := serve(stub, counter)
		t.Cleanup(srv.Close)

		body := `{"event": "charge.success", "data": {"reference": "INV-001"}}`
		resp, respBody := post(t, srv.URL, body, sign(secret, body))

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", respBody)
		require.Equal(t, []string{"INV-001"}, stub.paid)
		require.Equal(t, 1, counter.count, "settled payment should be counted")
	})

	t.Run("rejects invalid signature", func(t *testing.T) {
		stub := &invoiceServiceStub{}
		counter := &settledCounter{}
		srv := serve(stub, counter)
		t.Cleanup(srv.Close)

		body := `{"event": "charge.success", "data": {"reference": "INV-001"}}`
		resp, _ := post(t, srv.URL, body, sign("wrong-secret", body))

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Empty(t, stub.paid, "invoice must not be settled on bad signature")
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		stub := &invoiceServiceStub{}
		srv := serve(stub, &settledCounter{})
		t.Cleanup(srv.Close)

		body := `{"event": "charge.success", "data": {"reference": "INV-001"}}`
		resp, _ := post(t, srv.URL, body, "")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("acknowledges unhandled events", func(t *testing.T) {
		stub := &invoiceServiceStub{}
		counter := &settledCounter{}
		srv := serve(stub, counter)
		t.Cleanup(srv.Close)

		body := `{"event": "charge.dispute.create", "data": {"reference": "INV-001"}}`
		resp, respBody := post(t, srv.URL, body, sign(secret, body))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"message": "Event ignored"}`, respBody)
		require.Empty(t, stub.paid)
		require.Equal(t, 0, counter.count)
	})

	t.Run("unknown reference", func(t *testing.T) {
		stub := &invoiceServiceStub{err: apperrors.ErrInvoiceNotFound}
		srv := serve(stub, &settledCounter{})
		t.Cleanup(srv.Close)

		body := `{"event": "charge.success", "data": {"reference": "INV-404"}}`
		resp, _ := post(t, srv.URL, body, sign(secret, body))

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
