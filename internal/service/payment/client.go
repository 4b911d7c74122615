package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SmoothTransact/smooth-transact-api/internal/logger"
)

const (
	CodeDeclined = "declined"
	CodeNotFound = "not-found"
	CodeUnknown  = "unknown"

	// Settled transaction status reported by the provider
	StatusSuccess = "success"
)

type PaymentError struct {
	Code string
	Err  error
}

func (pe *PaymentError) Error() string {
	return fmt.Sprintf("code: %s, error: %v", pe.Code, pe.Err)
}

func NewPaymentError(code string, err error) *PaymentError {
	return &PaymentError{
		Code: code,
		Err:  err,
	}
}

// Transaction as the payment provider reports it
// Amount is in subunits of the currency, kobo for NGN
type Transaction struct {
	Reference        string          `json:"reference"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	AuthorizationURL string          `json:"authorization_url,omitempty"`
	AccessCode       string          `json:"access_code,omitempty"`
}

type providerResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	APIAddr   string
	secretKey string

	client *http.Client
	logger logger.Logger
}

func NewClient(addr string, secretKey string, l logger.Logger) *Client {
	if l == nil {
		l = logger.NewNoOp()
	}

	return &Client{
		APIAddr:   addr,
		secretKey: secretKey,
		client:    &http.Client{},
		logger:    l,
	}
}

// Initialize starts a checkout session for the invoice
// Amount is converted to subunits as the provider expects
func (c *Client) Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (Transaction, error) {
	body, err := json.Marshal(map[string]string{
		"email":     email,
		"amount":    amount.Mul(decimal.NewFromInt(100)).StringFixed(0),
		"reference": reference,
	})
	if err != nil {
		return Transaction{}, NewPaymentError(CodeUnknown, fmt.Errorf("failed to encode request: %w", err))
	}

	return c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), reference)
}

// Verify asks the provider for the final state of a transaction
func (c *Client) Verify(ctx context.Context, reference string) (Transaction, error) {
	return c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, reference)
}

func (c *Client) do(ctx context.Context, method string, path string, body io.Reader, reference string) (Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.APIAddr+path, body)
	if err != nil {
		return Transaction{}, NewPaymentError(CodeUnknown, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Transaction{}, NewPaymentError(CodeUnknown, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		return c.processSuccess(resp)
	case http.StatusNotFound:
		return Transaction{}, NewPaymentError(CodeNotFound, fmt.Errorf("no transaction with reference %s", reference))
	case http.StatusPaymentRequired, http.StatusBadRequest:
		return Transaction{}, NewPaymentError(CodeDeclined, fmt.Errorf("transaction %s declined", reference))
	default:
		c.logger.Warn("Payment provider request failed", "status_code", resp.StatusCode, "reference", reference)
		return Transaction{}, NewPaymentError(CodeUnknown, fmt.Errorf("unknown status code %d for reference %s", resp.StatusCode, reference))
	}
}

func (c *Client) processSuccess(resp *http.Response) (Transaction, error) {
	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		c.logger.Warn("Failed to decode response", "error", err)
		return Transaction{}, NewPaymentError(CodeUnknown, fmt.Errorf("failed to decode response: %w", err))
	}

	if !pr.Status {
		return Transaction{}, NewPaymentError(CodeDeclined, fmt.Errorf("provider rejected request: %s", pr.Message))
	}

	var tx Transaction
	if err := json.Unmarshal(pr.Data, &tx); err != nil {
		return Transaction{}, NewPaymentError(CodeUnknown, fmt.Errorf("failed to decode transaction: %w", err))
	}

	c.logger.Debug("Payment provider response", "reference", tx.Reference, "status", tx.Status)
	return tx, nil
}

// VerifyWebhook reports whether signature matches the HMAC SHA512 of body
// keyed with the provider secret. Signature is hex encoded
func (c *Client) VerifyWebhook(signature string, body []byte) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)

	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
