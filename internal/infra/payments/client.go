package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gearbook/internal/app/policies"
	"gearbook/internal/domain/shared/money"
)

// Client talks to the payment processor's REST API. Every call is bounded
// by the configured timeout so a slow processor cannot pin a request.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type checkoutRequest struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type checkoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	ExpiresAt   int64  `json:"expires_at"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, rentalID string, amount money.Money) (policies.CheckoutSession, error) {
	var resp checkoutResponse
	err := c.post(ctx, "/v1/checkout/sessions", checkoutRequest{
		Reference: rentalID,
		Amount:    amount.Cents,
		Currency:  amount.Currency,
	}, &resp)
	if err != nil {
		return policies.CheckoutSession{}, err
	}
	return policies.CheckoutSession{
		ID:          resp.SessionID,
		RedirectURL: resp.RedirectURL,
		ExpiresAt:   resp.ExpiresAt,
	}, nil
}

type refundRequest struct {
	PaymentRef string `json:"payment_ref"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Reference  string `json:"reference"`
}

type refundResponse struct {
	RefundRef string `json:"refund_ref"`
}

func (c *Client) CreateRefund(ctx context.Context, paymentRef string, amount money.Money, reference string) (string, error) {
	var resp refundResponse
	err := c.post(ctx, "/v1/refunds", refundRequest{
		PaymentRef: paymentRef,
		Amount:     amount.Cents,
		Currency:   amount.Currency,
		Reference:  reference,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.RefundRef, nil
}

type transferRequest struct {
	Destination string `json:"destination"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

type transferResponse struct {
	TransferRef string `json:"transfer_ref"`
}

func (c *Client) CreateTransfer(ctx context.Context, ownerID string, amount money.Money, reference string) (string, error) {
	var resp transferResponse
	err := c.post(ctx, "/v1/transfers", transferRequest{
		Destination: ownerID,
		Amount:      amount.Cents,
		Currency:    amount.Currency,
		Reference:   reference,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TransferRef, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("payments: %s returned %d: %s", path, resp.StatusCode, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ policies.PaymentsPort = (*Client)(nil)
