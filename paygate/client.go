// Package paygate wraps the external payment gateway. The engine never
// charges; it only issues refunds against charges taken at booking time.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Gateway is the collaborator contract consumed by the outbox dispatcher.
// The gateway deduplicates per idempotency key on its side; callers still
// guard with a DB-backed key per assignment.
type Gateway interface {
	Refund(ctx context.Context, paymentReference, reason, idempotencyKey string, metadata map[string]string) (string, error)
}

type Client struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
}

func NewClient() (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("PAYGATE_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.paygate.example.com"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("PAYGATE_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	apiKey := strings.TrimSpace(os.Getenv("PAYGATE_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("paygate api key is empty")
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Disabled is the fallback when no API key is configured. Refund deliveries
// fail and stay in the outbox until an operator configures the gateway and
// retries them.
type Disabled struct{}

func (Disabled) Refund(ctx context.Context, paymentReference, reason, idempotencyKey string, metadata map[string]string) (string, error) {
	return "", errors.New("payment gateway not configured")
}

type refundRequest struct {
	PaymentReference string            `json:"payment_reference"`
	Reason           string            `json:"reason"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type refundResponse struct {
	RefundId string `json:"refund_id"`
}

// Refund issues a refund for the full captured amount of the referenced
// payment and returns the gateway-assigned refund id.
func (c *Client) Refund(ctx context.Context, paymentReference, reason, idempotencyKey string, metadata map[string]string) (string, error) {
	payload, err := json.Marshal(refundRequest{
		PaymentReference: paymentReference,
		Reason:           reason,
		Metadata:         metadata,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/refunds", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("paygate api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed refundResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.RefundId == "" {
		return "", errors.New("paygate response missing refund_id")
	}
	return parsed.RefundId, nil
}
