package notify

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

	"github.com/ttacon/libphonenumber"
)

// smsClient posts to the SMS provider's HTTP API. Numbers are normalized to
// E.164 before sending; the provider rejects anything else.
type smsClient struct {
	baseURL       string
	apiKey        string
	apiKeyHdr     string
	defaultRegion string
	http          *http.Client
}

func newSMSClient() (*smsClient, error) {
	baseURL := strings.TrimSpace(os.Getenv("SMS_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://sms.provider.example.com"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("SMS_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	apiKey := strings.TrimSpace(os.Getenv("SMS_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("sms api key is empty")
	}
	region := strings.TrimSpace(os.Getenv("SMS_DEFAULT_REGION"))
	if region == "" {
		region = "US"
	}

	return &smsClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		apiKeyHdr:     apiKeyHeader,
		defaultRegion: region,
		http:          &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// NormalizePhone converts a raw phone string into E.164.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	parsed, err := libphonenumber.Parse(raw, defaultRegion)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
	return libphonenumber.Format(parsed, libphonenumber.E164), nil
}

type smsRequest struct {
	To       string            `json:"to"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (c *smsClient) send(ctx context.Context, phone, message string, metadata map[string]string) error {
	to, err := NormalizePhone(phone, c.defaultRegion)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(smsRequest{To: to, Message: message, Metadata: metadata})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
