// Package notify delivers SMS and email to customers and workers. Callers
// treat delivery as fire-and-forget: the outbox dispatcher owns retries,
// and a failed send never reaches the user-facing request path.
package notify

import "context"

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Dispatcher interface {
	SendSMS(ctx context.Context, userId int, phone, message string, metadata map[string]string) error
	SendEmail(ctx context.Context, userId int, email Email, metadata map[string]string) error
}
