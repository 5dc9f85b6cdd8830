package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailClient struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

func newEmailClient() (*emailClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("SENDGRID_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is empty")
	}
	fromAddr := strings.TrimSpace(os.Getenv("EMAIL_FROM_ADDRESS"))
	if fromAddr == "" {
		fromAddr = "no-reply@fixelo.app"
	}
	fromName := strings.TrimSpace(os.Getenv("EMAIL_FROM_NAME"))
	if fromName == "" {
		fromName = "Fixelo"
	}
	return &emailClient{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}, nil
}

func (c *emailClient) send(ctx context.Context, email Email) error {
	from := mail.NewEmail(c.fromName, c.fromAddr)
	to := mail.NewEmail("", email.To)
	message := mail.NewSingleEmail(from, email.Subject, to, email.Body, email.Body)

	response, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid error %d: %s", response.StatusCode, strings.TrimSpace(response.Body))
	}
	return nil
}
