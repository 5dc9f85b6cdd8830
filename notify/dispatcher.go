package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// providerDispatcher fans out to the configured SMS and email providers.
// A provider missing its credentials is logged once at startup and skipped,
// so local/dev runs work without any external accounts.
type providerDispatcher struct {
	sms    *smsClient
	email  *emailClient
	logger *logrus.Logger
}

func NewDispatcher(logger *logrus.Logger) Dispatcher {
	d := &providerDispatcher{logger: logger}

	sms, err := newSMSClient()
	if err != nil {
		logger.WithFields(logrus.Fields{"module": "notify"}).Warn("sms provider disabled: " + err.Error())
	} else {
		d.sms = sms
	}

	email, err := newEmailClient()
	if err != nil {
		logger.WithFields(logrus.Fields{"module": "notify"}).Warn("email provider disabled: " + err.Error())
	} else {
		d.email = email
	}

	return d
}

func (d *providerDispatcher) SendSMS(ctx context.Context, userId int, phone, message string, metadata map[string]string) error {
	if d.sms == nil {
		return nil
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	return d.sms.send(ctx, phone, message, metadata)
}

func (d *providerDispatcher) SendEmail(ctx context.Context, userId int, email Email, metadata map[string]string) error {
	if d.email == nil {
		return nil
	}
	return d.email.send(ctx, email)
}
