// Package messaging dispatches out-of-band share notifications over Twilio
// WhatsApp. Dispatch is single-attempt: a failure is reported to the caller,
// which logs it and moves on. There is no retry or backpressure.
package messaging

import (
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// WhatsAppSender sends WhatsApp messages through the Twilio REST API.
type WhatsAppSender struct {
	client *twilio.RestClient
	from   string
}

// NewWhatsAppSender creates a sender. from is the WhatsApp-enabled Twilio
// number in E.164 form (without the "whatsapp:" prefix).
func NewWhatsAppSender(accountSID, authToken, from string) (*WhatsAppSender, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("messaging: Twilio credentials must be provided")
	}
	if from == "" {
		return nil, errors.New("messaging: sender number must be provided")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &WhatsAppSender{client: client, from: from}, nil
}

// Send delivers body (and an optional media attachment) to the given phone
// number in E.164 form.
func (s *WhatsAppSender) Send(to, body, mediaURL string) error {
	if to == "" {
		return errors.New("messaging: recipient phone number must be provided")
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + s.from)
	params.SetTo("whatsapp:" + to)
	params.SetBody(body)
	if mediaURL != "" {
		params.SetMediaUrl([]string{mediaURL})
	}

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	return nil
}
