package twilio

import (
	"fmt"

	"github.com/Daskott/tapcard/server/logger"
	"github.com/Daskott/tapcard/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var logg = logger.NewLogger()

type ClientWrapper struct {
	client *twilio.RestClient
	config shared.TwilioConfig
}

// NewClient returns a client that sends SMS through Twilio. Without an
// account sid the client only logs the messages it would have sent.
func NewClient(config shared.TwilioConfig) *ClientWrapper {
	wrapper := &ClientWrapper{config: config}

	if config.Enabled() {
		wrapper.client = twilio.NewRestClientWithParams(twilio.RestClientParams{
			Username: config.AccountSid,
			Password: config.AuthToken,
		})
	}

	return wrapper
}

func (cw *ClientWrapper) SendMessage(to, msg string) error {
	if cw.client == nil {
		logg.Infof("twilio disabled, message to %v: %q", to, msg)
		return nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return err
	}

	if resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
		return fmt.Errorf("twilio: %v", *resp.ErrorMessage)
	}

	return nil
}
