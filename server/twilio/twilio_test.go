package twilio

import (
	"testing"

	"github.com/Daskott/tapcard/shared"
	"github.com/stretchr/testify/assert"
)

func TestSendMessageWithoutAccount(t *testing.T) {
	client := NewClient(shared.TwilioConfig{})

	assert.Nil(t, client.client, "No rest client should be created without an account sid")
	assert.Nil(t, client.SendMessage("+15550001000", "https://tapcard.example/c/abc"))
}

func TestNewClientWithAccount(t *testing.T) {
	client := NewClient(shared.TwilioConfig{
		AccountSid:          "AC00000000000000000000000000000000",
		AuthToken:           "token",
		MessagingServiceSid: "MG00000000000000000000000000000000",
	})

	assert.NotNil(t, client.client)
}
