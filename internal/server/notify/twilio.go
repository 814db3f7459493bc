package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioNotifier sends SMS through the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioNotifier constructs a notifier with the given account credentials
// and sender number. The timeout bounds every send attempt at the HTTP layer.
func NewTwilioNotifier(accountSID, authToken, from string, timeout time.Duration) *TwilioNotifier {
	c := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(accountSID, authToken),
	}
	c.SetTimeout(timeout)

	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
		Client:   c,
	})

	return &TwilioNotifier{client: rest, from: from}
}

func (n *TwilioNotifier) Send(ctx context.Context, toPhone string, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(n.from)
	params.SetBody(text)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio send error: %w", err)
	}
	if resp.Sid == nil {
		return "", errors.New("twilio response missing delivery sid")
	}

	return *resp.Sid, nil
}
