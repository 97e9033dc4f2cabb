package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSSender posts to a Twilio style Messages endpoint with basic auth.
type SMSSender struct {
	APIURL     string
	AccountSID string
	AuthToken  string
	From       string
	Client     *http.Client
}

func NewSMSSender(apiURL, accountSID, authToken, from string) *SMSSender {
	if apiURL == "" {
		apiURL = "https://api.twilio.com/2010-04-01/Accounts/" + accountSID + "/Messages.json"
	}
	return &SMSSender{
		APIURL:     apiURL,
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (*SMSSender) Name() string { return "sms" }

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	if msg.ToPhone == "" || msg.Text == "" {
		return nil
	}

	form := url.Values{}
	form.Set("To", msg.ToPhone)
	form.Set("From", s.From)
	form.Set("Body", msg.Text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sms provider returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
