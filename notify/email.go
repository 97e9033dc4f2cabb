package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EmailSender posts mail to a SendGrid compatible v3 mail/send endpoint.
type EmailSender struct {
	APIURL string
	APIKey string
	From   string
	Client *http.Client
}

func NewEmailSender(apiURL, apiKey, from string) *EmailSender {
	return &EmailSender{
		APIURL: apiURL,
		APIKey: apiKey,
		From:   from,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailPayload struct {
	Personalizations []struct {
		To []emailAddress `json:"to"`
	} `json:"personalizations"`
	From    emailAddress `json:"from"`
	Subject string       `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (*EmailSender) Name() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return nil
	}
	if !strings.Contains(msg.ToEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", msg.ToEmail)
	}

	var payload emailPayload
	payload.Personalizations = make([]struct {
		To []emailAddress `json:"to"`
	}, 1)
	payload.Personalizations[0].To = []emailAddress{{Email: msg.ToEmail, Name: msg.ToName}}
	payload.From = emailAddress{Email: s.From}
	payload.Subject = msg.Subject
	payload.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{{Type: "text/html", Value: msg.HTML}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
