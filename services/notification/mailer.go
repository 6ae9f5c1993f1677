package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ingresso/config"
	"ingresso/models"
)

// Mailer is a thin client for the transactional mail API.
type Mailer struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	from       string
}

// NewMailer builds a Mailer from the loaded config.
func NewMailer() *Mailer {
	return &Mailer{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     config.AppConfig.MailAPIURL,
		apiKey:     config.AppConfig.MailAPIKey,
		from:       config.AppConfig.MailFromAddress,
	}
}

type mailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendTicketEmail sends the ticket codes to the buyer.
func (m *Mailer) SendTicketEmail(ctx context.Context, booking *models.Booking, codes []string) error {
	if m.apiURL == "" {
		// Mail delivery not configured (e.g. local development).
		return nil
	}

	body := fmt.Sprintf("<p>Hi %s,</p><p>Your payment was confirmed. Your ticket code(s):</p><ul>", booking.CustomerName)
	for _, code := range codes {
		body += "<li><code>" + code + "</code></li>"
	}
	body += "</ul><p>Present the QR code at the entrance.</p>"

	payload := mailPayload{
		From:    m.from,
		To:      []string{booking.CustomerEmail},
		Subject: "Your tickets are confirmed",
		HTML:    body,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}
	return nil
}
