package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/pkg/logger"
)

// BrevoMailer sends transactional email through the Brevo SMTP API
type BrevoMailer struct {
	apiKey      string
	apiURL      string
	senderName  string
	senderEmail string
	logger      *logger.Logger
	httpClient  *http.Client
}

// NewBrevo creates a Brevo-backed mailer
func NewBrevo(cfg config.EmailConfig, log *logger.Logger) *BrevoMailer {
	return &BrevoMailer{
		apiKey:      cfg.BrevoAPIKey,
		apiURL:      cfg.BrevoURL,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		logger:      log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoMessage struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Send delivers one email. Any provider error comes back as a plain error;
// this boundary never panics and never retries.
func (m *BrevoMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.apiKey == "" {
		return fmt.Errorf("no Brevo API key configured")
	}

	msg := brevoMessage{
		Sender:      brevoAddress{Name: m.senderName, Email: m.senderEmail},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Brevo API error %d: %s", resp.StatusCode, string(body))
	}

	m.logger.WithFields(map[string]interface{}{
		"to":      to,
		"subject": subject,
	}).Info("Email sent")

	return nil
}
