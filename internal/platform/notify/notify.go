// Package notify provides the outbound notification channels used by the
// alert dispatcher: email (SMTP), SMS (HTTP gateway) and signed webhooks.
// Each channel is defined as a small interface with a real implementation
// and a mock test double.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// Sender interfaces
// ---------------------------------------------------------------------------

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// WebhookSender is the interface for delivering a JSON payload to a webhook URL.
type WebhookSender interface {
	SendWebhook(ctx context.Context, url string, payload interface{}) error
}

// ---------------------------------------------------------------------------
// SMTP email sender
// ---------------------------------------------------------------------------

// SMTPConfig holds the SMTP relay settings. Credentials are injected from the
// environment, never hardcoded.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPEmailSender sends mail through a plain SMTP relay.
type SMTPEmailSender struct {
	cfg SMTPConfig
}

// NewSMTPEmailSender creates an SMTPEmailSender.
func NewSMTPEmailSender(cfg SMTPConfig) *SMTPEmailSender {
	return &SMTPEmailSender{cfg: cfg}
}

func (s *SMTPEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	if s.cfg.Host == "" {
		return errors.New("smtp host not configured")
	}
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		to, s.cfg.From, subject, body))
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// HTTP SMS gateway sender
// ---------------------------------------------------------------------------

// GatewaySMSSender posts messages to an SMS provider's HTTP API.
type GatewaySMSSender struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

// NewGatewaySMSSender creates a GatewaySMSSender for the given gateway URL.
func NewGatewaySMSSender(gatewayURL, apiKey string, client *http.Client) *GatewaySMSSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GatewaySMSSender{gatewayURL: gatewayURL, apiKey: apiKey, client: client}
}

func (s *GatewaySMSSender) SendSMS(ctx context.Context, to, body string) error {
	if s.gatewayURL == "" {
		return errors.New("sms gateway not configured")
	}
	payload, _ := json.Marshal(map[string]string{"to": to, "message": body})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	// Drain a bounded amount so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Signed webhook sender
// ---------------------------------------------------------------------------

// SignPayload computes an HMAC-SHA256 signature of the payload using the given
// secret, returning the hex-encoded result.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature returns true when the hex-encoded signature matches the
// HMAC-SHA256 of payload under the given secret.
func VerifySignature(payload []byte, secret, signature string) bool {
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ValidateWebhookURL checks that the URL is non-empty and uses http or https.
func ValidateWebhookURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

// HTTPWebhookSender POSTs JSON payloads with an HMAC-SHA256 signature header.
type HTTPWebhookSender struct {
	secret string
	client *http.Client
}

// NewHTTPWebhookSender creates an HTTPWebhookSender. The secret signs every
// payload; deliveries carry X-Webhook-Signature and X-Webhook-Timestamp
// headers so receivers can verify authenticity.
func NewHTTPWebhookSender(secret string, client *http.Client) *HTTPWebhookSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPWebhookSender{secret: secret, client: client}
}

func (s *HTTPWebhookSender) SendWebhook(ctx context.Context, rawURL string, payload interface{}) error {
	if err := ValidateWebhookURL(rawURL); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", "sha256="+SignPayload(body, s.secret))
	req.Header.Set("X-Webhook-Timestamp", time.Now().UTC().Format(time.RFC3339))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock senders (test doubles)
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SMSCall records a single call to SendSMS.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

// SendSMS records the call and optionally returns an error.
func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// WebhookCall records a single call to SendWebhook.
type WebhookCall struct {
	URL     string
	Payload interface{}
}

// MockWebhookSender is a test double for WebhookSender.
type MockWebhookSender struct {
	mu         sync.Mutex
	calls      []WebhookCall
	ShouldFail bool
	FailError  string
}

// SendWebhook records the call and optionally returns an error.
func (m *MockWebhookSender) SendWebhook(_ context.Context, url string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, WebhookCall{URL: url, Payload: payload})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded webhook calls.
func (m *MockWebhookSender) Calls() []WebhookCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WebhookCall, len(m.calls))
	copy(out, m.calls)
	return out
}
