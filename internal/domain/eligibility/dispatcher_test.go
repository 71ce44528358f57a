package eligibility

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/masepro/referral/internal/platform/notify"
)

func testAlert() Alert {
	return Alert{
		ID:          uuid.New(),
		PatientID:   "pat-1",
		PatientName: "Jane Doe",
		Type:        AlertEligibilityLost,
		Severity:    SeverityCritical,
		Message:     "Jane Doe is no longer eligible under Medicare",
	}
}

func TestDispatcher_FansOutToAllChannels(t *testing.T) {
	email := &notify.MockEmailSender{}
	sms := &notify.MockSMSSender{}
	webhook := &notify.MockWebhookSender{}
	store := NewMonitoringStore()
	d := NewDispatcher(email, sms, webhook, store, zerolog.Nop(), nil)

	cfg := testConfig()
	cfg.Notifications = NotificationTargets{
		Emails:     []string{"a@example.com", "b@example.com"},
		Phones:     []string{"+15551234567"},
		WebhookURL: "https://hooks.example.com/alerts",
	}

	d.Send(context.Background(), testAlert(), cfg)

	if got := len(email.Calls()); got != 2 {
		t.Errorf("expected 2 email sends, got %d", got)
	}
	if got := len(sms.Calls()); got != 1 {
		t.Errorf("expected 1 sms send, got %d", got)
	}
	if got := len(webhook.Calls()); got != 1 {
		t.Errorf("expected 1 webhook send, got %d", got)
	}
}

func TestDispatcher_SkipsEmptyChannels(t *testing.T) {
	email := &notify.MockEmailSender{}
	sms := &notify.MockSMSSender{}
	webhook := &notify.MockWebhookSender{}
	store := NewMonitoringStore()
	d := NewDispatcher(email, sms, webhook, store, zerolog.Nop(), nil)

	cfg := testConfig()
	cfg.Notifications = NotificationTargets{Emails: []string{"a@example.com"}}

	d.Send(context.Background(), testAlert(), cfg)

	if got := len(sms.Calls()); got != 0 {
		t.Errorf("expected no sms sends, got %d", got)
	}
	if got := len(webhook.Calls()); got != 0 {
		t.Errorf("expected no webhook sends, got %d", got)
	}
}

// A failing channel must not block the others, and the alert still lands in
// the history exactly once.
func TestDispatcher_ChannelFailureIsIsolated(t *testing.T) {
	email := &notify.MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	sms := &notify.MockSMSSender{}
	webhook := &notify.MockWebhookSender{}
	store := NewMonitoringStore()
	d := NewDispatcher(email, sms, webhook, store, zerolog.Nop(), nil)

	cfg := testConfig()
	cfg.Notifications = NotificationTargets{
		Emails:     []string{"a@example.com"},
		Phones:     []string{"+15551234567"},
		WebhookURL: "https://hooks.example.com/alerts",
	}

	alert := testAlert()
	d.Send(context.Background(), alert, cfg)

	if got := len(sms.Calls()); got != 1 {
		t.Errorf("sms should still be attempted, got %d calls", got)
	}
	if got := len(webhook.Calls()); got != 1 {
		t.Errorf("webhook should still be attempted, got %d calls", got)
	}
	history := store.Alerts()
	if len(history) != 1 {
		t.Fatalf("expected alert in history exactly once, got %d entries", len(history))
	}
	if history[0].ID != alert.ID {
		t.Error("wrong alert recorded")
	}
}

func TestDispatcher_HistoryRecordedOncePerSend(t *testing.T) {
	email := &notify.MockEmailSender{}
	store := NewMonitoringStore()
	d := NewDispatcher(email, &notify.MockSMSSender{}, &notify.MockWebhookSender{}, store, zerolog.Nop(), nil)

	cfg := testConfig()
	cfg.Notifications = NotificationTargets{Emails: []string{"a@example.com", "b@example.com", "c@example.com"}}

	d.Send(context.Background(), testAlert(), cfg)
	d.Send(context.Background(), testAlert(), cfg)

	if got := len(store.Alerts()); got != 2 {
		t.Errorf("expected 2 history entries for 2 sends, got %d", got)
	}
}
