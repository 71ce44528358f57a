package eligibility

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/masepro/referral/internal/platform/notify"
	"github.com/masepro/referral/internal/platform/telemetry"
)

// Dispatcher fans one alert out to every configured channel. Channel
// failures are isolated: a failing channel never blocks the others, and the
// alert is appended to the history exactly once after all attempts.
type Dispatcher struct {
	email   notify.EmailSender
	sms     notify.SMSSender
	webhook notify.WebhookSender
	store   *MonitoringStore
	log     zerolog.Logger
	metrics *telemetry.Provider
}

func NewDispatcher(email notify.EmailSender, sms notify.SMSSender, webhook notify.WebhookSender,
	store *MonitoringStore, log zerolog.Logger, metrics *telemetry.Provider) *Dispatcher {
	return &Dispatcher{
		email:   email,
		sms:     sms,
		webhook: webhook,
		store:   store,
		log:     log,
		metrics: metrics,
	}
}

// Send dispatches an alert to every non-empty channel in the config
// concurrently and records the alert in the history once all channel
// attempts have completed, regardless of individual outcomes.
func (d *Dispatcher) Send(ctx context.Context, alert Alert, cfg Config) {
	var wg sync.WaitGroup

	for _, to := range cfg.Notifications.Emails {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			subject := fmt.Sprintf("[%s] Eligibility alert for %s", alert.Severity, alert.PatientName)
			d.attempt("email", to, alert, d.email.SendEmail(ctx, to, subject, alert.Message))
		}(to)
	}
	for _, to := range cfg.Notifications.Phones {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			d.attempt("sms", to, alert, d.sms.SendSMS(ctx, to, alert.Message))
		}(to)
	}
	if url := cfg.Notifications.WebhookURL; url != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.attempt("webhook", url, alert, d.webhook.SendWebhook(ctx, url, alert))
		}()
	}

	wg.Wait()
	d.store.AppendAlert(alert)
}

func (d *Dispatcher) attempt(channel, target string, alert Alert, err error) {
	outcome := "delivered"
	if err != nil {
		outcome = "failed"
		d.log.Error().Err(err).
			Str("channel", channel).
			Str("target", target).
			Str("alert_id", alert.ID.String()).
			Str("patient_id", alert.PatientID).
			Msg("alert delivery failed")
	} else {
		d.log.Debug().
			Str("channel", channel).
			Str("alert_id", alert.ID.String()).
			Msg("alert delivered")
	}
	if d.metrics != nil {
		d.metrics.AlertDispatch(channel, outcome)
	}
}
