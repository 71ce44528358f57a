package eligibility

import (
	"context"

	"github.com/rs/zerolog"
)

// Monitor runs the eligibility sweep over every configured patient.
type Monitor struct {
	store      *MonitoringStore
	provider   Provider
	snapshots  SnapshotStore
	dispatcher *Dispatcher
	policy     PolicyConstants
	log        zerolog.Logger
}

func NewMonitor(store *MonitoringStore, provider Provider, snapshots SnapshotStore,
	dispatcher *Dispatcher, policy PolicyConstants, log zerolog.Logger) *Monitor {
	return &Monitor{
		store:      store,
		provider:   provider,
		snapshots:  snapshots,
		dispatcher: dispatcher,
		policy:     policy,
		log:        log,
	}
}

// CheckAll sweeps every monitored patient once: fetch the current snapshot,
// diff it against the stored previous one, dispatch any alerts, then persist
// the current snapshot as the new baseline. One patient's failure never
// aborts the sweep for the rest; failures are logged and the patient is
// skipped. Patients are processed one at a time so no two fetches for the
// same patient can overlap within a sweep.
func (m *Monitor) CheckAll(ctx context.Context) []Alert {
	var all []Alert
	for _, cfg := range m.store.Configs() {
		alerts, err := m.checkPatient(ctx, cfg)
		if err != nil {
			m.log.Error().Err(err).
				Str("patient_id", cfg.PatientID).
				Msg("eligibility check failed, skipping patient")
			continue
		}
		all = append(all, alerts...)
	}
	return all
}

func (m *Monitor) checkPatient(ctx context.Context, cfg Config) ([]Alert, error) {
	prev, err := m.snapshots.Get(ctx, cfg.PatientID)
	if err != nil {
		return nil, err
	}
	curr, err := m.provider.Fetch(ctx, cfg.PatientID, cfg.InsuranceID)
	if err != nil {
		return nil, err
	}

	alerts := DetectChanges(prev, curr, cfg, m.policy)
	for _, alert := range alerts {
		m.dispatcher.Send(ctx, alert, cfg)
	}

	if err := m.snapshots.Save(ctx, cfg.PatientID, curr); err != nil {
		// Alerts already went out; a stale baseline only risks duplicate
		// alerts on the next sweep.
		m.log.Error().Err(err).
			Str("patient_id", cfg.PatientID).
			Msg("failed to persist eligibility snapshot")
	}
	return alerts, nil
}
