package eligibility

import (
	"sort"
	"sync"
)

// MonitoringStore owns the monitored-patient configs and the append-only
// alert history. One active config per patient: re-adding replaces.
type MonitoringStore struct {
	mu      sync.RWMutex
	configs map[string]Config
	history []Alert
}

func NewMonitoringStore() *MonitoringStore {
	return &MonitoringStore{configs: make(map[string]Config)}
}

// SetConfig adds or replaces the config for a patient.
func (s *MonitoringStore) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.PatientID] = cfg
}

// GetConfig returns the config for a patient.
func (s *MonitoringStore) GetConfig(patientID string) (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[patientID]
	return cfg, ok
}

// RemoveConfig stops monitoring a patient. It reports whether a config
// existed.
func (s *MonitoringStore) RemoveConfig(patientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.configs[patientID]
	delete(s.configs, patientID)
	return ok
}

// Configs returns all monitored configs ordered by patient id for stable
// sweeps.
func (s *MonitoringStore) Configs() []Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Config, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatientID < out[j].PatientID })
	return out
}

// AppendAlert records an alert in the history log.
func (s *MonitoringStore) AppendAlert(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, a)
}

// Alerts returns a copy of the alert history, oldest first.
func (s *MonitoringStore) Alerts() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alert, len(s.history))
	copy(out, s.history)
	return out
}
