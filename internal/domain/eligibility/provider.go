package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Provider fetches a point-in-time eligibility snapshot from an external
// payer or network API.
type Provider interface {
	Fetch(ctx context.Context, patientID, insuranceID string) (*Snapshot, error)
}

// DependencyError marks a transient failure of the external eligibility
// API. The monitoring sweep catches these per patient.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("eligibility api %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// ---------------------------------------------------------------------------
// HTTP implementation
// ---------------------------------------------------------------------------

// HTTPProvider talks to the external eligibility verification API.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider creates an HTTPProvider. A zero timeout falls back to
// 10 seconds so an unresponsive upstream cannot stall the sweep.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type snapshotResponse struct {
	Eligible     bool         `json:"eligible"`
	Plan         *PlanDetails `json:"plan"`
	LastVerified time.Time    `json:"lastVerified"`
}

// Fetch retrieves the current snapshot for a patient. An insurance id the
// upstream rejects as invalid yields an ineligible snapshot with no plan
// details rather than an error; transport failures surface as
// *DependencyError.
func (p *HTTPProvider) Fetch(ctx context.Context, patientID, insuranceID string) (*Snapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/eligibility?patient_id=%s&insurance_id=%s",
		p.baseURL, url.QueryEscape(patientID), url.QueryEscape(insuranceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &DependencyError{Op: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &DependencyError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusNotFound:
		// Upstream does not recognize the insurance id.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &Snapshot{IsEligible: false, LastVerified: time.Now().UTC()}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &DependencyError{Op: "fetch", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body snapshotResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, &DependencyError{Op: "decode", Err: err}
	}
	snap := &Snapshot{
		IsEligible:   body.Eligible,
		Plan:         body.Plan,
		LastVerified: body.LastVerified,
	}
	if snap.LastVerified.IsZero() {
		snap.LastVerified = time.Now().UTC()
	}
	return snap, nil
}

// ---------------------------------------------------------------------------
// Deterministic fake
// ---------------------------------------------------------------------------

// FakeProvider is a scriptable Provider for tests and local development.
type FakeProvider struct {
	mu        sync.Mutex
	snapshots map[string]*Snapshot
	errs      map[string]error
	fetches   []string
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		snapshots: make(map[string]*Snapshot),
		errs:      make(map[string]error),
	}
}

// SetSnapshot scripts the snapshot returned for a patient.
func (f *FakeProvider) SetSnapshot(patientID string, snap *Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[patientID] = snap
}

// FailWith scripts an error for a patient.
func (f *FakeProvider) FailWith(patientID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[patientID] = err
}

// Fetches returns the patient ids fetched, in order.
func (f *FakeProvider) Fetches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.fetches))
	copy(out, f.fetches)
	return out
}

func (f *FakeProvider) Fetch(_ context.Context, patientID, _ string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, patientID)
	if err := f.errs[patientID]; err != nil {
		return nil, err
	}
	if snap, ok := f.snapshots[patientID]; ok {
		cp := *snap
		return &cp, nil
	}
	return &Snapshot{IsEligible: false, LastVerified: time.Now().UTC()}, nil
}
