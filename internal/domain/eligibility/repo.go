package eligibility

import "context"

// SnapshotStore persists the most recent snapshot per patient between
// sweep cycles so the next sweep has a "previous" state to diff against.
type SnapshotStore interface {
	// Get returns the stored snapshot for a patient, or nil when the
	// patient has never been swept.
	Get(ctx context.Context, patientID string) (*Snapshot, error)
	// Save upserts the snapshot for a patient.
	Save(ctx context.Context, patientID string, snap *Snapshot) error
}
