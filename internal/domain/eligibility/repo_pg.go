package eligibility

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type snapshotStorePG struct{ pool *pgxpool.Pool }

// NewSnapshotStorePG returns a SnapshotStore backed by PostgreSQL. Plan
// details are stored as jsonb so the benefit breakdown survives schema
// evolution in the upstream API.
func NewSnapshotStorePG(pool *pgxpool.Pool) SnapshotStore {
	return &snapshotStorePG{pool: pool}
}

func (s *snapshotStorePG) Get(ctx context.Context, patientID string) (*Snapshot, error) {
	var (
		eligible     bool
		plan         *PlanDetails
		lastVerified time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT is_eligible, plan, last_verified
		FROM eligibility_snapshot WHERE patient_id = $1`, patientID).
		Scan(&eligible, &plan, &lastVerified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Snapshot{IsEligible: eligible, Plan: plan, LastVerified: lastVerified}, nil
}

func (s *snapshotStorePG) Save(ctx context.Context, patientID string, snap *Snapshot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO eligibility_snapshot (patient_id, is_eligible, plan, last_verified)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (patient_id) DO UPDATE SET
			is_eligible = EXCLUDED.is_eligible,
			plan = EXCLUDED.plan,
			last_verified = EXCLUDED.last_verified,
			updated_at = NOW()`,
		patientID, snap.IsEligible, snap.Plan, snap.LastVerified)
	return err
}
