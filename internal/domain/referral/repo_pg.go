package referral

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type referralRepoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by PostgreSQL.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &referralRepoPG{pool: pool}
}

const referralCols = `id, patient_name, diagnosis, diagnosis_code,
	insurance_provider, insurance_id, services, urgency, source,
	address, zip_code, distance_miles, physician_orders, episode_days,
	recommendation, reason, destination, organization_name,
	status, created_at, updated_at`

func (r *referralRepoPG) scanReferral(row pgx.Row) (*Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.PatientName, &ref.Diagnosis, &ref.DiagnosisCode,
		&ref.InsuranceProvider, &ref.InsuranceID, &ref.Services, &ref.Urgency, &ref.Source,
		&ref.Address, &ref.ZipCode, &ref.DistanceMiles, &ref.PhysicianOrders, &ref.EpisodeDays,
		&ref.Recommendation, &ref.Reason, &ref.Destination, &ref.OrganizationName,
		&ref.Status, &ref.CreatedAt, &ref.UpdatedAt)
	return &ref, err
}

func (r *referralRepoPG) Create(ctx context.Context, ref *Referral) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO referral (id, patient_name, diagnosis, diagnosis_code,
			insurance_provider, insurance_id, services, urgency, source,
			address, zip_code, distance_miles, physician_orders, episode_days,
			recommendation, reason, destination, organization_name, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING created_at, updated_at`,
		ref.ID, ref.PatientName, ref.Diagnosis, ref.DiagnosisCode,
		ref.InsuranceProvider, ref.InsuranceID, ref.Services, ref.Urgency, ref.Source,
		ref.Address, ref.ZipCode, ref.DistanceMiles, ref.PhysicianOrders, ref.EpisodeDays,
		ref.Recommendation, ref.Reason, ref.Destination, ref.OrganizationName, ref.Status).
		Scan(&ref.CreatedAt, &ref.UpdatedAt)
}

func (r *referralRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return r.scanReferral(r.pool.QueryRow(ctx, `SELECT `+referralCols+` FROM referral WHERE id = $1`, id))
}

func (r *referralRepoPG) Update(ctx context.Context, ref *Referral) error {
	return r.pool.QueryRow(ctx, `
		UPDATE referral SET recommendation=$2, reason=$3, destination=$4,
			organization_name=$5, status=$6, distance_miles=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		ref.ID, ref.Recommendation, ref.Reason, ref.Destination,
		ref.OrganizationName, ref.Status, ref.DistanceMiles).
		Scan(&ref.UpdatedAt)
}

func (r *referralRepoPG) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Referral, int, error) {
	where := []string{}
	args := []interface{}{}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filters.Urgency != "" {
		args = append(args, filters.Urgency)
		where = append(where, fmt.Sprintf("urgency = $%d", len(args)))
	}
	if filters.Destination != "" {
		args = append(args, filters.Destination)
		where = append(where, fmt.Sprintf("destination = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM referral`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, `SELECT `+referralCols+` FROM referral`+clause+
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Referral
	for rows.Next() {
		ref, err := r.scanReferral(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ref)
	}
	return items, total, nil
}
