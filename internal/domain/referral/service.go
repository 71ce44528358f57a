package referral

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/masepro/referral/internal/platform/telemetry"
)

// Service runs the referral intake pipeline: normalize, decide, route,
// persist.
type Service struct {
	repo       Repository
	normalizer *Normalizer
	log        zerolog.Logger
	metrics    *telemetry.Provider
}

// NewService creates a referral Service.
func NewService(repo Repository, log zerolog.Logger, metrics *telemetry.Provider) *Service {
	return &Service{
		repo:       repo,
		normalizer: NewNormalizer(),
		log:        log,
		metrics:    metrics,
	}
}

// Normalize parses a raw intake payload without persisting anything.
func (s *Service) Normalize(_ context.Context, raw IntakePayload) (*Referral, error) {
	s.record("normalize")
	return s.normalizer.Normalize(raw)
}

// Decide attaches a recommendation and reason to a referral.
func (s *Service) Decide(_ context.Context, r *Referral) error {
	s.record("decide")
	if err := r.Validate(); err != nil {
		return err
	}
	r.Recommendation, r.Reason = Decide(r)
	return nil
}

// Resolve looks up the routing destination for a service category.
func (s *Service) Resolve(_ context.Context, category string) (destination, organization string) {
	s.record("route")
	return Resolve(category)
}

// Intake runs the full pipeline on a raw payload and persists the result.
// The referral lands in a terminal-or-review status reflecting the decision:
// Approve persists as Approved, Deny as Denied, Review as Review.
func (s *Service) Intake(ctx context.Context, raw IntakePayload) (*Referral, error) {
	s.record("intake")
	r, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	r.Status = StatusProcessing
	r.Recommendation, r.Reason = Decide(r)
	Route(r)

	switch r.Recommendation {
	case RecommendApprove:
		r.Status = StatusApproved
	case RecommendDeny:
		r.Status = StatusDenied
	default:
		r.Status = StatusReview
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("persist referral: %w", err)
	}

	s.log.Info().
		Str("referral_id", r.ID.String()).
		Str("patient", r.PatientName).
		Str("recommendation", string(r.Recommendation)).
		Str("destination", r.Destination).
		Str("urgency", string(r.Urgency)).
		Msg("referral intake complete")
	return r, nil
}

// Get returns a referral by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns referrals matching the filters, newest first.
func (s *Service) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Referral, int, error) {
	return s.repo.List(ctx, filters, limit, offset)
}

// UpdateStatus transitions a referral to a new status, enforcing the
// allowed transitions.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next Status) (*Referral, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, next) {
		return nil, fmt.Errorf("invalid status transition: %s -> %s", r.Status, next)
	}
	r.Status = next
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().Str("referral_id", r.ID.String()).Str("status", string(next)).Msg("referral status updated")
	return r, nil
}

func (s *Service) record(op string) {
	if s.metrics != nil {
		s.metrics.ReferralOperation(op)
	}
}
