package referral

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists referral records.
type Repository interface {
	Create(ctx context.Context, r *Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	Update(ctx context.Context, r *Referral) error
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Referral, int, error)
}

// ListFilters narrows List results. Zero values match everything.
type ListFilters struct {
	Status      Status
	Urgency     Urgency
	Destination string
}
