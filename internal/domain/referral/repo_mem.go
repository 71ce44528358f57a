package referral

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// referralRepoMem is an in-memory Repository used in tests and when no
// database is configured.
type referralRepoMem struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Referral
}

// NewRepoMem returns an in-memory Repository.
func NewRepoMem() Repository {
	return &referralRepoMem{items: make(map[uuid.UUID]*Referral)}
}

func (r *referralRepoMem) Create(_ context.Context, ref *Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	now := time.Now().UTC()
	ref.CreatedAt = now
	ref.UpdatedAt = now
	cp := *ref
	r.items[ref.ID] = &cp
	return nil
}

func (r *referralRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ref
	return &cp, nil
}

func (r *referralRepoMem) Update(_ context.Context, ref *Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[ref.ID]; !ok {
		return pgx.ErrNoRows
	}
	ref.UpdatedAt = time.Now().UTC()
	cp := *ref
	r.items[ref.ID] = &cp
	return nil
}

func (r *referralRepoMem) List(_ context.Context, filters ListFilters, limit, offset int) ([]*Referral, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*Referral
	for _, ref := range r.items {
		if filters.Status != "" && ref.Status != filters.Status {
			continue
		}
		if filters.Urgency != "" && ref.Urgency != filters.Urgency {
			continue
		}
		if filters.Destination != "" && ref.Destination != filters.Destination {
			continue
		}
		cp := *ref
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}
