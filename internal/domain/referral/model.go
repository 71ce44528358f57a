package referral

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Urgency is the requested turnaround for a referral.
type Urgency string

const (
	UrgencyRoutine Urgency = "routine"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyStat    Urgency = "stat"
)

// Valid reports whether u is one of the enumerated urgency levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyRoutine, UrgencyUrgent, UrgencyStat:
		return true
	}
	return false
}

// Recommendation is the decision engine's verdict for a referral.
type Recommendation string

const (
	RecommendApprove Recommendation = "Approve"
	RecommendDeny    Recommendation = "Deny"
	RecommendReview  Recommendation = "Review"
)

// Status is the lifecycle state of a referral. Referrals are never deleted,
// only status-transitioned.
type Status string

const (
	StatusNew        Status = "New"
	StatusProcessing Status = "Processing"
	StatusApproved   Status = "Approved"
	StatusDenied     Status = "Denied"
	StatusReview     Status = "Review"
)

// validTransitions lists the allowed status transitions.
var validTransitions = map[Status][]Status{
	StatusNew:        {StatusProcessing},
	StatusProcessing: {StatusApproved, StatusDenied, StatusReview},
	StatusReview:     {StatusApproved, StatusDenied},
}

// CanTransition reports whether a referral may move from to next.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Referral represents one request for care services, normalized from an
// inbound payload.
type Referral struct {
	ID                uuid.UUID `db:"id" json:"id"`
	PatientName       string    `db:"patient_name" json:"patientName"`
	Diagnosis         string    `db:"diagnosis" json:"diagnosis"`
	DiagnosisCode     string    `db:"diagnosis_code" json:"diagnosisCode,omitempty"`
	InsuranceProvider string    `db:"insurance_provider" json:"insuranceProvider"`
	InsuranceID       string    `db:"insurance_id" json:"insuranceId,omitempty"`
	Services          []string  `db:"services" json:"services"`
	Urgency           Urgency   `db:"urgency" json:"urgency"`
	Source            string    `db:"source" json:"source"`
	Address           string    `db:"address" json:"address"`
	ZipCode           string    `db:"zip_code" json:"zipCode"`
	DistanceMiles     *float64  `db:"distance_miles" json:"distanceMiles,omitempty"`
	PhysicianOrders   bool      `db:"physician_orders" json:"physicianOrders"`
	EpisodeDays       int       `db:"episode_days" json:"episodeDays"`

	// Attached by the decision engine.
	Recommendation Recommendation `db:"recommendation" json:"recommendation,omitempty"`
	Reason         string         `db:"reason" json:"reason,omitempty"`

	// Attached by the routing resolver.
	Destination      string `db:"destination" json:"destination,omitempty"`
	OrganizationName string `db:"organization_name" json:"organizationName,omitempty"`

	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks the referral invariants: a patient name, a valid urgency
// level and at least one requested service category.
func (r *Referral) Validate() error {
	if r.PatientName == "" {
		return fmt.Errorf("patient name is required")
	}
	if !r.Urgency.Valid() {
		return fmt.Errorf("invalid urgency: %s", r.Urgency)
	}
	if len(r.Services) == 0 {
		return fmt.Errorf("at least one service category is required")
	}
	return nil
}
