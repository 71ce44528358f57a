package eligibility

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CheckFrequency is how often a monitored patient should be re-verified.
type CheckFrequency string

const (
	FrequencyDaily   CheckFrequency = "daily"
	FrequencyWeekly  CheckFrequency = "weekly"
	FrequencyMonthly CheckFrequency = "monthly"
)

// AlertThresholds are the numeric trip points for change detection.
type AlertThresholds struct {
	DeductibleRemaining  float64 `json:"deductibleRemaining" validate:"gte=0"`
	OutOfPocketRemaining float64 `json:"outOfPocketRemaining" validate:"gte=0"`
	DaysUntilExpiration  int     `json:"daysUntilExpiration" validate:"gte=0"`
}

// NotificationTargets lists the channels an alert fans out to. Empty
// channels are skipped.
type NotificationTargets struct {
	Emails     []string `json:"emails" validate:"dive,email"`
	Phones     []string `json:"phones" validate:"dive,e164"`
	WebhookURL string   `json:"webhookUrl,omitempty" validate:"omitempty,url"`
}

// Config describes one monitored patient. At most one config is active per
// patient: re-adding replaces the previous one.
type Config struct {
	PatientID         string              `json:"patientId" validate:"required"`
	PatientName       string              `json:"patientName" validate:"required"`
	InsuranceProvider string              `json:"insuranceProvider" validate:"required"`
	InsuranceID       string              `json:"insuranceId" validate:"required"`
	Frequency         CheckFrequency      `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Thresholds        AlertThresholds     `json:"thresholds"`
	Notifications     NotificationTargets `json:"notifications"`
}

// PlanDetails is the benefit breakdown attached to an eligible snapshot.
type PlanDetails struct {
	PlanName             string  `json:"planName"`
	GroupNumber          string  `json:"groupNumber"`
	CopayInNetwork       float64 `json:"copayInNetwork"`
	CopayOutOfNetwork    float64 `json:"copayOutOfNetwork"`
	DeductibleTotal      float64 `json:"deductibleTotal"`
	DeductibleRemaining  float64 `json:"deductibleRemaining"`
	OutOfPocketMax       float64 `json:"outOfPocketMax"`
	OutOfPocketRemaining float64 `json:"outOfPocketRemaining"`
}

// Snapshot is the point-in-time eligibility state for a patient.
type Snapshot struct {
	IsEligible   bool         `json:"isEligible"`
	Plan         *PlanDetails `json:"plan,omitempty"`
	LastVerified time.Time    `json:"lastVerified"`
}

// AlertType enumerates the detectable eligibility changes.
type AlertType string

const (
	AlertEligibilityLost   AlertType = "eligibility_lost"
	AlertInsuranceChanged  AlertType = "insurance_changed"
	AlertBenefitsReduced   AlertType = "benefits_reduced"
	AlertExpirationWarning AlertType = "expiration_warning"
	AlertDeductibleMet     AlertType = "deductible_met"
)

// Severity orders alerts for operator triage.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// FinancialImpact estimates the dollar effect of a detected change.
type FinancialImpact struct {
	EstimatedLoss       float64  `json:"estimatedLoss"`
	AffectedServices    []string `json:"affectedServices"`
	ReimbursementChange float64  `json:"reimbursementChange"`
}

// Change records the before/after values behind an alert.
type Change struct {
	Field    string `json:"field"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Alert is one emitted eligibility event. Immutable once created.
type Alert struct {
	ID              uuid.UUID        `json:"id"`
	PatientID       string           `json:"patientId"`
	PatientName     string           `json:"patientName"`
	Type            AlertType        `json:"type"`
	Severity        Severity         `json:"severity"`
	Message         string           `json:"message"`
	Timestamp       time.Time        `json:"timestamp"`
	ActionRequired  bool             `json:"actionRequired"`
	Recommendations []string         `json:"recommendations"`
	Financial       *FinancialImpact `json:"financialImpact,omitempty"`
	Change          *Change          `json:"change,omitempty"`
}

// PolicyConstants carries the dollar and rate assumptions used by change
// detection. Injectable so deployments can tune them.
type PolicyConstants struct {
	// EpisodeLoss is the estimated full-episode revenue lost when a patient
	// drops off coverage entirely.
	EpisodeLoss float64
	// EpisodeValue scales reimbursement-delta estimates for plan changes.
	EpisodeValue float64
	// DefaultServices is the service list attached to a full-episode loss.
	DefaultServices []string
	// PlanRates maps plan-name substrings to reimbursement rate fractions.
	// Rules are checked in order and the first match wins, so dual-eligible
	// plan names ("Medicare-Medicaid Plan") resolve the same way every run.
	PlanRates []PlanRateRule
	// DefaultPlanRate applies when no substring matches.
	DefaultPlanRate float64
	// DeductibleMetEstimate is the reimbursement upside once a deductible
	// is (nearly) met.
	DeductibleMetEstimate float64
	// SeverityDeltaThreshold: a reimbursement delta below this marks a plan
	// change as high severity.
	SeverityDeltaThreshold float64
}

// PlanRateRule matches a plan-name substring to a reimbursement rate.
type PlanRateRule struct {
	Substring string
	Rate      float64
}

// DefaultPolicy returns the standard policy constants.
func DefaultPolicy() PolicyConstants {
	return PolicyConstants{
		EpisodeLoss:  15000,
		EpisodeValue: 12000,
		DefaultServices: []string{
			"skilled_nursing", "physical_therapy", "occupational_therapy",
		},
		PlanRates: []PlanRateRule{
			{"medicare", 1.00},
			{"medicaid", 0.70},
			{"aetna", 0.85},
			{"cigna", 0.82},
			{"humana", 0.83},
			{"united", 0.84},
			{"bcbs", 0.86},
			{"blue cross", 0.86},
		},
		DefaultPlanRate:        0.80,
		DeductibleMetEstimate:  0.15,
		SeverityDeltaThreshold: -0.10,
	}
}

// PlanRate looks up the reimbursement rate for a plan name by substring
// match, first rule wins, falling back to the default rate.
func (p PolicyConstants) PlanRate(planName string) float64 {
	lower := strings.ToLower(planName)
	for _, rule := range p.PlanRates {
		if strings.Contains(lower, rule.Substring) {
			return rule.Rate
		}
	}
	return p.DefaultPlanRate
}
