package eligibility

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DetectChanges diffs a previous snapshot against the current one and
// returns every applicable alert. Rules are independent: each triggered
// rule appends one alert, and several may fire in the same pass. A nil
// previous snapshot means first observation, so no diff-based rule can
// trigger; the deductible rule still evaluates the current state.
func DetectChanges(prev, curr *Snapshot, cfg Config, policy PolicyConstants) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	if prev != nil && prev.IsEligible && !curr.IsEligible {
		alerts = append(alerts, Alert{
			ID:             uuid.New(),
			PatientID:      cfg.PatientID,
			PatientName:    cfg.PatientName,
			Type:           AlertEligibilityLost,
			Severity:       SeverityCritical,
			Message:        fmt.Sprintf("%s is no longer eligible under %s", cfg.PatientName, cfg.InsuranceProvider),
			Timestamp:      now,
			ActionRequired: true,
			Recommendations: []string{
				"Contact the patient to verify coverage status",
				"Check for a replacement policy or secondary coverage",
				"Place new episodes on hold pending verification",
			},
			Financial: &FinancialImpact{
				EstimatedLoss:       policy.EpisodeLoss,
				AffectedServices:    policy.DefaultServices,
				ReimbursementChange: -1.0,
			},
			Change: &Change{Field: "isEligible", Previous: "true", Current: "false"},
		})
	}

	if prev != nil && prev.Plan != nil && curr.Plan != nil && prev.Plan.PlanName != curr.Plan.PlanName {
		delta := policy.PlanRate(curr.Plan.PlanName) - policy.PlanRate(prev.Plan.PlanName)
		severity := SeverityMedium
		if delta < policy.SeverityDeltaThreshold {
			severity = SeverityHigh
		}
		loss := -delta * policy.EpisodeValue
		if loss < 0 {
			loss = 0
		}
		alerts = append(alerts, Alert{
			ID:             uuid.New(),
			PatientID:      cfg.PatientID,
			PatientName:    cfg.PatientName,
			Type:           AlertInsuranceChanged,
			Severity:       severity,
			Message:        fmt.Sprintf("%s changed plans from %q to %q", cfg.PatientName, prev.Plan.PlanName, curr.Plan.PlanName),
			Timestamp:      now,
			ActionRequired: delta < 0,
			Recommendations: []string{
				"Re-verify benefits under the new plan",
				"Confirm authorization requirements with the new payer",
			},
			Financial: &FinancialImpact{
				EstimatedLoss:       loss,
				AffectedServices:    policy.DefaultServices,
				ReimbursementChange: delta,
			},
			Change: &Change{Field: "planName", Previous: prev.Plan.PlanName, Current: curr.Plan.PlanName},
		})
	}

	if curr.Plan != nil && curr.Plan.DeductibleRemaining <= cfg.Thresholds.DeductibleRemaining {
		alerts = append(alerts, Alert{
			ID:             uuid.New(),
			PatientID:      cfg.PatientID,
			PatientName:    cfg.PatientName,
			Type:           AlertDeductibleMet,
			Severity:       SeverityLow,
			Message:        fmt.Sprintf("%s has $%.2f remaining on their deductible", cfg.PatientName, curr.Plan.DeductibleRemaining),
			Timestamp:      now,
			ActionRequired: false,
			Recommendations: []string{
				"Expect improved reimbursement for upcoming claims",
			},
			Financial: &FinancialImpact{
				EstimatedLoss:       0,
				AffectedServices:    nil,
				ReimbursementChange: policy.DeductibleMetEstimate,
			},
		})
	}

	return alerts
}
