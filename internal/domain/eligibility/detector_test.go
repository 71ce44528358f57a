package eligibility

import (
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		PatientID:         "pat-1",
		PatientName:       "Jane Doe",
		InsuranceProvider: "Medicare",
		InsuranceID:       "MED-123",
		Frequency:         FrequencyWeekly,
		Thresholds: AlertThresholds{
			DeductibleRemaining:  500,
			OutOfPocketRemaining: 1000,
			DaysUntilExpiration:  30,
		},
	}
}

func snapshotWithPlan(eligible bool, planName string, deductibleRemaining float64) *Snapshot {
	return &Snapshot{
		IsEligible: eligible,
		Plan: &PlanDetails{
			PlanName:            planName,
			GroupNumber:         "GRP-1",
			DeductibleTotal:     2000,
			DeductibleRemaining: deductibleRemaining,
		},
		LastVerified: time.Now().UTC(),
	}
}

func TestDetectChanges_EligibilityLost(t *testing.T) {
	prev := snapshotWithPlan(true, "Medicare Part A", 1500)
	curr := &Snapshot{IsEligible: false, LastVerified: time.Now().UTC()}

	alerts := DetectChanges(prev, curr, testConfig(), DefaultPolicy())

	if len(alerts) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Type != AlertEligibilityLost {
		t.Errorf("expected eligibility_lost, got %s", a.Type)
	}
	if a.Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %s", a.Severity)
	}
	if !a.ActionRequired {
		t.Error("expected action required")
	}
	if a.Financial == nil || a.Financial.EstimatedLoss != DefaultPolicy().EpisodeLoss {
		t.Errorf("expected full episode loss, got %+v", a.Financial)
	}
	if len(a.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
}

// Plan change and deductible-met are independent rules: both must fire in
// the same evaluation pass.
func TestDetectChanges_MultipleSimultaneousAlerts(t *testing.T) {
	prev := snapshotWithPlan(true, "Medicare Part A", 1500)
	curr := snapshotWithPlan(true, "Medicaid", 100)

	alerts := DetectChanges(prev, curr, testConfig(), DefaultPolicy())

	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	byType := make(map[AlertType]Alert)
	for _, a := range alerts {
		byType[a.Type] = a
	}
	changed, ok := byType[AlertInsuranceChanged]
	if !ok {
		t.Fatal("expected an insurance_changed alert")
	}
	if changed.Severity != SeverityHigh {
		t.Errorf("medicare -> medicaid delta is -0.30, expected high severity, got %s", changed.Severity)
	}
	if changed.Financial == nil || changed.Financial.ReimbursementChange >= 0 {
		t.Errorf("expected negative reimbursement change, got %+v", changed.Financial)
	}
	met, ok := byType[AlertDeductibleMet]
	if !ok {
		t.Fatal("expected a deductible_met alert")
	}
	if met.Severity != SeverityLow {
		t.Errorf("expected low severity, got %s", met.Severity)
	}
	if met.ActionRequired {
		t.Error("deductible_met should not require action")
	}
	if met.Financial == nil || met.Financial.ReimbursementChange != DefaultPolicy().DeductibleMetEstimate {
		t.Errorf("expected +%.2f estimate, got %+v", DefaultPolicy().DeductibleMetEstimate, met.Financial)
	}
}

func TestDetectChanges_PlanChangeSeverity(t *testing.T) {
	tests := []struct {
		name     string
		prevPlan string
		currPlan string
		want     Severity
	}{
		{"large drop is high", "Medicare Part B", "Medicaid Managed", SeverityHigh},
		{"small shift is medium", "Aetna PPO", "Cigna HMO", SeverityMedium},
		{"upgrade is medium", "Medicaid Managed", "Medicare Part A", SeverityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := snapshotWithPlan(true, tt.prevPlan, 1500)
			curr := snapshotWithPlan(true, tt.currPlan, 1500)
			alerts := DetectChanges(prev, curr, testConfig(), DefaultPolicy())
			if len(alerts) != 1 {
				t.Fatalf("expected 1 alert, got %d", len(alerts))
			}
			if alerts[0].Severity != tt.want {
				t.Errorf("expected %s, got %s", tt.want, alerts[0].Severity)
			}
		})
	}
}

func TestDetectChanges_NoPreviousSnapshot(t *testing.T) {
	curr := snapshotWithPlan(true, "Aetna PPO", 1500)
	alerts := DetectChanges(nil, curr, testConfig(), DefaultPolicy())
	if len(alerts) != 0 {
		t.Errorf("first observation should not raise diff alerts, got %d", len(alerts))
	}
}

func TestDetectChanges_NoChanges(t *testing.T) {
	prev := snapshotWithPlan(true, "Aetna PPO", 1500)
	curr := snapshotWithPlan(true, "Aetna PPO", 1400)
	alerts := DetectChanges(prev, curr, testConfig(), DefaultPolicy())
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d", len(alerts))
	}
}

func TestPolicyConstants_PlanRate(t *testing.T) {
	policy := DefaultPolicy()
	if got := policy.PlanRate("Medicare Part A"); got != 1.00 {
		t.Errorf("medicare rate = %v, want 1.00", got)
	}
	if got := policy.PlanRate("Medicaid Managed Care"); got != 0.70 {
		t.Errorf("medicaid rate = %v, want 0.70", got)
	}
	if got := policy.PlanRate("Acme Health Plus"); got != policy.DefaultPlanRate {
		t.Errorf("unknown plan rate = %v, want default %v", got, policy.DefaultPlanRate)
	}
	// Dual-eligible names match multiple rules; the first listed rule wins,
	// every run.
	for i := 0; i < 100; i++ {
		if got := policy.PlanRate("Medicare-Medicaid Plan"); got != 1.00 {
			t.Fatalf("dual plan rate = %v, want 1.00", got)
		}
	}
}
