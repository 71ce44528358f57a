package referral

import "testing"

func TestDecide_Rules(t *testing.T) {
	tests := []struct {
		name       string
		diagnosis  string
		insurance  string
		wantRec    Recommendation
		wantReason string
	}{
		{"palliative denies", "Palliative care, stage IV", "Aetna", RecommendDeny, ReasonPalliativeDenied},
		{"medicare approves", "CHF exacerbation", "Medicare", RecommendApprove, ReasonMedicareApproved},
		{"medicare advantage approves", "Hip replacement recovery", "Medicare Advantage", RecommendApprove, ReasonMedicareApproved},
		{"unknown payer reviews", "Diabetes management", "Unknown", RecommendReview, ReasonManualReview},
		{"commercial payer reviews", "Wound care", "Blue Cross", RecommendReview, ReasonManualReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Referral{Diagnosis: tt.diagnosis, InsuranceProvider: tt.insurance}
			rec, reason := Decide(r)
			if rec != tt.wantRec {
				t.Errorf("expected %s, got %s", tt.wantRec, rec)
			}
			if reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, reason)
			}
		})
	}
}

// A palliative diagnosis denies even when the payer is Medicare.
func TestDecide_PalliativeTakesPriorityOverMedicare(t *testing.T) {
	r := &Referral{Diagnosis: "palliative comfort care", InsuranceProvider: "Medicare"}
	rec, reason := Decide(r)
	if rec != RecommendDeny {
		t.Errorf("expected Deny, got %s", rec)
	}
	if reason != ReasonPalliativeDenied {
		t.Errorf("expected reason %q, got %q", ReasonPalliativeDenied, reason)
	}
}

func TestDecide_CaseInsensitive(t *testing.T) {
	r := &Referral{Diagnosis: "PALLIATIVE", InsuranceProvider: "MEDICARE"}
	if rec, _ := Decide(r); rec != RecommendDeny {
		t.Errorf("expected Deny, got %s", rec)
	}
	r2 := &Referral{Diagnosis: "chf", InsuranceProvider: "mediCARE"}
	if rec, _ := Decide(r2); rec != RecommendApprove {
		t.Errorf("expected Approve, got %s", rec)
	}
}
