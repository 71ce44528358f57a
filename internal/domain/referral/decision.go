package referral

import "strings"

// Decision reason strings surfaced to operators and downstream systems.
const (
	ReasonPalliativeDenied = "palliative care not covered"
	ReasonMedicareApproved = "high likelihood of approval under Medicare"
	ReasonManualReview     = "manual review required for non-standard insurance provider"
)

// Decide applies the intake decision rules to a normalized referral and
// returns the recommendation with its reason. Rules apply in fixed priority
// order: a palliative diagnosis denies regardless of payer, Medicare coverage
// approves, everything else goes to manual review.
func Decide(r *Referral) (Recommendation, string) {
	if strings.Contains(strings.ToLower(r.Diagnosis), "palliative") {
		return RecommendDeny, ReasonPalliativeDenied
	}
	if strings.Contains(strings.ToLower(r.InsuranceProvider), "medicare") {
		return RecommendApprove, ReasonMedicareApproved
	}
	return RecommendReview, ReasonManualReview
}
