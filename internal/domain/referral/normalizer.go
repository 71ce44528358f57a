package referral

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors returned by Normalize.
var (
	// ErrNotReferral indicates the input contains no recognizable referral
	// keywords and should be discarded.
	ErrNotReferral = errors.New("input does not look like a referral")
	// ErrNoPatientName indicates referral keywords were found but no patient
	// name could be extracted. Patient name is the one mandatory field.
	ErrNoPatientName = errors.New("could not extract patient name")
)

// IntakePayload is a raw inbound referral: an email body, a network API
// message or a webhook event rendered to text.
type IntakePayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Source  string `json:"source"`
}

// Documented defaults for fields that cannot be extracted.
const (
	DefaultDiagnosis       = "Not specified"
	DefaultInsurance       = "Unknown"
	DefaultAddress         = "Not provided"
	DefaultZipCode         = "00000"
	DefaultServiceCategory = "skilled_nursing"
	DefaultEpisodeDays     = 60
)

// referralKeywords gate normalization: at least one must appear in
// subject+body for the input to be treated as a referral.
var referralKeywords = []string{
	"patient", "referral", "admission", "discharge", "home health",
	"skilled nursing", "therapy", "medical", "healthcare", "treatment",
}

// statKeywords and urgentKeywords classify urgency. The stat check takes
// precedence over the urgent check.
var (
	statKeywords   = []string{"stat", "immediate", "emergency"}
	urgentKeywords = []string{"urgent", "asap", "expedite", "priority"}
)

// serviceKeywords maps text fragments to service categories.
var serviceKeywords = []struct {
	keyword  string
	category string
}{
	{"behavioral", "behavioral"},
	{"detox", "detox"},
	{"mental health", "mental_health"},
	{"psychiatric", "mental_health"},
	{"home health", "skilled_nursing"},
	{"skilled nursing", "skilled_nursing"},
	{"physical therapy", "therapy"},
	{"occupational therapy", "therapy"},
	{"speech therapy", "therapy"},
	{"therapy", "therapy"},
	{"hospice", "hospice"},
	{"palliative", "hospice"},
	{"wound care", "skilled_nursing"},
}

// namePatterns extract the patient name. The name itself must look like
// capitalized words so trailing prose ("Jane Doe referral for ...") is not
// swallowed.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:(?i)patient(?:\s+name)?\s*[:\-]\s*)([A-Z][a-z'.-]+(?:[ \t]+[A-Z][a-z'.-]+){1,2})`),
	regexp.MustCompile(`(?:(?i)(?:referral|admission|orders?)\s+for\s+)([A-Z][a-z'.-]+(?:[ \t]+[A-Z][a-z'.-]+){1,2})`),
	regexp.MustCompile(`(?:(?i)\bre:\s*)([A-Z][a-z'.-]+[ \t]+[A-Z][a-z'.-]+)`),
}

var (
	diagnosisPattern     = regexp.MustCompile(`(?i)(?:diagnosis|dx)\s*[:\-]\s*([^\n.;,]+)`)
	diagnosisCodePattern = regexp.MustCompile(`(?i)(?:icd|icd-10|code)\s*[:\-]?\s*([A-Z]\d{2}(?:\.\d{1,2})?)`)
	insurancePattern     = regexp.MustCompile(`(?i)(?:insurance|payer|coverage)(?:\s+provider)?\s*[:\-]\s*([^\n.;,]+)`)
	insuranceIDPattern   = regexp.MustCompile(`(?i)(?:member|policy|insurance)\s*(?:id|#|number)\s*[:\-]?\s*([A-Za-z0-9-]+)`)
	addressPattern       = regexp.MustCompile(`(?i)address\s*[:\-]\s*([^\n]+)`)
	zipPattern           = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)
	episodePattern       = regexp.MustCompile(`(?i)(\d{1,3})\s*[- ]?day`)
)

// knownPayers are recognized without an "insurance:" label.
var knownPayers = []string{
	"medicare", "medicaid", "aetna", "cigna", "humana",
	"united healthcare", "unitedhealthcare", "blue cross", "bcbs", "tricare",
}

// Normalizer converts heterogeneous inbound referral payloads into canonical
// Referral records.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize parses a raw payload into a Referral. It returns ErrNotReferral
// when no referral keyword is present, and ErrNoPatientName when keywords
// were found but no patient name could be extracted. All other fields
// degrade gracefully to documented defaults.
func (n *Normalizer) Normalize(raw IntakePayload) (*Referral, error) {
	text := raw.Subject + "\n" + raw.Body
	lower := strings.ToLower(text)

	if !containsAny(lower, referralKeywords) {
		return nil, ErrNotReferral
	}

	name := extractName(text)
	if name == "" {
		return nil, ErrNoPatientName
	}

	r := &Referral{
		PatientName:       name,
		Diagnosis:         DefaultDiagnosis,
		InsuranceProvider: DefaultInsurance,
		Address:           DefaultAddress,
		ZipCode:           DefaultZipCode,
		Urgency:           classifyUrgency(lower),
		Source:            raw.Source,
		Services:          detectServices(lower),
		PhysicianOrders:   strings.Contains(lower, "order"),
		EpisodeDays:       DefaultEpisodeDays,
		Status:            StatusNew,
	}

	if m := diagnosisPattern.FindStringSubmatch(text); m != nil {
		r.Diagnosis = strings.TrimSpace(m[1])
	}
	if m := diagnosisCodePattern.FindStringSubmatch(text); m != nil {
		r.DiagnosisCode = m[1]
	}
	if m := insurancePattern.FindStringSubmatch(text); m != nil {
		r.InsuranceProvider = strings.TrimSpace(m[1])
	} else if payer := detectPayer(lower, text); payer != "" {
		r.InsuranceProvider = payer
	}
	if m := insuranceIDPattern.FindStringSubmatch(text); m != nil {
		r.InsuranceID = m[1]
	}
	if m := addressPattern.FindStringSubmatch(text); m != nil {
		r.Address = strings.TrimSpace(m[1])
	}
	if m := zipPattern.FindStringSubmatch(text); m != nil {
		r.ZipCode = m[1]
	}
	if m := episodePattern.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil && days > 0 {
			r.EpisodeDays = days
		}
	}

	return r, nil
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func extractName(text string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// classifyUrgency applies the stat > urgent > routine precedence.
func classifyUrgency(lower string) Urgency {
	if containsAny(lower, statKeywords) {
		return UrgencyStat
	}
	if containsAny(lower, urgentKeywords) {
		return UrgencyUrgent
	}
	return UrgencyRoutine
}

// detectServices returns the matched service categories, falling back to the
// default category so the services list is never empty.
func detectServices(lower string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sk := range serviceKeywords {
		if strings.Contains(lower, sk.keyword) && !seen[sk.category] {
			seen[sk.category] = true
			out = append(out, sk.category)
		}
	}
	if len(out) == 0 {
		out = []string{DefaultServiceCategory}
	}
	return out
}

// detectPayer scans for a known payer name and returns the matching fragment
// of the original text so casing is preserved.
func detectPayer(lower, text string) string {
	for _, payer := range knownPayers {
		if idx := strings.Index(lower, payer); idx >= 0 {
			return text[idx : idx+len(payer)]
		}
	}
	return ""
}
