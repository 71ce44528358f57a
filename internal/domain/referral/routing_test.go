package referral

import "testing"

func TestResolve_Table(t *testing.T) {
	tests := []struct {
		category string
		wantDest string
		wantOrg  string
	}{
		{"behavioral", DestinationSerenity, OrgSerenity},
		{"detox", DestinationSerenity, OrgSerenity},
		{"mental-health", DestinationSerenity, OrgSerenity},
		{"home-health", DestinationCHHS, OrgCHHS},
		{"skilled-nursing", DestinationCHHS, OrgCHHS},
		{"therapy", DestinationCHHS, OrgCHHS},
		{"hospice", DestinationCHHS, OrgCHHS},
		{"unknown-category", DestinationGeneral, OrgGeneral},
		{"", DestinationGeneral, OrgGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			dest, org := Resolve(tt.category)
			if dest != tt.wantDest {
				t.Errorf("Resolve(%q) destination = %q, want %q", tt.category, dest, tt.wantDest)
			}
			if org != tt.wantOrg {
				t.Errorf("Resolve(%q) organization = %q, want %q", tt.category, org, tt.wantOrg)
			}
		})
	}
}

// Resolve accepts both hyphenated and underscore category spellings: the
// normalizer emits underscore categories while API callers may pass
// hyphenated ones.
func TestResolve_CanonicalizesUnderscores(t *testing.T) {
	dest, _ := Resolve("skilled_nursing")
	if dest != DestinationCHHS {
		t.Errorf("Resolve(skilled_nursing) = %q, want %q", dest, DestinationCHHS)
	}
	dest, _ = Resolve("mental_health")
	if dest != DestinationSerenity {
		t.Errorf("Resolve(mental_health) = %q, want %q", dest, DestinationSerenity)
	}
	dest, _ = Resolve("Home-Health")
	if dest != DestinationCHHS {
		t.Errorf("Resolve(Home-Health) = %q, want %q", dest, DestinationCHHS)
	}
}

func TestRoute_UsesFirstService(t *testing.T) {
	r := &Referral{Services: []string{"behavioral", "therapy"}}
	Route(r)
	if r.Destination != DestinationSerenity {
		t.Errorf("expected destination %q, got %q", DestinationSerenity, r.Destination)
	}
	if r.OrganizationName != OrgSerenity {
		t.Errorf("expected organization %q, got %q", OrgSerenity, r.OrganizationName)
	}
}

func TestRoute_EmptyServicesFallsBackToDefault(t *testing.T) {
	r := &Referral{}
	Route(r)
	if r.Destination != DestinationCHHS {
		t.Errorf("expected destination %q, got %q", DestinationCHHS, r.Destination)
	}
}
