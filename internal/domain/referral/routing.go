package referral

import "strings"

// Destination identifiers and their display names.
const (
	DestinationSerenity = "serenity"
	DestinationCHHS     = "chhs"
	DestinationGeneral  = "general"

	OrgSerenity = "Serenity"
	OrgCHHS     = "CHHS"
	OrgGeneral  = "M.A.S.E. Pro"
)

// routingTable maps canonical service categories to destinations. Categories
// are canonicalized to hyphenated form before lookup.
var routingTable = map[string]string{
	"behavioral":      DestinationSerenity,
	"detox":           DestinationSerenity,
	"mental-health":   DestinationSerenity,
	"home-health":     DestinationCHHS,
	"skilled-nursing": DestinationCHHS,
	"therapy":         DestinationCHHS,
	"hospice":         DestinationCHHS,
}

// destinationOrgs maps destination identifiers to organization display names.
var destinationOrgs = map[string]string{
	DestinationSerenity: OrgSerenity,
	DestinationCHHS:     OrgCHHS,
	DestinationGeneral:  OrgGeneral,
}

// Resolve returns the destination and organization name for a service
// category. Unknown categories route to the general destination.
func Resolve(serviceCategory string) (destination, organization string) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(serviceCategory)), "_", "-")
	dest, ok := routingTable[key]
	if !ok {
		dest = DestinationGeneral
	}
	return dest, destinationOrgs[dest]
}

// Route resolves the destination for a referral using its first detected
// service category and stamps the result onto the record.
func Route(r *Referral) {
	category := DefaultServiceCategory
	if len(r.Services) > 0 {
		category = r.Services[0]
	}
	r.Destination, r.OrganizationName = Resolve(category)
}
