package record

import "civisense/internal/model"

// Literal text of the record blob. Field order and label spelling are part of
// the wire contract with the classification service.
const (
	Marker = "--- Additional Details ---"

	LabelServiceType   = "Service Type"
	LabelUrgency       = "Urgency"
	LabelContactName   = "Contact Name"
	LabelPhone         = "Phone"
	LabelEmail         = "Email"
	LabelVulnerability = "Vulnerability"
	LabelSeniorCitizen = "Senior Citizen"
	LabelLowIncome     = "Low Income"
	LabelDisability    = "Disability"
	LabelConsent       = "Consent Given"

	yes = "Yes"
	no  = "No"
)

// Fallback values used when a fetched record lacks a field
const (
	AnonymousName   = "Anonymous"
	NotProvided     = "Not provided"
	DefaultCategory = "Uncategorized"
	DefaultScheme   = "Pending"
	DefaultArea     = "Unknown"
)

// Decoded is the partial structure the legacy decoder recovers from a blob
type Decoded struct {
	Description   string              `json:"description"`
	ContactName   string              `json:"contactName"`
	Phone         string              `json:"phone"`
	Email         string              `json:"email"`
	Vulnerability model.Vulnerability `json:"vulnerability"`
}

var defaultDecoded = Decoded{
	ContactName: AnonymousName,
}

// Defaults returns the record every decode starts from
func Defaults() Decoded {
	return defaultDecoded
}

func yesNo(b bool) string {
	if b {
		return yes
	}
	return no
}
