package record

import (
	"regexp"
	"strings"
)

var (
	contactNamePattern = regexp.MustCompile(LabelContactName + `: (.*)`)
	phonePattern       = regexp.MustCompile(LabelPhone + `: (.*)`)
	emailPattern       = regexp.MustCompile(LabelEmail + `: (.*)`)
)

// Decode recovers description, contact details and vulnerability flags from a
// record blob. It never fails: anything it cannot find keeps its default.
//
// Service Type, Urgency and Consent Given are written by Encode but are not
// read back here. Use ParseEnvelope when those fields are needed.
func Decode(text string) Decoded {
	d := Defaults()

	before, details, found := strings.Cut(text, Marker)
	d.Description = strings.TrimSpace(before)
	if !found || details == "" {
		return d
	}

	if v, ok := firstMatch(contactNamePattern, details); ok {
		d.ContactName = v
	}
	if v, ok := firstMatch(phonePattern, details); ok {
		d.Phone = v
	}
	if v, ok := firstMatch(emailPattern, details); ok {
		d.Email = v
	}

	d.Vulnerability.SeniorCitizen = strings.Contains(details, LabelSeniorCitizen+": "+yes)
	d.Vulnerability.LowIncome = strings.Contains(details, LabelLowIncome+": "+yes)
	d.Vulnerability.Disability = strings.Contains(details, LabelDisability+": "+yes)

	return d
}

// firstMatch returns the trimmed capture of the first line matching re
func firstMatch(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
