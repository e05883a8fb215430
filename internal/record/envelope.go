package record

import (
	"errors"
	"fmt"
	"strings"

	"civisense/internal/model"
)

// Mode selects how ParseEnvelope treats malformed input
type Mode int

const (
	// Lenient never returns an error; anything missing stays nil
	Lenient Mode = iota
	// Strict rejects blobs that are missing the marker or any labeled line
	Strict
)

var (
	ErrNoMarker       = errors.New("record: section marker not found")
	ErrMissingField   = errors.New("record: labeled field missing")
	ErrDuplicateField = errors.New("record: labeled field repeated")
	ErrInvalidFlag    = errors.New("record: flag is neither Yes nor No")
	ErrUnknownLabel   = errors.New("record: unknown label")
)

// Envelope is the tagged form of a record blob. Every field the encoder
// writes has a named slot; nil means the blob did not carry it.
type Envelope struct {
	Description   string  `json:"description"`
	ServiceType   *string `json:"serviceType,omitempty"`
	Urgency       *string `json:"urgency,omitempty"`
	ContactName   *string `json:"contactName,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	SeniorCitizen *bool   `json:"seniorCitizen,omitempty"`
	LowIncome     *bool   `json:"lowIncome,omitempty"`
	Disability    *bool   `json:"disability,omitempty"`
	ConsentGiven  *bool   `json:"consentGiven,omitempty"`
}

// NewEnvelope captures every field of a form
func NewEnvelope(form model.ComplaintFormData) Envelope {
	return Envelope{
		Description:   form.Description,
		ServiceType:   ptr(string(form.ServiceType)),
		Urgency:       ptr(string(form.Urgency)),
		ContactName:   ptr(form.Name),
		Phone:         ptr(form.Phone),
		Email:         ptr(form.Email),
		SeniorCitizen: ptr(form.Vulnerability.SeniorCitizen),
		LowIncome:     ptr(form.Vulnerability.LowIncome),
		Disability:    ptr(form.Vulnerability.Disability),
		ConsentGiven:  ptr(form.Consent),
	}
}

// Text renders the envelope in the legacy blob layout
func (e Envelope) Text() string {
	var b strings.Builder
	b.WriteString(e.Description)
	b.WriteString("\n\n")
	b.WriteString(Marker)
	b.WriteString("\n")
	writeLine(&b, "", LabelServiceType, str(e.ServiceType))
	writeLine(&b, "", LabelUrgency, str(e.Urgency))
	writeLine(&b, "", LabelContactName, str(e.ContactName))
	writeLine(&b, "", LabelPhone, str(e.Phone))
	writeLine(&b, "", LabelEmail, str(e.Email))
	writeLine(&b, "", LabelVulnerability, "")
	writeLine(&b, "  - ", LabelSeniorCitizen, yesNo(flag(e.SeniorCitizen)))
	writeLine(&b, "  - ", LabelLowIncome, yesNo(flag(e.LowIncome)))
	writeLine(&b, "  - ", LabelDisability, yesNo(flag(e.Disability)))
	b.WriteString(LabelConsent + ": " + yesNo(flag(e.ConsentGiven)))
	return strings.TrimSpace(b.String())
}

// Form rebuilds the complaint form. Absent fields take their zero value;
// area is not part of the blob and is left empty.
func (e Envelope) Form() model.ComplaintFormData {
	return model.ComplaintFormData{
		Description: e.Description,
		ServiceType: model.ServiceType(str(e.ServiceType)),
		Urgency:     model.Urgency(str(e.Urgency)),
		Vulnerability: model.Vulnerability{
			SeniorCitizen: flag(e.SeniorCitizen),
			LowIncome:     flag(e.LowIncome),
			Disability:    flag(e.Disability),
		},
		Name:    str(e.ContactName),
		Phone:   str(e.Phone),
		Email:   str(e.Email),
		Consent: flag(e.ConsentGiven),
	}
}

// ParseEnvelope reads a record blob into an Envelope. The first occurrence of
// a labeled line wins. In Lenient mode the error is always nil.
func ParseEnvelope(text string, mode Mode) (Envelope, error) {
	var env Envelope

	before, details, found := strings.Cut(text, Marker)
	env.Description = strings.TrimSpace(before)
	if !found {
		if mode == Strict {
			return env, ErrNoMarker
		}
		return env, nil
	}

	for _, line := range strings.Split(details, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)

		var err error
		switch label {
		case LabelServiceType:
			err = setString(&env.ServiceType, label, value)
		case LabelUrgency:
			err = setString(&env.Urgency, label, value)
		case LabelContactName:
			err = setString(&env.ContactName, label, value)
		case LabelPhone:
			err = setString(&env.Phone, label, value)
		case LabelEmail:
			err = setString(&env.Email, label, value)
		case LabelSeniorCitizen:
			err = setFlag(&env.SeniorCitizen, label, value, mode)
		case LabelLowIncome:
			err = setFlag(&env.LowIncome, label, value, mode)
		case LabelDisability:
			err = setFlag(&env.Disability, label, value, mode)
		case LabelConsent:
			err = setFlag(&env.ConsentGiven, label, value, mode)
		case LabelVulnerability:
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownLabel, label)
		}
		if err != nil && mode == Strict {
			return env, err
		}
	}

	if mode == Strict {
		if missing := env.missing(); len(missing) > 0 {
			return env, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
		}
	}
	return env, nil
}

func (e Envelope) missing() []string {
	var out []string
	check := func(set bool, label string) {
		if !set {
			out = append(out, label)
		}
	}
	check(e.ServiceType != nil, LabelServiceType)
	check(e.Urgency != nil, LabelUrgency)
	check(e.ContactName != nil, LabelContactName)
	check(e.Phone != nil, LabelPhone)
	check(e.Email != nil, LabelEmail)
	check(e.SeniorCitizen != nil, LabelSeniorCitizen)
	check(e.LowIncome != nil, LabelLowIncome)
	check(e.Disability != nil, LabelDisability)
	check(e.ConsentGiven != nil, LabelConsent)
	return out
}

func setString(dst **string, label, value string) error {
	if *dst != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateField, label)
	}
	*dst = &value
	return nil
}

func setFlag(dst **bool, label, value string, mode Mode) error {
	if *dst != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateField, label)
	}
	if mode == Strict && value != yes && value != no {
		return fmt.Errorf("%w: %s=%q", ErrInvalidFlag, label, value)
	}
	v := value == yes
	*dst = &v
	return nil
}

func writeLine(b *strings.Builder, prefix, label, value string) {
	b.WriteString(prefix)
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func ptr[T any](v T) *T {
	return &v
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func flag(p *bool) bool {
	return p != nil && *p
}
