package service

import (
	"strings"
	"unicode"

	"civisense/internal/model"
)

const phoneDigits = 10

// NewForm returns an empty complaint form with the default selections
func NewForm() model.ComplaintFormData {
	return model.ComplaintFormData{
		ServiceType: model.ServiceOther,
		Urgency:     model.UrgencyMedium,
	}
}

// FormPatch is a partial update to a form; nil fields are left unchanged
type FormPatch struct {
	Description   *string              `json:"description,omitempty"`
	Area          *string              `json:"area,omitempty"`
	ServiceType   *model.ServiceType   `json:"serviceType,omitempty"`
	Urgency       *model.Urgency       `json:"urgency,omitempty"`
	Vulnerability *model.Vulnerability `json:"vulnerability,omitempty"`
	Name          *string              `json:"name,omitempty"`
	Phone         *string              `json:"phone,omitempty"`
	Email         *string              `json:"email,omitempty"`
	Consent       *bool                `json:"consent,omitempty"`
}

// ApplyPatch merges a patch into a form. Phone input keeps digits only and
// is cut to ten of them.
func ApplyPatch(form model.ComplaintFormData, patch FormPatch) model.ComplaintFormData {
	if patch.Description != nil {
		form.Description = *patch.Description
	}
	if patch.Area != nil {
		form.Area = *patch.Area
	}
	if patch.ServiceType != nil {
		form.ServiceType = *patch.ServiceType
	}
	if patch.Urgency != nil {
		form.Urgency = *patch.Urgency
	}
	if patch.Vulnerability != nil {
		form.Vulnerability = *patch.Vulnerability
	}
	if patch.Name != nil {
		form.Name = *patch.Name
	}
	if patch.Phone != nil {
		form.Phone = NormalizePhone(*patch.Phone)
	}
	if patch.Email != nil {
		form.Email = *patch.Email
	}
	if patch.Consent != nil {
		form.Consent = *patch.Consent
	}
	return form
}

// NormalizePhone strips everything but ASCII digits and keeps the first ten
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			continue
		}
		if b.Len() == phoneDigits {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
