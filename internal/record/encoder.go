package record

import (
	"civisense/internal/model"
)

// InitialStatus is the status tag sent with every new complaint
const InitialStatus = "new"

// Request is the body of POST /complaint on the classification service.
// Vulnerability repeats the flags already present in Text.
type Request struct {
	Text          string              `json:"text"`
	Area          string              `json:"area"`
	Status        string              `json:"status"`
	Vulnerability model.Vulnerability `json:"vulnerability"`
}

// Encode packs a validated form into the submission payload.
// It does not validate; callers are expected to have done so.
func Encode(form model.ComplaintFormData) Request {
	return Request{
		Text:          NewEnvelope(form).Text(),
		Area:          form.Area,
		Status:        InitialStatus,
		Vulnerability: form.Vulnerability,
	}
}
