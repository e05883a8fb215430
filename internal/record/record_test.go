package record

import (
	"strings"
	"testing"

	"civisense/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForm() model.ComplaintFormData {
	return model.ComplaintFormData{
		Description: "No water supply in our street for three days",
		Area:        "Adyar",
		ServiceType: model.ServiceWater,
		Urgency:     model.UrgencyHigh,
		Vulnerability: model.Vulnerability{
			SeniorCitizen: true,
			LowIncome:     false,
			Disability:    true,
		},
		Name:    "Priya",
		Phone:   "9876543210",
		Email:   "priya@example.com",
		Consent: true,
	}
}

func TestEncode_BlobLayout(t *testing.T) {
	req := Encode(sampleForm())

	expected := strings.Join([]string{
		"No water supply in our street for three days",
		"",
		"--- Additional Details ---",
		"Service Type: water",
		"Urgency: high",
		"Contact Name: Priya",
		"Phone: 9876543210",
		"Email: priya@example.com",
		"Vulnerability: ",
		"  - Senior Citizen: Yes",
		"  - Low Income: No",
		"  - Disability: Yes",
		"Consent Given: Yes",
	}, "\n")

	assert.Equal(t, expected, req.Text)
	assert.Equal(t, "Adyar", req.Area)
	assert.Equal(t, "new", req.Status)
	assert.Equal(t, sampleForm().Vulnerability, req.Vulnerability)
}

func TestDecode_RecoversContactAndFlags(t *testing.T) {
	d := Decode(Encode(sampleForm()).Text)

	assert.Equal(t, "No water supply in our street for three days", d.Description)
	assert.Equal(t, "Priya", d.ContactName)
	assert.Equal(t, "9876543210", d.Phone)
	assert.Equal(t, "priya@example.com", d.Email)
	assert.Equal(t, model.Vulnerability{SeniorCitizen: true, Disability: true}, d.Vulnerability)
}

func TestDecode_NoMarkerUsesDefaults(t *testing.T) {
	d := Decode("  Streetlight broken near the bus stop  ")

	assert.Equal(t, "Streetlight broken near the bus stop", d.Description)
	assert.Equal(t, "Anonymous", d.ContactName)
	assert.Empty(t, d.Phone)
	assert.Empty(t, d.Email)
	assert.Equal(t, model.Vulnerability{}, d.Vulnerability)
}

func TestDecode_FirstOccurrenceWins(t *testing.T) {
	text := "Garbage not collected\n\n--- Additional Details ---\n" +
		"Contact Name: First\nContact Name: Second\nPhone: 1111111111\nPhone: 2222222222\n"

	d := Decode(text)
	assert.Equal(t, "First", d.ContactName)
	assert.Equal(t, "1111111111", d.Phone)
}

func TestDecode_MissingFieldsKeepDefaults(t *testing.T) {
	d := Decode("Pothole\n--- Additional Details ---\nEmail: a@b.co")

	assert.Equal(t, "Pothole", d.Description)
	assert.Equal(t, "Anonymous", d.ContactName)
	assert.Empty(t, d.Phone)
	assert.Equal(t, "a@b.co", d.Email)
}

func TestDecode_ArbitraryInputNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		Marker,
		Marker + Marker,
		"\x00\xff" + Marker + "Phone:",
		strings.Repeat("Contact Name: ", 50),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Decode(in) })
	}
}

// The legacy decoder is not the inverse of the encoder: these three fields are dropped.
func TestDecode_RoundTripDropsServiceTypeUrgencyConsent(t *testing.T) {
	form := sampleForm()
	d := Decode(Encode(form).Text)

	rebuilt := model.ComplaintFormData{
		Description:   d.Description,
		Name:          d.ContactName,
		Phone:         d.Phone,
		Email:         d.Email,
		Vulnerability: d.Vulnerability,
	}
	assert.Empty(t, rebuilt.ServiceType)
	assert.Empty(t, rebuilt.Urgency)
	assert.False(t, rebuilt.Consent)
	assert.NotEqual(t, form, rebuilt)
}

func TestDefaults_ReturnsFreshCopy(t *testing.T) {
	d := Defaults()
	d.ContactName = "changed"
	assert.Equal(t, "Anonymous", Defaults().ContactName)
}

func TestParseEnvelope_LenientRoundTrip(t *testing.T) {
	form := sampleForm()
	env, err := ParseEnvelope(Encode(form).Text, Lenient)
	require.NoError(t, err)

	rebuilt := env.Form()
	form.Area = ""
	assert.Equal(t, form, rebuilt)
}

func TestParseEnvelope_LenientNeverErrors(t *testing.T) {
	for _, in := range []string{"", "free text only", Marker + "\nbogus: line\nSenior Citizen: maybe"} {
		_, err := ParseEnvelope(in, Lenient)
		assert.NoError(t, err)
	}
}

func TestParseEnvelope_LenientAbsentFieldsStayNil(t *testing.T) {
	env, err := ParseEnvelope("Broken pipe\n--- Additional Details ---\nUrgency: low", Lenient)
	require.NoError(t, err)

	require.NotNil(t, env.Urgency)
	assert.Equal(t, "low", *env.Urgency)
	assert.Nil(t, env.ServiceType)
	assert.Nil(t, env.ConsentGiven)
	assert.False(t, env.Form().Consent)
}

func TestParseEnvelope_Strict(t *testing.T) {
	valid := Encode(sampleForm()).Text

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"valid", valid, nil},
		{"no marker", "just a description", ErrNoMarker},
		{"missing field", strings.Replace(valid, "Urgency: high\n", "", 1), ErrMissingField},
		{"duplicate field", strings.Replace(valid, "Phone: 9876543210", "Phone: 9876543210\nPhone: 1", 1), ErrDuplicateField},
		{"invalid flag", strings.Replace(valid, "Low Income: No", "Low Income: Maybe", 1), ErrInvalidFlag},
		{"unknown label", valid + "\nFavourite Colour: blue", ErrUnknownLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvelope(tt.text, Strict)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEnvelope_TextMatchesEncoder(t *testing.T) {
	form := sampleForm()
	assert.Equal(t, Encode(form).Text, NewEnvelope(form).Text())
}
