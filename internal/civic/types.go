package civic

import "encoding/json"

// Notes is a free-text explanation fragment returned by the service
type Notes struct {
	Notes string `json:"notes"`
}

// SubmitResponse is the body of a successful POST /complaint
type SubmitResponse struct {
	ID            json.Number `json:"id"`
	Category      string      `json:"category"`
	Confidence    float64     `json:"confidence"`
	PriorityScore float64     `json:"priority_score"`
	Scheme        string      `json:"scheme"`
	Explanation   struct {
		Scheme  Notes `json:"scheme"`
		Urgency Notes `json:"urgency"`
	} `json:"explanation"`
}

// RawComplaint is one record of the dashboard feed. Text is the record blob.
type RawComplaint struct {
	ID               json.Number `json:"id"`
	Text             string      `json:"text"`
	Category         *string     `json:"category"`
	PriorityScore    float64     `json:"priority_score"`
	Urgency          *float64    `json:"urgency"`
	PopulationImpact *float64    `json:"population_impact"`
	Vulnerability    *float64    `json:"vulnerability"`
	Confidence       *float64    `json:"confidence"`
	Scheme           *string     `json:"scheme"`
	Area             *string     `json:"area"`
	Status           string      `json:"status"`
	Timestamp        string      `json:"timestamp"`
}

// AreaCount is one entry of top_areas
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// DashboardResponse is the body of GET /dashboard
type DashboardResponse struct {
	RecentHighPriority []RawComplaint `json:"recent_high_priority"`
	TotalComplaints    int            `json:"total_complaints"`
	ByCategory         map[string]int `json:"by_category"`
	ByStatus           map[string]int `json:"by_status"`
	TopAreas           []AreaCount    `json:"top_areas"`
}

// Feedback corrects the classification of a complaint
type Feedback struct {
	ComplaintID     string
	CorrectCategory string
	CorrectScheme   string
}

type statusRequest struct {
	Status string `json:"status"`
}

type feedbackRequest struct {
	ComplaintID     interface{} `json:"complaint_id"`
	CorrectCategory string      `json:"correct_category,omitempty"`
	CorrectScheme   string      `json:"correct_scheme,omitempty"`
}
