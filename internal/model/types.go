package model

import (
	"strings"
	"time"
)

// ServiceType represents the service a complaint is about
type ServiceType string

const (
	ServiceWater       ServiceType = "water"
	ServiceRoad        ServiceType = "road"
	ServiceHealth      ServiceType = "health"
	ServiceHousing     ServiceType = "housing"
	ServiceWelfare     ServiceType = "welfare"
	ServiceElectricity ServiceType = "electricity"
	ServiceSanitation  ServiceType = "sanitation"
	ServiceOther       ServiceType = "other"
)

// ServiceTypes lists every accepted service type tag
var ServiceTypes = []ServiceType{
	ServiceWater, ServiceRoad, ServiceHealth, ServiceHousing,
	ServiceWelfare, ServiceElectricity, ServiceSanitation, ServiceOther,
}

// Urgency represents how urgent the citizen considers the issue
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Urgencies lists every accepted urgency tag
var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh}

// Status represents complaint status in display form
type Status string

const (
	StatusNew          Status = "New"
	StatusVerified     Status = "Verified"
	StatusSchemeLinked Status = "Scheme Linked"
	StatusAssigned     Status = "Assigned"
	StatusResolved     Status = "Resolved"
	StatusClosed       Status = "Closed"
)

// Statuses lists the six statuses in workflow order
var Statuses = []Status{
	StatusNew, StatusVerified, StatusSchemeLinked,
	StatusAssigned, StatusResolved, StatusClosed,
}

// Wire returns the lowercase, underscored tag the classification service uses
func (s Status) Wire() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "_")
}

// ParseStatus maps a wire tag or a display name to a Status.
// Unknown tags map to StatusNew with ok=false.
func ParseStatus(raw string) (Status, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	for _, s := range Statuses {
		if s.Wire() == key {
			return s, true
		}
	}
	return StatusNew, false
}

// Priority is the derived three-level priority label
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: low=1, medium=2, high=3
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Vulnerability flags reported by the citizen
type Vulnerability struct {
	SeniorCitizen bool `json:"seniorCitizen"`
	LowIncome     bool `json:"lowIncome"`
	Disability    bool `json:"disability"`
}

// ComplaintFormData is the citizen-facing complaint form
type ComplaintFormData struct {
	Description   string        `json:"description"`
	Area          string        `json:"area"`
	ServiceType   ServiceType   `json:"serviceType"`
	Urgency       Urgency       `json:"urgency"`
	Vulnerability Vulnerability `json:"vulnerability"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	Consent       bool          `json:"consent"`
}

// Contact holds the complainant contact details reconstructed from a record
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Complaint is a decoded dashboard record
type Complaint struct {
	ID                 string        `json:"id"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	Priority           Priority      `json:"priority"`
	PriorityScore      float64       `json:"priorityScore"`
	Scheme             string        `json:"scheme"`
	Area               string        `json:"area"`
	Status             Status        `json:"status"`
	Timestamp          string        `json:"timestamp"`
	Contact            Contact       `json:"contact"`
	Vulnerability      Vulnerability `json:"vulnerability"`
	Confidence         *float64      `json:"confidence,omitempty"`
	UrgencyScore       *float64      `json:"urgencyScore,omitempty"`
	ImpactScore        *float64      `json:"impactScore,omitempty"`
	VulnerabilityScore *float64      `json:"vulnerabilityScore,omitempty"`
	Explanation        string        `json:"explanation"`
}

// DashboardStats are the summary counters shown on the dashboard
type DashboardStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Resolved     int `json:"resolved"`
	HighPriority int `json:"highPriority"`
}

// AreaCount is one entry of the top areas list
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// Snapshot is one accepted dashboard refresh
type Snapshot struct {
	ID         string         `json:"id"`
	Seq        int64          `json:"seq"`
	FetchedAt  time.Time      `json:"fetchedAt"`
	Complaints []Complaint    `json:"complaints"`
	Stats      DashboardStats `json:"stats"`
	ByCategory map[string]int `json:"byCategory"`
	ByStatus   map[string]int `json:"byStatus"`
	TopAreas   []AreaCount    `json:"topAreas"`
}

// Find returns the complaint with the given id
func (s *Snapshot) Find(id string) (Complaint, bool) {
	for _, c := range s.Complaints {
		if c.ID == id {
			return c, true
		}
	}
	return Complaint{}, false
}

// SubmissionResult is what the citizen sees after a successful submission
type SubmissionResult struct {
	ReferenceID        string   `json:"referenceId"`
	Category           string   `json:"category"`
	Confidence         int      `json:"confidence"`
	PriorityScore      int      `json:"priorityScore"`
	SuggestedScheme    string   `json:"suggestedScheme"`
	SchemeExplanation  string   `json:"schemeExplanation"`
	UrgencyExplanation string   `json:"urgencyExplanation"`
	NextSteps          []string `json:"nextSteps"`
}

// Filter sentinels disable their predicate
const (
	AllCategories = "All Categories"
	AllAreas      = "All Areas"
	AllStatuses   = "All Statuses"
)

// Categories offered by the dashboard category filter
var Categories = []string{
	"Water Supply", "Road Maintenance", "Healthcare", "Housing",
	"Social Welfare", "Electricity", "Sanitation", "General",
}

// Areas offered by the dashboard area filter
var Areas = []string{
	"Anna Nagar", "T. Nagar", "Mylapore", "Adyar",
	"Velachery", "Chromepet", "Tambaram", "Guindy", "Other",
}
