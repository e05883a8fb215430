package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"civisense/internal/civic"
	"civisense/internal/model"
	"civisense/internal/record"
	"civisense/internal/schema"
)

//go:embed form_schema.json
var formSchema []byte

const formSchemaName = "complaint-form"

// ErrSubmissionFailed is the only error a citizen sees when the
// classification service cannot take a complaint
var ErrSubmissionFailed = errors.New("Failed to submit complaint")

// ErrUnknownStatus is returned for a status outside the six known ones
var ErrUnknownStatus = errors.New("unknown status")

// NextSteps are shown after every successful submission
var NextSteps = []string{
	"Your complaint has been logged in the system.",
	"It will be reviewed by a municipal officer within 24 hours.",
	"You can track the status using your reference ID.",
}

// ValidationError lists why a form was rejected
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid complaint: " + strings.Join(e.Violations, "; ")
}

// Classifier is the classification service
type Classifier interface {
	SubmitComplaint(ctx context.Context, req record.Request) (*civic.SubmitResponse, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SendFeedback(ctx context.Context, fb civic.Feedback) error
}

// Refresher reloads the dashboard snapshot
type Refresher interface {
	Trigger()
}

// EventBus receives complaint lifecycle events
type EventBus interface {
	PublishComplaint(complaintID string, event map[string]interface{}) error
}

type ComplaintService struct {
	classifier Classifier
	schemaComp *schema.Compiler
	refresher  Refresher
	bus        EventBus
	logger     *zap.Logger
}

func NewComplaintService(ctx context.Context, classifier Classifier, schemaComp *schema.Compiler, refresher Refresher, bus EventBus, logger *zap.Logger) (*ComplaintService, error) {
	if err := schemaComp.Prepare(ctx, formSchemaName, formSchema); err != nil {
		return nil, fmt.Errorf("failed to prepare form schema: %w", err)
	}
	return &ComplaintService{
		classifier: classifier,
		schemaComp: schemaComp,
		refresher:  refresher,
		bus:        bus,
		logger:     logger,
	}, nil
}

// Validate checks a form against the complaint form schema
func (s *ComplaintService) Validate(ctx context.Context, form model.ComplaintFormData) error {
	err := s.schemaComp.Validate(ctx, formSchemaName, form)
	if err == nil {
		return nil
	}
	if errors.Is(err, schema.ErrNotPrepared) {
		return err
	}
	return &ValidationError{Violations: schema.Violations(err)}
}

// Submit validates, encodes and sends a complaint. Any failure to reach the
// service collapses into ErrSubmissionFailed.
func (s *ComplaintService) Submit(ctx context.Context, form model.ComplaintFormData) (*model.SubmissionResult, error) {
	if err := s.Validate(ctx, form); err != nil {
		return nil, err
	}

	resp, err := s.classifier.SubmitComplaint(ctx, record.Encode(form))
	if err != nil {
		s.logger.Warn("complaint submission failed", zap.Error(err))
		return nil, ErrSubmissionFailed
	}

	result := &model.SubmissionResult{
		ReferenceID:        resp.ID.String(),
		Category:           resp.Category,
		Confidence:         int(math.Round(resp.Confidence * 100)),
		PriorityScore:      int(math.Round(resp.PriorityScore * 100)),
		SuggestedScheme:    resp.Scheme,
		SchemeExplanation:  resp.Explanation.Scheme.Notes,
		UrgencyExplanation: resp.Explanation.Urgency.Notes,
		NextSteps:          append([]string(nil), NextSteps...),
	}

	s.logger.Info("complaint submitted",
		zap.String("referenceId", result.ReferenceID),
		zap.String("category", result.Category),
		zap.Int("priorityScore", result.PriorityScore),
	)

	_ = s.bus.PublishComplaint(result.ReferenceID, map[string]interface{}{
		"type":        "complaint.submitted",
		"complaintId": result.ReferenceID,
		"category":    result.Category,
	})

	s.refresher.Trigger()
	return result, nil
}

// UpdateStatus moves a complaint to a new status on the service and then
// reloads the dashboard. Nothing is changed locally before the service agrees.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	parsed, ok := model.ParseStatus(string(status))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	status = parsed

	if err := s.classifier.UpdateStatus(ctx, id, status.Wire()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info("complaint status updated", zap.String("complaintId", id), zap.String("status", status.Wire()))

	_ = s.bus.PublishComplaint(id, map[string]interface{}{
		"type":        "complaint.status_changed",
		"complaintId": id,
		"status":      status.Wire(),
	})

	s.refresher.Trigger()
	return nil
}

// SendFeedback forwards a classification correction
func (s *ComplaintService) SendFeedback(ctx context.Context, id, category, scheme string) error {
	err := s.classifier.SendFeedback(ctx, civic.Feedback{
		ComplaintID:     id,
		CorrectCategory: category,
		CorrectScheme:   scheme,
	})
	if err != nil {
		return fmt.Errorf("failed to submit feedback: %w", err)
	}
	return nil
}
