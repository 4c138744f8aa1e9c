// Package intake orchestrates the submission pipeline: validate, persist,
// dispatch to the workflow webhook, and record the outcome.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/maharani/glowbrief/internal/analytics"
	"github.com/maharani/glowbrief/internal/db"
	"github.com/maharani/glowbrief/internal/dispatch"
	"github.com/maharani/glowbrief/internal/types"
	"github.com/maharani/glowbrief/internal/validation"
)

// ErrStoreUnavailable indicates no backing store is configured. Callers must
// treat this as degraded mode, not a hard failure.
var ErrStoreUnavailable = errors.New("submission store not configured")

// Store is the persistence surface the orchestrator needs. *db.DB satisfies
// it; a nil Store switches the pipeline into mock mode.
type Store interface {
	CreateSubmission(ctx context.Context, input *db.NewSubmission) (*db.Submission, error)
	CreatePayload(ctx context.Context, submissionID uuid.UUID, payload any) error
	CreateRun(ctx context.Context, input *db.NewWorkflowRun) (*db.WorkflowRun, error)
	CreateAuditLog(ctx context.Context, input *db.NewAuditLog) error
}

// WebhookDispatcher forwards a payload to the workflow engine.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, payload *types.SubmissionPayload, environment string) (*dispatch.Result, error)
	TargetURL(environment string) string
}

// RequestMeta carries requester details into the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Result is the user-visible outcome of a submission. Status is always
// "queued" on success: webhook delivery failures are recorded but never
// surfaced as submission failures.
type Result struct {
	SubmissionID  string `json:"submissionId"`
	Mode          string `json:"mode"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	WebhookStatus string `json:"webhookStatus,omitempty"`
	MockMode      bool   `json:"mockMode,omitempty"`
	Note          string `json:"note,omitempty"`
}

// Service ties the validator, store, dispatcher and analytics together.
type Service struct {
	store      Store
	dispatcher WebhookDispatcher
	analytics  *analytics.Logger
}

// New creates the orchestrator. Pass a nil store to run in mock mode.
func New(store Store, dispatcher WebhookDispatcher, analyticsLogger *analytics.Logger) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		analytics:  analyticsLogger,
	}
}

// MockMode reports whether the service runs without persistence.
func (s *Service) MockMode() bool {
	return s.store == nil
}

// Submit runs the full intake pipeline on a raw JSON payload. Validation
// failures return *validation.ValidationError; any other error is an
// internal failure. With no store configured the payload is validated,
// logged and acknowledged without backend processing.
func (s *Service) Submit(ctx context.Context, raw []byte, meta RequestMeta) (*Result, error) {
	payload, err := validation.ValidatePayload(raw)
	if err != nil {
		return nil, err
	}

	if s.store == nil {
		log.Printf("[intake] mock mode: backend not configured, acknowledging submission %s without processing", payload.SubmissionID)
		return &Result{
			SubmissionID: payload.SubmissionID,
			Mode:         payload.TargetEnvironment,
			Status:       db.StatusQueued,
			Message:      "Form submitted successfully (mock mode, no backend configured)",
			MockMode:     true,
			Note:         "Configure DATABASE_URL and N8N_PRODUCTION_WEBHOOK to enable backend processing",
		}, nil
	}

	submissionID, err := uuid.Parse(payload.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}
	submittedAt, err := time.Parse(time.RFC3339, payload.SubmittedAt)
	if err != nil {
		submittedAt = time.Now().UTC()
	}

	submission, err := s.store.CreateSubmission(ctx, &db.NewSubmission{
		ID:                submissionID,
		SubmittedAt:       submittedAt,
		TargetEnvironment: payload.TargetEnvironment,
		BrandName:         payload.Brand.Name,
		Status:            db.StatusQueued,
	})
	if err != nil {
		return nil, err
	}

	// Payload create is a separate write: a crash here leaves an orphaned
	// submission, which readers handle as "payload missing".
	if err := s.store.CreatePayload(ctx, submission.ID, payload); err != nil {
		return nil, err
	}

	webhookResult := s.dispatchWithRecord(ctx, submission.ID, payload)

	if err := s.store.CreateAuditLog(ctx, &db.NewAuditLog{
		SubmissionID: submission.ID,
		Action:       "submission_created",
		ActorType:    "user",
		Metadata: map[string]any{
			"environment":    payload.TargetEnvironment,
			"brandName":      payload.Brand.Name,
			"webhookSuccess": webhookResult.Success,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}); err != nil {
		log.Printf("[intake] audit log failed for %s: %v", submission.ID, err)
	}

	s.analytics.LogSubmission(submission.ID.String(), payload.TargetEnvironment)

	result := &Result{
		SubmissionID:  submission.ID.String(),
		Mode:          payload.TargetEnvironment,
		Status:        db.StatusQueued,
		WebhookStatus: "pending_retry",
		Message:       "Submission saved (workflow will process shortly)",
	}
	if webhookResult.Success {
		result.WebhookStatus = "dispatched"
		result.Message = "Submission queued successfully"
	}
	return result, nil
}

// dispatchWithRecord forwards the payload and appends workflow run rows for
// the attempt lineage: one pending row before dispatch, one outcome row
// after. The newest row wins on status reads. Dispatch failures are absorbed
// here.
func (s *Service) dispatchWithRecord(ctx context.Context, submissionID uuid.UUID, payload *types.SubmissionPayload) *dispatch.Result {
	webhookURL := s.dispatcher.TargetURL(payload.TargetEnvironment)

	if _, err := s.store.CreateRun(ctx, &db.NewWorkflowRun{
		SubmissionID: submissionID,
		WebhookURL:   webhookURL,
		Status:       db.RunStatusPending,
	}); err != nil {
		log.Printf("[intake] failed to record pending run for %s: %v", submissionID, err)
	}

	webhookResult, err := s.dispatcher.Dispatch(ctx, payload, payload.TargetEnvironment)
	if err != nil {
		log.Printf("[intake] webhook dispatch error for %s: %v", submissionID, err)
		webhookResult = &dispatch.Result{Success: false, Error: err.Error()}
	}

	status := db.RunStatusRunning
	completed := false
	if !webhookResult.Success {
		status = db.RunStatusError
		completed = true
	}

	retryCount := 0
	if webhookResult.Attempts > 0 {
		retryCount = webhookResult.Attempts - 1
	}

	if _, err := s.store.CreateRun(ctx, &db.NewWorkflowRun{
		SubmissionID:    submissionID,
		WebhookURL:      webhookURL,
		WebhookResponse: webhookResult,
		Status:          status,
		RetryCount:      retryCount,
		LastError:       webhookResult.Error,
		Completed:       completed,
	}); err != nil {
		log.Printf("[intake] failed to record workflow run for %s: %v", submissionID, err)
	}

	return webhookResult
}
