package types

import "github.com/go-playground/validator/v10"

// SyncRequest is the callback body sent by the workflow engine after it has
// processed (part of) a submission.
type SyncRequest struct {
	SubmissionID   string          `json:"submissionId" validate:"required,uuid"`
	Status         string          `json:"status,omitempty" validate:"omitempty,oneof=queued running completed error"`
	ReportSections []ReportSection `json:"reportSections,omitempty" validate:"omitempty,dive"`
}

// ReportSection is one named fragment of the generated report.
type ReportSection struct {
	Type  string `json:"type" validate:"required"`
	Data  any    `json:"data" validate:"required"`
	Order int    `json:"order,omitempty"`
}

// Validate validates the SyncRequest using the validator.
func (r *SyncRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// WorkflowSummary is the workflow-run portion of the full result document.
type WorkflowSummary struct {
	Status      string `json:"status,omitempty"`
	StartedAt   string `json:"startedAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
	RetryCount  int    `json:"retryCount"`
}

// StatusSnapshot is the lightweight polling view of a submission.
type StatusSnapshot struct {
	Status         string `json:"status"`
	LastUpdated    string `json:"lastUpdated"`
	WorkflowStatus string `json:"workflowStatus,omitempty"`
}

// ResultDocument is the fully assembled report view for one submission.
type ResultDocument struct {
	SubmissionID string             `json:"submissionId"`
	Status       string             `json:"status"`
	SubmittedAt  string             `json:"submittedAt"`
	Environment  string             `json:"environment"`
	BrandName    string             `json:"brandName"`
	Payload      *SubmissionPayload `json:"payload,omitempty"`
	Workflow     WorkflowSummary    `json:"workflow"`
	Sections     map[string]any     `json:"sections"`
}
