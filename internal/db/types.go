package db

import (
	"time"

	"github.com/google/uuid"
)

// Submission status values.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Workflow run status values.
const (
	RunStatusPending = "pending"
	RunStatusRunning = "running"
	RunStatusError   = "error"
)

// Submission is one intake event. The payload itself lives in
// submission_payloads.
type Submission struct {
	ID                uuid.UUID `json:"id"`
	SubmittedAt       time.Time `json:"submitted_at"`
	TargetEnvironment string    `json:"target_environment"`
	BrandName         string    `json:"brand_name"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewSubmission is the input for creating a submission record.
type NewSubmission struct {
	ID                uuid.UUID
	SubmittedAt       time.Time
	TargetEnvironment string
	BrandName         string
	Status            string
}

// WorkflowRun is one record of a dispatch attempt lineage. Rows are
// append-only; the latest row by creation time is authoritative.
type WorkflowRun struct {
	ID              uuid.UUID  `json:"id"`
	SubmissionID    uuid.UUID  `json:"submission_id"`
	WebhookURL      string     `json:"webhook_url"`
	WebhookResponse []byte     `json:"webhook_response,omitempty"`
	Status          string     `json:"status"`
	RetryCount      int        `json:"retry_count"`
	LastError       *string    `json:"last_error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewWorkflowRun is the input for recording a dispatch attempt.
type NewWorkflowRun struct {
	SubmissionID    uuid.UUID
	WebhookURL      string
	WebhookResponse any
	Status          string
	RetryCount      int
	LastError       string
	Completed       bool
}

// ReportSection is one named fragment of the generated report.
type ReportSection struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	SectionType  string    `json:"section_type"`
	SectionData  any       `json:"section_data"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReportSection is the input for writing a report section.
type NewReportSection struct {
	SubmissionID uuid.UUID
	SectionType  string
	SectionData  any
	Order        int
}

// AuditLog is an append-only record of a notable action. Rows survive
// submission deletion via a nullable foreign key.
type AuditLog struct {
	ID           uuid.UUID  `json:"id"`
	SubmissionID *uuid.UUID `json:"submission_id,omitempty"`
	Action       string     `json:"action"`
	ActorType    string     `json:"actor_type"`
	Metadata     any        `json:"metadata,omitempty"`
	IPAddress    string     `json:"ip_address,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewAuditLog is the input for appending an audit entry.
type NewAuditLog struct {
	SubmissionID uuid.UUID
	Action       string
	ActorType    string
	Metadata     any
	IPAddress    string
	UserAgent    string
}
