package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRun records one dispatch attempt. Each attempt appends a new row;
// prior rows are never mutated.
func (db *DB) CreateRun(ctx context.Context, input *NewWorkflowRun) (*WorkflowRun, error) {
	var responseJSON []byte
	if input.WebhookResponse != nil {
		var err error
		responseJSON, err = json.Marshal(input.WebhookResponse)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal webhook response: %w", err)
		}
	}

	var lastError *string
	if input.LastError != "" {
		lastError = &input.LastError
	}

	var run WorkflowRun
	query := `INSERT INTO workflow_runs (submission_id, webhook_url, webhook_response, status, retry_count, last_error, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $7 THEN NOW() ELSE NULL END)
		 RETURNING id, submission_id, webhook_url, webhook_response, status, retry_count,
		           last_error, started_at, completed_at, created_at, updated_at`
	err := db.pool.QueryRow(ctx, query,
		input.SubmissionID, input.WebhookURL, responseJSON, input.Status, input.RetryCount,
		lastError, input.Completed,
	).Scan(&run.ID, &run.SubmissionID, &run.WebhookURL, &run.WebhookResponse, &run.Status,
		&run.RetryCount, &run.LastError, &run.StartedAt, &run.CompletedAt,
		&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow run: %w", err)
	}
	return &run, nil
}

// GetLatestRun retrieves the most recent workflow run for a submission. The
// newest row by creation time is authoritative for status queries.
func (db *DB) GetLatestRun(ctx context.Context, submissionID uuid.UUID) (*WorkflowRun, error) {
	var run WorkflowRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, submission_id, webhook_url, webhook_response, status, retry_count,
		        last_error, started_at, completed_at, created_at, updated_at
		 FROM workflow_runs
		 WHERE submission_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		submissionID,
	).Scan(&run.ID, &run.SubmissionID, &run.WebhookURL, &run.WebhookResponse, &run.Status,
		&run.RetryCount, &run.LastError, &run.StartedAt, &run.CompletedAt,
		&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest workflow run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the full dispatch history for a submission, newest first.
func (db *DB) ListRuns(ctx context.Context, submissionID uuid.UUID) ([]WorkflowRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, submission_id, webhook_url, webhook_response, status, retry_count,
		        last_error, started_at, completed_at, created_at, updated_at
		 FROM workflow_runs
		 WHERE submission_id = $1
		 ORDER BY created_at DESC`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow runs: %w", err)
	}
	defer rows.Close()

	var runs []WorkflowRun
	for rows.Next() {
		var run WorkflowRun
		if err := rows.Scan(&run.ID, &run.SubmissionID, &run.WebhookURL, &run.WebhookResponse,
			&run.Status, &run.RetryCount, &run.LastError, &run.StartedAt, &run.CompletedAt,
			&run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
