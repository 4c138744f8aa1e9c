package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateSubmission creates a new submission record
func (db *DB) CreateSubmission(ctx context.Context, input *NewSubmission) (*Submission, error) {
	var sub Submission
	err := db.pool.QueryRow(ctx,
		`INSERT INTO submissions (id, submitted_at, target_environment, brand_name, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, submitted_at, target_environment, brand_name, status, created_at, updated_at`,
		input.ID, input.SubmittedAt, input.TargetEnvironment, input.BrandName, input.Status,
	).Scan(&sub.ID, &sub.SubmittedAt, &sub.TargetEnvironment, &sub.BrandName, &sub.Status,
		&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return &sub, nil
}

// GetSubmission retrieves a submission by ID
func (db *DB) GetSubmission(ctx context.Context, id uuid.UUID) (*Submission, error) {
	var sub Submission
	err := db.pool.QueryRow(ctx,
		`SELECT id, submitted_at, target_environment, brand_name, status, created_at, updated_at
		 FROM submissions WHERE id = $1`,
		id,
	).Scan(&sub.ID, &sub.SubmittedAt, &sub.TargetEnvironment, &sub.BrandName, &sub.Status,
		&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

// UpdateSubmissionStatus updates the status of a submission
func (db *DB) UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE submissions SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("submission not found: %s", id)
	}
	return nil
}

// CreatePayload stores the full validated brief for a submission. Payloads
// are immutable after creation.
func (db *DB) CreatePayload(ctx context.Context, submissionID uuid.UUID, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO submission_payloads (submission_id, payload) VALUES ($1, $2)`,
		submissionID, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create payload: %w", err)
	}
	return nil
}

// GetPayload retrieves the stored brief for a submission. Returns nil when
// no payload row exists, which readers must treat as "payload missing"
// rather than an error.
func (db *DB) GetPayload(ctx context.Context, submissionID uuid.UUID) ([]byte, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM submission_payloads WHERE submission_id = $1`,
		submissionID,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payload: %w", err)
	}
	return payload, nil
}
