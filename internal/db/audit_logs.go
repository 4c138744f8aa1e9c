package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CreateAuditLog appends an audit entry. Entries are never updated or
// deleted by the application.
func (db *DB) CreateAuditLog(ctx context.Context, input *NewAuditLog) error {
	var metadataJSON []byte
	if input.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(input.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	var submissionID *uuid.UUID
	if input.SubmissionID != uuid.Nil {
		submissionID = &input.SubmissionID
	}

	var ipAddress, userAgent *string
	if input.IPAddress != "" {
		ipAddress = &input.IPAddress
	}
	if input.UserAgent != "" {
		userAgent = &input.UserAgent
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO audit_logs (submission_id, action, actor_type, metadata, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		submissionID, input.Action, input.ActorType, metadataJSON, ipAddress, userAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListAuditLogs retrieves recent audit entries for a submission, newest first.
func (db *DB) ListAuditLogs(ctx context.Context, submissionID uuid.UUID, limit int) ([]AuditLog, error) {
	if limit == 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, submission_id, action, actor_type, metadata, ip_address, user_agent, created_at
		 FROM audit_logs
		 WHERE submission_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		submissionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var entry AuditLog
		var metadataJSON []byte
		var ipAddress, userAgent *string
		if err := rows.Scan(&entry.ID, &entry.SubmissionID, &entry.Action, &entry.ActorType,
			&metadataJSON, &ipAddress, &userAgent, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if metadataJSON != nil {
			_ = json.Unmarshal(metadataJSON, &entry.Metadata)
		}
		if ipAddress != nil {
			entry.IPAddress = *ipAddress
		}
		if userAgent != nil {
			entry.UserAgent = *userAgent
		}
		logs = append(logs, entry)
	}
	return logs, nil
}
