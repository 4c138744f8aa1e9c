package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UpsertSection writes a report section, overwriting any existing section of
// the same type for the submission. Most recent data wins per type.
func (db *DB) UpsertSection(ctx context.Context, input *NewReportSection) (*ReportSection, error) {
	dataJSON, err := json.Marshal(input.SectionData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal section data: %w", err)
	}

	var section ReportSection
	var storedData []byte
	err = db.pool.QueryRow(ctx,
		`INSERT INTO report_sections (submission_id, section_type, section_data, "order")
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (submission_id, section_type) DO UPDATE
		 SET section_data = EXCLUDED.section_data, "order" = EXCLUDED."order", updated_at = NOW()
		 RETURNING id, submission_id, section_type, section_data, "order", created_at, updated_at`,
		input.SubmissionID, input.SectionType, dataJSON, input.Order,
	).Scan(&section.ID, &section.SubmissionID, &section.SectionType, &storedData,
		&section.Order, &section.CreatedAt, &section.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert report section: %w", err)
	}

	if storedData != nil {
		_ = json.Unmarshal(storedData, &section.SectionData)
	}

	return &section, nil
}

// ListSections retrieves all report sections for a submission ordered by
// their display order.
func (db *DB) ListSections(ctx context.Context, submissionID uuid.UUID) ([]ReportSection, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, submission_id, section_type, section_data, "order", created_at, updated_at
		 FROM report_sections
		 WHERE submission_id = $1
		 ORDER BY "order"`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list report sections: %w", err)
	}
	defer rows.Close()

	var sections []ReportSection
	for rows.Next() {
		var section ReportSection
		var dataJSON []byte
		if err := rows.Scan(&section.ID, &section.SubmissionID, &section.SectionType,
			&dataJSON, &section.Order, &section.CreatedAt, &section.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report section: %w", err)
		}
		if dataJSON != nil {
			_ = json.Unmarshal(dataJSON, &section.SectionData)
		}
		sections = append(sections, section)
	}
	return sections, nil
}
