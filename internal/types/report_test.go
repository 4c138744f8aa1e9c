package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SyncRequest
		wantErr bool
	}{
		{
			name: "status only",
			req:  SyncRequest{SubmissionID: "7f3e4d5c-1234-4abc-9def-1234567890ab", Status: "completed"},
		},
		{
			name: "sections only",
			req: SyncRequest{
				SubmissionID: "7f3e4d5c-1234-4abc-9def-1234567890ab",
				ReportSections: []ReportSection{
					{Type: "pricing", Data: map[string]any{"unitCost": 2.4}, Order: 3},
				},
			},
		},
		{
			name:    "missing submission id",
			req:     SyncRequest{Status: "completed"},
			wantErr: true,
		},
		{
			name:    "malformed submission id",
			req:     SyncRequest{SubmissionID: "not-a-uuid", Status: "completed"},
			wantErr: true,
		},
		{
			name:    "unknown status",
			req:     SyncRequest{SubmissionID: "7f3e4d5c-1234-4abc-9def-1234567890ab", Status: "exploded"},
			wantErr: true,
		},
		{
			name: "section without type",
			req: SyncRequest{
				SubmissionID:   "7f3e4d5c-1234-4abc-9def-1234567890ab",
				ReportSections: []ReportSection{{Data: map[string]any{}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubmissionPayload_OptionalFieldsOmitted(t *testing.T) {
	payload := SubmissionPayload{
		SubmissionID:      "7f3e4d5c-1234-4abc-9def-1234567890ab",
		TargetEnvironment: "production",
		Brand:             Brand{Name: "Lumina Botanica"},
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "launchTimeline")
	assert.NotContains(t, string(raw), "referenceUpload")
	assert.Contains(t, string(raw), `"targetEnvironment":"production"`)
}
