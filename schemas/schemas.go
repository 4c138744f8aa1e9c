// Package schemas embeds the JSON Schema documents used to validate
// structured payloads at the API boundary.
package schemas

import _ "embed"

// SubmissionPayload is the JSON Schema for the intake form payload.
//
//go:embed submission_payload.schema.json
var SubmissionPayload string
