package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestSubmissionPayloadSchemaCompiles(t *testing.T) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(SubmissionPayload))
	require.NoError(t, err, "embedded schema must compile")
	assert.NotNil(t, schema)
}
