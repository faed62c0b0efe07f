package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	data := map[string]string{"id": "rev-123"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, float64(envelopeVersion), decoded["v"])
	assert.Equal(t, true, decoded["success"])
	assert.Contains(t, decoded, "data")
	assert.NotContains(t, decoded, "error")
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	apiErr := &APIError{
		status:  404,
		Code:    "NOT_FOUND",
		Message: "no such review",
	}

	result, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errBody, ok := decoded["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
	assert.Equal(t, "no such review", errBody["message"])
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	env, ok := result.(Envelope)
	require.True(t, ok)
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
}
