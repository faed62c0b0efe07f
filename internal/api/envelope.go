package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire format version clients pin against.
const envelopeVersion = 1

// Envelope is the standard response wrapper every endpoint returns.
type Envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// EnvelopeTransformer wraps every response body in the standard
// envelope. Registered on the huma config so handlers return plain
// bodies and the wrapper stays in one place.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}

	env := Envelope{
		V:       envelopeVersion,
		Success: code < 400,
	}

	if env.Success {
		env.Data = v
	} else {
		env.Error = v
	}

	return env, nil
}
