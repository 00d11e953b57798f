package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope structure changes in a way
// clients must know about.
const envelopeVersion = 1

// Envelope is the uniform response wrapper for every API endpoint.
type Envelope struct {
	V       int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   any    `json:"error,omitempty" doc:"Error message or detailed error object"`
}

// EnvelopeTransformer wraps every huma response body in the standard
// envelope. Error bodies keep their code/message/details structure; plain
// error strings collapse to a string so simple clients can display them
// directly.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code == "" && apiErr.Details == nil {
			return &Envelope{V: envelopeVersion, Success: false, Error: apiErr.Message}, nil
		}
		return &Envelope{V: envelopeVersion, Success: false, Error: apiErr}, nil
	}

	if len(status) > 0 && status[0] != '2' {
		if err, ok := v.(error); ok {
			return &Envelope{V: envelopeVersion, Success: false, Error: err.Error()}, nil
		}
		return &Envelope{V: envelopeVersion, Success: false, Error: v}, nil
	}

	return &Envelope{V: envelopeVersion, Success: true, Data: v}, nil
}
