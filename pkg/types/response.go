// Package types holds the wire envelopes shared by every API response.
package types

// SuccessEnvelope wraps successful payloads, checkout results included, under
// a single data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Code carries the machine-readable
// error code; Details is reserved for field-level validation output.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError the same way SuccessEnvelope wraps data.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
