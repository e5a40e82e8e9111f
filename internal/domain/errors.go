package domain

import "fmt"

// Kind classifies a failure so the HTTP boundary can map it to a status code.
type Kind string

const (
	// KindConfig marks missing deployment secrets, detected before any
	// upstream call is attempted.
	KindConfig Kind = "config"
	// KindValidation marks malformed client input.
	KindValidation Kind = "validation"
	// KindPayloadTooLarge marks an oversized request payload.
	KindPayloadTooLarge Kind = "payload_too_large"
	// KindUpstream marks a failure reported by an external provider.
	KindUpstream Kind = "upstream"
	// KindUnexpectedResponse marks provider output this layer cannot interpret.
	KindUnexpectedResponse Kind = "unexpected_response"
	// KindMalformedOutput marks provider content that failed to parse as JSON.
	KindMalformedOutput Kind = "malformed_output"
	// KindMissingPrompt marks parsed provider output lacking the generation
	// prompt required downstream.
	KindMissingPrompt Kind = "missing_prompt"
	// KindUpload marks a CDN upload failure.
	KindUpload Kind = "upload"
)

// Error is a classified failure. Message is safe to return to clients;
// Details optionally carries upstream diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs a classified error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a classification to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
