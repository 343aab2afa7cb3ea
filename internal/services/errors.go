package services

import "fmt"

// Custom errors
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Validation error"
}

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// MissingCredentialError means no API key was present, so no call was made.
type MissingCredentialError struct{}

func (e *MissingCredentialError) Error() string {
	return "Please enter your Groq API Key in the sidebar."
}

// ProviderError wraps any failure of the remote completion call, including
// replies that carry no text.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
