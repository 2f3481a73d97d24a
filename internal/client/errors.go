package client

import "fmt"

// TransportError reports that the backend could not be reached.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FormatError reports a response that is not a well-formed envelope.
type FormatError struct {
	Status int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed response (status %d): %s", e.Status, e.Reason)
}

// APIError is an unsuccessful envelope whose status has no domain
// meaning, e.g. 401 or 500.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}
