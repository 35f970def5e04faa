package remote

import "errors"

var (
	// ErrRemoteNotConfigured is returned when the http backend is selected
	// without a server URL.
	ErrRemoteNotConfigured = errors.New("document service not configured, pass --server or set server in config.yaml")

	// ErrUnexpectedResponse is returned when the service answers with a
	// status or body the client does not understand.
	ErrUnexpectedResponse = errors.New("unexpected response from document service")
)
