package client

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// ErrClientClosed is returned by requests issued after Close.
var ErrClientClosed = errors.New("gamma client is closed")

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassUnexpected represents any other non-200 status.
	ErrorClassUnexpected ErrorClass = "unexpected"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents response bodies that are not valid JSON.
	ErrorClassDecode ErrorClass = "decode"
)

// classifyStatus maps a non-200 status code to its error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}

// TransportError is a network-level failure reaching the Gamma API.
type TransportError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("gamma %s: transport error: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteAPIError is returned when the Gamma API answers with a non-200 status.
type RemoteAPIError struct {
	StatusCode int
	Endpoint   string
	ErrorClass ErrorClass
	Body       string
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("gamma %s: %s error (status %d %s): %s",
			e.Endpoint, e.ErrorClass, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
	}
	return fmt.Sprintf("gamma %s: %s error (status %d %s)",
		e.Endpoint, e.ErrorClass, e.StatusCode, http.StatusText(e.StatusCode))
}

// DecodeError is returned when a 200 response body is not the expected JSON.
type DecodeError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("gamma %s: decode response: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports an invalid client or request configuration.
// It is always returned before any request is sent.
type ConfigurationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "gamma configuration: " + e.Message
}

const maxBodySnippet = 256

// readBodySnippet trims a response body for inclusion in an error,
// without splitting a UTF-8 sequence.
func readBodySnippet(body []byte) string {
	if len(body) <= maxBodySnippet {
		return string(body)
	}

	cut := maxBodySnippet
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut])
}
