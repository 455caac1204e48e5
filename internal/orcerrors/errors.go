// Package orcerrors defines the tagged error taxonomy carried through the
// planner, graph, and executor pipeline. Every failure mode that crosses a
// component boundary is wrapped in an Error with a Kind so callers can branch
// on errors.As without parsing message text.
package orcerrors

import (
	"errors"
	"fmt"
)

// Kind tags an Error with the failure mode it represents.
type Kind string

const (
	KindParseFailed           Kind = "PARSE_FAILED"
	KindValidationFailed      Kind = "VALIDATION_FAILED"
	KindDuplicateRegistration Kind = "DUPLICATE_REGISTRATION"
	KindGraphInvalid          Kind = "GRAPH_INVALID"
	KindGatewayTimeout        Kind = "GATEWAY_TIMEOUT"
	KindGatewayConnFailed     Kind = "GATEWAY_CONNECTION_FAILED"
	KindGatewayProtocolError  Kind = "GATEWAY_PROTOCOL_ERROR"
	KindAgentExecutionFailed  Kind = "AGENT_EXECUTION_FAILED"
	KindConfigMissing         Kind = "CONFIG_MISSING"
)

// Error is a tagged error carrying a human-readable message and, optionally,
// the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error tagging an existing error with a Kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, orcerrors.New(orcerrors.KindGraphInvalid, "")) or,
// more idiomatically, compare via KindOf below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
