package extraction

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies extraction failures. Configuration, upstream and malformed-response
// errors abort an invocation; persistence errors are recovered per row.
type Kind string

const (
	KindConfiguration     Kind = "configuration"
	KindUpstream          Kind = "upstream"
	KindMalformedResponse Kind = "malformed_response"
	KindPersistence       Kind = "persistence"
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Kind)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Kind)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, op, message string, cause error) error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message), Cause: cause}
}

func ConfigurationError(op, message string) error {
	return newError(KindConfiguration, op, message, nil)
}

func UpstreamError(op string, cause error) error {
	return newError(KindUpstream, op, "", cause)
}

func MalformedResponseError(op, message string, cause error) error {
	return newError(KindMalformedResponse, op, message, cause)
}

func PersistenceError(op string, cause error) error {
	return newError(KindPersistence, op, "", cause)
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// Fatal reports whether err ends an invocation rather than a single row.
func Fatal(err error) bool {
	switch KindOf(err) {
	case KindConfiguration, KindUpstream, KindMalformedResponse:
		return true
	default:
		return false
	}
}
