// Package failures defines the error kinds surfaced to callers of the custody
// service and the transaction pipeline.
//
// Every kind has a sentinel so callers can branch with errors.Is:
//
//	if errors.Is(err, failures.ErrForbidden) { ... }
//
// Matching is by kind only; the message and wrapped cause are informational.
package failures

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

type Kind string

const (
	KindUnknown               Kind = ""
	KindForbidden             Kind = "Forbidden"
	KindKeyServiceUnavailable Kind = "KeyServiceUnavailable"
	KindUserInput             Kind = "UserInputError"
	KindOperationFailed       Kind = "OperationFailed"
	KindChainUnavailable      Kind = "ChainUnavailable"
	KindTimeout               Kind = "Timeout"
	KindUnconfirmed           Kind = "Unconfirmed"
)

func (k Kind) String() string {
	return string(k)
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrKeyServiceUnavailable = &Error{Kind: KindKeyServiceUnavailable}
	ErrUserInput             = &Error{Kind: KindUserInput}
	ErrOperationFailed       = &Error{Kind: KindOperationFailed}
	ErrChainUnavailable      = &Error{Kind: KindChainUnavailable}
	ErrTimeout               = &Error{Kind: KindTimeout}
	ErrUnconfirmed           = &Error{Kind: KindUnconfirmed}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

func UserInput(format string, args ...any) *Error {
	return New(KindUserInput, format, args...)
}

// OperationFailed is raised by domain callers when a transaction that must
// produce a token emitted no matching event, e.g. OperationFailed("Like failed.").
func OperationFailed(message string) *Error {
	return &Error{Kind: KindOperationFailed, Message: message}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTransport reports whether err came from failing to reach a remote endpoint
// rather than from the endpoint rejecting the request.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

// Chain wraps an RPC error, classifying transport failures as ChainUnavailable.
func Chain(err error, format string, args ...any) error {
	if IsTransport(err) {
		return Wrap(KindChainUnavailable, err, format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
