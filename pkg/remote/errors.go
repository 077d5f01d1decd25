package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
)

// Kind is the category of a remote store failure
type Kind int

const (
	// KindTransport is a network or connection level failure, the request may not have reached the store
	KindTransport Kind = iota
	// KindRejected means the store answered with a non-success status
	KindRejected
	// KindMalformed means the store answered with a payload that can't be decoded
	KindMalformed
)

// sentinels matchable with errors.Is
var (
	ErrTransport = errors.New("transport failure")
	ErrRejected  = errors.New("rejected write")
	ErrMalformed = errors.New("malformed response")
)

// String returns a short name of the kind, used in logs and the activity journal
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindRejected:
		return ErrRejected
	default:
		return ErrMalformed
	}
}

// Error is a classified remote store failure
type Error struct {
	Kind    Kind
	Op      string // operation name, e.g. "update news field"
	Status  int    // HTTP status for rejected calls
	Detail  string // detail message reported by the store, if any
	Timeout bool   // transport failure caused by a deadline
	Err     error  // underlying error, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind.sentinel())
	if e.Status != 0 {
		msg += fmt.Sprintf(", status %d", e.Status)
	}
	if e.Detail != "" {
		msg += ", " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying error
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// Message returns a short human readable text for inline error states
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case KindTransport:
		if e.Timeout {
			return "request timed out"
		}
		return "unable to connect to server"
	case KindRejected:
		return fmt.Sprintf("server returned status %d", e.Status)
	default:
		return "unexpected response from server"
	}
}

// KindOf returns the kind of a remote error, ok is false for errors not produced by this package
func KindOf(err error) (Kind, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind, true
	}
	return 0, false
}

// IsTransport reports whether err is a transport failure
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

// IsRejected reports whether err is a rejected call
func IsRejected(err error) bool { return errors.Is(err, ErrRejected) }

// IsMalformed reports whether err is an undecodable response
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformed) }

// transportError classifies a failed round trip
func transportError(op string, err error) *Error {
	res := &Error{Kind: KindTransport, Op: op, Err: err}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		res.Timeout = true
		return res
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		res.Timeout = true
		return res
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		res.Timeout = true
	}
	return res
}
