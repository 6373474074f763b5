package auth

import (
	"github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/jrsteele09/ttb-portal/transport"
)

// Error is returned when an operation could not reach a usable server response. Message is safe
// to show to users; Unwrap exposes the underlying transport.Error.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MFAError reports a well formed MFA response that signalled failure.
type MFAError struct {
	Message  string
	Response map[string]any
	Err      error // errors.ErrMFARequestFailed or errors.ErrInvalidVerificationCode
}

func (e *MFAError) Error() string {
	return e.Message
}

func (e *MFAError) Unwrap() error {
	return e.Err
}

// opError re-wraps err for op, keeping the transport message when there is one.
func opError(op string, err error, fallback string) *Error {
	msg := fallback
	var terr *transport.Error
	if errors.As(err, &terr) && terr.Message != "" {
		msg = terr.Message
	}
	return &Error{Op: op, Message: msg, Err: err}
}
