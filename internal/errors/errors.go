package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal client
var (
	// Session errors
	ErrNotAuthorized  = errors.New("not authenticated")
	ErrCorruptEntry   = errors.New("corrupt stored session entry")
	ErrStoreReadFail  = errors.New("session store read failed")
	ErrStoreWriteFail = errors.New("session store write failed")

	// MFA errors
	ErrMFARequestFailed        = errors.New("mfa request failed")
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// Login flow errors
	ErrWrongView      = errors.New("action not available in the current view")
	ErrResendCooldown = errors.New("verification code was sent recently")

	// Transport errors
	ErrInvalidResponse = errors.New("invalid response")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInvalidForm = errors.New("invalid form")
	ErrBusy        = errors.New("request already in progress")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
