package portal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/ttb-portal/auth"
	"github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/jrsteele09/ttb-portal/internal/utils"
	"github.com/rs/zerolog/log"
)

// View is the screen the login flow is currently showing.
type View string

const (
	ViewLogin         View = "login"
	ViewPhoneRegister View = "mfa-phone-register"
	ViewOTPVerify     View = "mfa-otp-verify"
	ViewDone          View = "done"
)

const (
	msgLoginFallback    = "Login failed. Please try again."
	msgMFANotDetected   = "MFA is required but not detected. Please contact support."
	msgSendCodeFallback = "Failed to send verification code. Please try again."
	msgVerifyFallback   = "Verification failed. Please try again."
	msgVerifyError      = "Invalid verification code. Please try again."
	msgCodeResent       = "New verification code has been sent to "
)

// Authenticator is the part of auth.Service the login flow drives.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) (auth.LoginOutcome, error)
	RegisterPhoneMFA(ctx context.Context, phone string) (*auth.MFAResponse, error)
	VerifyOTP(ctx context.Context, req auth.OTPRequest) (auth.LoginOutcome, error)
}

// Error is a failure whose Message is shown to the user as-is.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FlowState is a snapshot of the login flow for rendering.
type FlowState struct {
	View              View
	Email             string
	Phone             string
	Error             string
	Success           string
	CooldownRemaining int
}

// LoginFlow moves a user from credentials, through phone registration and OTP verification, to an
// authenticated session.
type LoginFlow struct {
	auth      Authenticator
	validator *FormValidator
	cooldown  *Cooldown
	busy      atomic.Bool

	mu      sync.Mutex
	view    View
	email   string
	phone   string
	errMsg  string
	success string
}

type FlowOption func(*LoginFlow)

// WithCooldown replaces the default one-second resend cooldown.
func WithCooldown(c *Cooldown) FlowOption {
	return func(f *LoginFlow) {
		f.cooldown = c
	}
}

func NewLoginFlow(a Authenticator, opts ...FlowOption) *LoginFlow {
	f := &LoginFlow{
		auth:      a,
		validator: NewFormValidator(),
		cooldown:  NewCooldown(time.Second),
		view:      ViewLogin,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *LoginFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FlowState{
		View:              f.view,
		Email:             f.email,
		Phone:             f.phone,
		Error:             f.errMsg,
		Success:           f.success,
		CooldownRemaining: f.cooldown.Remaining(),
	}
}

// Cooldown exposes the resend countdown so front-ends can render ticks.
func (f *LoginFlow) Cooldown() *Cooldown {
	return f.cooldown
}

// PhoneDefault is the digits-only phone the registration form starts with.
func (f *LoginFlow) PhoneDefault() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return utils.DigitsOnly(f.phone)
}

// SubmitLogin validates the form and submits the credentials.
func (f *LoginFlow) SubmitLogin(ctx context.Context, form LoginForm) (FlowState, error) {
	if err := f.validator.Validate(form); err != nil {
		return f.State(), err
	}
	if err := f.enter(ViewLogin); err != nil {
		return f.State(), err
	}
	defer f.busy.Store(false)

	outcome, err := f.auth.Login(ctx, auth.Credentials{Identifier: form.Email, Secret: form.Password})
	if err != nil {
		return f.fail(err, msgLoginFallback)
	}

	switch {
	case outcome.Success():
		f.set(func() {
			f.view = ViewDone
		})
		return f.State(), nil

	case outcome.RequiresMFA():
		next := ViewPhoneRegister
		if outcome.MFA.Enrolled {
			next = ViewOTPVerify
		}
		log.Debug().Str("view", string(next)).Msg("MFA required")
		f.set(func() {
			f.view = next
			f.email = firstNonEmpty(outcome.MFA.Email, form.Email)
			f.phone = outcome.MFA.Phone
		})
		return f.State(), nil

	default:
		return f.fail(&Error{Message: firstNonEmpty(outcome.Message, msgMFANotDetected)}, msgMFANotDetected)
	}
}

// SubmitPhone registers the phone and moves on to OTP verification.
func (f *LoginFlow) SubmitPhone(ctx context.Context, form PhoneForm) (FlowState, error) {
	if err := f.validator.Validate(form); err != nil {
		return f.State(), err
	}
	if err := f.enter(ViewPhoneRegister); err != nil {
		return f.State(), err
	}
	defer f.busy.Store(false)

	if _, err := f.auth.RegisterPhoneMFA(ctx, form.Phone); err != nil {
		return f.fail(err, msgSendCodeFallback)
	}
	f.set(func() {
		f.phone = form.Phone
		f.view = ViewOTPVerify
	})
	return f.State(), nil
}

// SubmitOTP verifies the code and completes the login.
func (f *LoginFlow) SubmitOTP(ctx context.Context, form OTPForm) (FlowState, error) {
	if err := f.validator.Validate(form); err != nil {
		return f.State(), err
	}
	if err := f.enter(ViewOTPVerify); err != nil {
		return f.State(), err
	}
	defer f.busy.Store(false)

	outcome, err := f.auth.VerifyOTP(ctx, auth.OTPRequest{Code: form.OTP, RememberMe: form.RememberMe})
	if err != nil {
		return f.fail(err, msgVerifyError)
	}
	if !outcome.Success() {
		return f.fail(&Error{Message: firstNonEmpty(outcome.Message, msgVerifyFallback)}, msgVerifyFallback)
	}

	f.cooldown.Stop()
	f.set(func() {
		f.view = ViewDone
	})
	return f.State(), nil
}

// RequestNewOTP re-sends a code to the current phone. It is refused while the resend cooldown runs.
func (f *LoginFlow) RequestNewOTP(ctx context.Context) (FlowState, error) {
	if f.cooldown.Active() {
		return f.State(), errors.ErrResendCooldown
	}
	if err := f.enter(ViewOTPVerify); err != nil {
		return f.State(), err
	}
	defer f.busy.Store(false)

	phone := f.State().Phone
	if _, err := f.auth.RegisterPhoneMFA(ctx, utils.DigitsOnly(phone)); err != nil {
		return f.fail(err, msgSendCodeFallback)
	}

	f.cooldown.Start(ResendCooldownSeconds)
	f.set(func() {
		f.success = msgCodeResent + utils.FormatPhone(phone)
	})
	return f.State(), nil
}

// Cancel abandons MFA and returns to the login view.
func (f *LoginFlow) Cancel() FlowState {
	f.cooldown.Stop()
	f.set(func() {
		f.view = ViewLogin
		f.email = ""
		f.phone = ""
	})
	return f.State()
}

// enter claims the in-flight slot for an action allowed only in view, and clears old messages.
func (f *LoginFlow) enter(view View) error {
	if !f.busy.CompareAndSwap(false, true) {
		return errors.ErrBusy
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.view != view {
		f.busy.Store(false)
		return errors.Wrapf(errors.ErrWrongView, "in %s, need %s", f.view, view)
	}
	f.errMsg = ""
	f.success = ""
	return nil
}

func (f *LoginFlow) set(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

// fail records the message for err, or fallback when err has none, and returns it as an *Error.
func (f *LoginFlow) fail(err error, fallback string) (FlowState, error) {
	msg := firstNonEmpty(err.Error(), fallback)
	log.Debug().Err(err).Msg("login flow step failed")
	f.set(func() {
		f.errMsg = msg
	})

	var perr *Error
	if errors.As(err, &perr) {
		return f.State(), perr
	}
	return f.State(), &Error{Message: msg, Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
