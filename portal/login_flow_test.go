package portal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/ttb-portal/auth"
	interrors "github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/jrsteele09/ttb-portal/portal"
	"github.com/stretchr/testify/require"
)

var validLogin = portal.LoginForm{Email: "john.doe@example.com", Password: "password123"}

// fakeAuthenticator answers with canned results and records the arguments it was given.
type fakeAuthenticator struct {
	mu sync.Mutex

	loginOutcome  auth.LoginOutcome
	loginErr      error
	registerErr   error
	verifyOutcome auth.LoginOutcome
	verifyErr     error

	phones  []string
	otps    []auth.OTPRequest
	started chan struct{}
	block   chan struct{}
}

func (f *fakeAuthenticator) Login(_ context.Context, _ auth.Credentials) (auth.LoginOutcome, error) {
	if f.block != nil {
		close(f.started)
		<-f.block
	}
	return f.loginOutcome, f.loginErr
}

func (f *fakeAuthenticator) RegisterPhoneMFA(_ context.Context, phone string) (*auth.MFAResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phones = append(f.phones, phone)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &auth.MFAResponse{Status: "OK"}, nil
}

func (f *fakeAuthenticator) VerifyOTP(_ context.Context, req auth.OTPRequest) (auth.LoginOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps = append(f.otps, req)
	return f.verifyOutcome, f.verifyErr
}

func mfaOutcome(enrolled bool, phone string) auth.LoginOutcome {
	return auth.LoginOutcome{
		Kind: auth.OutcomeMFARequired,
		MFA:  auth.MFAChallenge{Enrolled: enrolled, Phone: phone},
	}
}

func newFlow(a portal.Authenticator) *portal.LoginFlow {
	return portal.NewLoginFlow(a, portal.WithCooldown(portal.NewCooldown(time.Hour)))
}

func TestLoginFlow_SubmitLogin(t *testing.T) {
	tests := []struct {
		name          string
		outcome       auth.LoginOutcome
		expectedView  portal.View
		expectedEmail string
		expectedPhone string
		expectedError string
	}{
		{
			name:         "success",
			outcome:      auth.LoginOutcome{Kind: auth.OutcomeSuccess},
			expectedView: portal.ViewDone,
		},
		{
			name:          "not enrolled",
			outcome:       mfaOutcome(false, "5551234567"),
			expectedView:  portal.ViewPhoneRegister,
			expectedEmail: validLogin.Email,
			expectedPhone: "5551234567",
		},
		{
			name:          "enrolled",
			outcome:       mfaOutcome(true, ""),
			expectedView:  portal.ViewOTPVerify,
			expectedEmail: validLogin.Email,
		},
		{
			name:          "failure",
			outcome:       auth.LoginOutcome{Kind: auth.OutcomeFailure, Message: "Login failed. No authentication token received. Please try again."},
			expectedView:  portal.ViewLogin,
			expectedError: "Login failed. No authentication token received. Please try again.",
		},
		{
			name:          "failure without message",
			outcome:       auth.LoginOutcome{Kind: auth.OutcomeFailure},
			expectedView:  portal.ViewLogin,
			expectedError: "MFA is required but not detected. Please contact support.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := newFlow(&fakeAuthenticator{loginOutcome: tt.outcome})

			st, err := flow.SubmitLogin(context.Background(), validLogin)
			if tt.expectedError != "" {
				var perr *portal.Error
				require.ErrorAs(t, err, &perr)
				require.Equal(t, tt.expectedError, perr.Message)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.expectedView, st.View)
			require.Equal(t, tt.expectedEmail, st.Email)
			require.Equal(t, tt.expectedPhone, st.Phone)
			require.Equal(t, tt.expectedError, st.Error)
		})
	}
}

func TestLoginFlow_SubmitLoginInvalidForm(t *testing.T) {
	fake := &fakeAuthenticator{}
	flow := newFlow(fake)

	_, err := flow.SubmitLogin(context.Background(), portal.LoginForm{Email: "nope"})
	require.ErrorIs(t, err, interrors.ErrInvalidForm)
	require.Equal(t, portal.ViewLogin, flow.State().View)
}

func TestLoginFlow_SubmitLoginError(t *testing.T) {
	flow := newFlow(&fakeAuthenticator{
		loginErr: &auth.Error{Op: "login", Message: "Unauthorized. Please login again."},
	})

	st, err := flow.SubmitLogin(context.Background(), validLogin)
	require.Error(t, err)
	require.Equal(t, "Unauthorized. Please login again.", st.Error)

	var aerr *auth.Error
	require.ErrorAs(t, err, &aerr)
}

func TestLoginFlow_PhoneThenOTP(t *testing.T) {
	fake := &fakeAuthenticator{
		loginOutcome:  mfaOutcome(false, "(555) 123-4567"),
		verifyOutcome: auth.LoginOutcome{Kind: auth.OutcomeSuccess},
	}
	flow := newFlow(fake)
	ctx := context.Background()

	_, err := flow.SubmitLogin(ctx, validLogin)
	require.NoError(t, err)
	require.Equal(t, "5551234567", flow.PhoneDefault())

	_, err = flow.SubmitOTP(ctx, portal.OTPForm{OTP: "123456"})
	require.ErrorIs(t, err, interrors.ErrWrongView)

	st, err := flow.SubmitPhone(ctx, portal.PhoneForm{Phone: "5559876543"})
	require.NoError(t, err)
	require.Equal(t, portal.ViewOTPVerify, st.View)
	require.Equal(t, "5559876543", st.Phone)
	require.Equal(t, []string{"5559876543"}, fake.phones)

	st, err = flow.SubmitOTP(ctx, portal.OTPForm{OTP: "123456", RememberMe: true})
	require.NoError(t, err)
	require.Equal(t, portal.ViewDone, st.View)
	require.Equal(t, []auth.OTPRequest{{Code: "123456", RememberMe: true}}, fake.otps)
}

func TestLoginFlow_SubmitPhoneError(t *testing.T) {
	fake := &fakeAuthenticator{
		loginOutcome: mfaOutcome(false, ""),
		registerErr:  &auth.MFAError{Message: "Invalid phone number", Err: interrors.ErrMFARequestFailed},
	}
	flow := newFlow(fake)
	ctx := context.Background()

	_, err := flow.SubmitLogin(ctx, validLogin)
	require.NoError(t, err)

	st, err := flow.SubmitPhone(ctx, portal.PhoneForm{Phone: "5551234567"})
	require.ErrorIs(t, err, interrors.ErrMFARequestFailed)
	require.Equal(t, portal.ViewPhoneRegister, st.View)
	require.Equal(t, "Invalid phone number", st.Error)
}

func TestLoginFlow_SubmitOTPFailure(t *testing.T) {
	fake := &fakeAuthenticator{
		loginOutcome: mfaOutcome(true, "5551234567"),
		verifyErr:    &auth.MFAError{Message: "Invalid verification code.", Err: interrors.ErrInvalidVerificationCode},
	}
	flow := newFlow(fake)
	ctx := context.Background()

	_, err := flow.SubmitLogin(ctx, validLogin)
	require.NoError(t, err)

	st, err := flow.SubmitOTP(ctx, portal.OTPForm{OTP: "000000"})
	require.ErrorIs(t, err, interrors.ErrInvalidVerificationCode)
	require.Equal(t, portal.ViewOTPVerify, st.View)
	require.Equal(t, "Invalid verification code.", st.Error)
}

func TestLoginFlow_RequestNewOTP(t *testing.T) {
	fake := &fakeAuthenticator{loginOutcome: mfaOutcome(true, "(555) 123-4567")}
	flow := newFlow(fake)
	ctx := context.Background()

	_, err := flow.SubmitLogin(ctx, validLogin)
	require.NoError(t, err)

	st, err := flow.RequestNewOTP(ctx)
	require.NoError(t, err)
	require.Equal(t, "New verification code has been sent to (555) 123-4567", st.Success)
	require.Equal(t, portal.ResendCooldownSeconds, st.CooldownRemaining)
	require.Equal(t, []string{"5551234567"}, fake.phones)

	_, err = flow.RequestNewOTP(ctx)
	require.ErrorIs(t, err, interrors.ErrResendCooldown)
	require.Len(t, fake.phones, 1)

	st = flow.Cancel()
	require.Equal(t, portal.ViewLogin, st.View)
	require.Empty(t, st.Email)
	require.Empty(t, st.Phone)
	require.Zero(t, st.CooldownRemaining)
}

func TestLoginFlow_RequestNewOTPFailureAllowsRetry(t *testing.T) {
	fake := &fakeAuthenticator{
		loginOutcome: mfaOutcome(true, "5551234567"),
		registerErr:  &auth.Error{Op: "register_phone_mfa", Message: "Server error. Please try again later."},
	}
	flow := newFlow(fake)
	ctx := context.Background()

	_, err := flow.SubmitLogin(ctx, validLogin)
	require.NoError(t, err)

	st, err := flow.RequestNewOTP(ctx)
	require.Error(t, err)
	require.Equal(t, "Server error. Please try again later.", st.Error)
	require.Zero(t, st.CooldownRemaining)

	fake.registerErr = nil
	st, err = flow.RequestNewOTP(ctx)
	require.NoError(t, err)
	require.Empty(t, st.Error)
}

func TestLoginFlow_Busy(t *testing.T) {
	fake := &fakeAuthenticator{
		loginOutcome: auth.LoginOutcome{Kind: auth.OutcomeSuccess},
		started:      make(chan struct{}),
		block:        make(chan struct{}),
	}
	flow := newFlow(fake)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := flow.SubmitLogin(ctx, validLogin)
		done <- err
	}()

	<-fake.started
	_, err := flow.SubmitLogin(ctx, validLogin)
	require.ErrorIs(t, err, interrors.ErrBusy)

	close(fake.block)
	require.NoError(t, <-done)
	require.Equal(t, portal.ViewDone, flow.State().View)
}
