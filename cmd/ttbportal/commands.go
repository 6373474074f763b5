package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/ttb-portal/internal/config"
	"github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/jrsteele09/ttb-portal/internal/utils"
	"github.com/jrsteele09/ttb-portal/portal"
	"github.com/rs/zerolog/log"
)

// cmdLogin walks the login flow until the session is authenticated or the input ends.
func cmdLogin(ctx context.Context, a *app) error {
	if a.service.IsAuthenticated() {
		a.printf("Already logged in as %s.\n", portal.NewDashboard(a.service.State()).Greeting)
		return nil
	}

	flow := portal.NewLoginFlow(a.service)
	defer flow.Cooldown().Stop()

	autoLogin := a.config.GetSkipLoginInDev()
	autoPhone := a.config.GetSkipPhoneRegisterInDev()

	for {
		st := flow.State()
		var err error

		switch st.View {
		case portal.ViewLogin:
			var form portal.LoginForm
			if autoLogin {
				autoLogin = false
				log.Info().Msg("skipping login prompt, using development credentials")
				form = portal.LoginForm{Email: a.config.GetDevEmail(), Password: a.config.GetDevPassword()}
			} else if form, err = a.promptLogin(); err != nil {
				return err
			}
			st, err = flow.SubmitLogin(ctx, form)

		case portal.ViewPhoneRegister:
			var form portal.PhoneForm
			if autoPhone {
				autoPhone = false
				log.Info().Msg("skipping phone registration, using development phone")
				form = portal.PhoneForm{Phone: config.DefaultDevPhone}
			} else {
				a.printf("\nMulti-factor authentication is required for %s.\n", st.Email)
				phone, perr := a.prompt(fmt.Sprintf("Mobile phone (10 digits) [%s], or 'cancel': ", flow.PhoneDefault()))
				if perr != nil {
					return perr
				}
				if phone == "cancel" {
					flow.Cancel()
					continue
				}
				form = portal.PhoneForm{Phone: firstNonEmpty(phone, flow.PhoneDefault())}
			}
			st, err = flow.SubmitPhone(ctx, form)

		case portal.ViewOTPVerify:
			target := "your phone"
			if st.Phone != "" {
				target = utils.FormatPhone(st.Phone)
			}
			a.printf("\nA verification code was sent to %s.\n", target)
			code, perr := a.prompt("Verification code, 'resend' or 'cancel': ")
			if perr != nil {
				return perr
			}
			switch code {
			case "cancel":
				flow.Cancel()
				continue
			case "resend":
				st, err = flow.RequestNewOTP(ctx)
				if errors.Is(err, errors.ErrResendCooldown) {
					a.printf("You can request a new code in %ds.\n", flow.Cooldown().Remaining())
					continue
				}
			default:
				st, err = flow.SubmitOTP(ctx, portal.OTPForm{OTP: code, RememberMe: a.remember})
			}

		case portal.ViewDone:
			d := portal.NewDashboard(a.service.State())
			a.printf("\nLogin successful. Welcome, %s!\n", d.Greeting)
			return nil
		}

		if st.Success != "" {
			a.printf("%s\n", st.Success)
		}
		if err != nil {
			a.reportError(err)
		}
	}
}

func (a *app) promptLogin() (portal.LoginForm, error) {
	email, err := a.prompt("Email: ")
	if err != nil {
		return portal.LoginForm{}, err
	}
	password, err := a.promptSecret("Password: ")
	if err != nil {
		return portal.LoginForm{}, err
	}
	return portal.LoginForm{Email: email, Password: password}, nil
}

func (a *app) reportError(err error) {
	var fe portal.FieldErrors
	if errors.As(err, &fe) {
		for _, msg := range strings.Split(fe.Error(), "; ") {
			a.printf("  - %s\n", msg)
		}
		return
	}
	log.Debug().Err(err).Msg("login step failed")
	a.printf("%s\n", err.Error())
}

func cmdStatus(_ context.Context, a *app) error {
	if !a.service.IsAuthenticated() {
		a.printf("Not logged in.\n")
		return nil
	}

	d := portal.NewDashboard(a.service.State())
	a.printf("Logged in as %s.\n", d.Greeting)
	if d.HasToken && !d.Token.ExpiresAt.IsZero() {
		state := "expires"
		if d.Token.Expired(time.Now()) {
			state = "expired"
		}
		a.printf("Session %s %s.\n", state, d.Token.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func cmdProfile(_ context.Context, a *app) error {
	if !a.service.IsAuthenticated() {
		return errors.Wrapf(errors.ErrNotAuthorized, "run 'ttbportal login' first")
	}

	d := portal.NewDashboard(a.service.State())
	a.printf("Welcome back, %s!\n", d.Greeting)
	for _, section := range d.Sections {
		a.printf("\n%s\n", section.Title)
		for _, f := range section.Fields {
			a.printf("  %-14s %s\n", f.Label+":", f.Value)
		}
	}
	if len(d.Phones) > 0 {
		a.printf("\nPhones\n")
		for _, p := range d.Phones {
			a.printf("  %s\n", p)
		}
	}
	if len(d.Emails) > 0 {
		a.printf("\nEmails\n")
		for _, e := range d.Emails {
			a.printf("  %s\n", e)
		}
	}
	return nil
}

func cmdLogout(ctx context.Context, a *app) error {
	if err := a.service.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.printf("Logged out.\n")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
