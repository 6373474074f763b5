package mockapi

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTPs are TOTP codes derived from the user's secret. They are logged instead of texted.
type OTPs struct {
	opts totp.ValidateOpts
}

func NewOTPs(period uint) *OTPs {
	return &OTPs{
		opts: totp.ValidateOpts{
			Period:    period,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		},
	}
}

func (o *OTPs) Code(user *User, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(user.OTPSecret, at, o.opts)
}

func (o *OTPs) Validate(user *User, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, user.OTPSecret, at, o.opts)
	return err == nil && ok
}
