package config

const (
	skipLoginVar         = "SKIP_LOGIN_IN_DEV"
	skipPhoneRegisterVar = "SKIP_PHONE_REGISTER_IN_DEV"
	disableMFAVar        = "DISABLE_MFA_IN_DEV"
	devEmailVar          = "TTB_DEV_EMAIL"
	devPasswordVar       = "TTB_DEV_PASSWORD"

	// DefaultDevPhone is registered when phone registration is skipped.
	DefaultDevPhone = "1234567890"
)

// DevConfig holds development shortcuts. All of them are off unless explicitly enabled and the
// environment is DEV.
type DevConfig interface {
	GetSkipLoginInDev() bool
	GetSkipPhoneRegisterInDev() bool
	GetDisableMFAInDev() bool
	GetDevEmail() string
	GetDevPassword() string
}

type Dev struct{}

var _ DevConfig = Dev{}

func isDev() bool {
	return EnvVars{}.GetEnv() == "DEV"
}

func (Dev) GetSkipLoginInDev() bool {
	return isDev() && GetEnvBool(skipLoginVar, false)
}

func (Dev) GetSkipPhoneRegisterInDev() bool {
	return isDev() && GetEnvBool(skipPhoneRegisterVar, false)
}

func (Dev) GetDisableMFAInDev() bool {
	return isDev() && GetEnvBool(disableMFAVar, false)
}

func (Dev) GetDevEmail() string {
	return GetEnv(devEmailVar, "")
}

func (Dev) GetDevPassword() string {
	return GetEnv(devPasswordVar, "")
}
