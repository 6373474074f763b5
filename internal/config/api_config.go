package config

import "time"

const (
	apiBaseURLVar = "API_BASE_URL"
	apiTimeoutVar = "API_TIMEOUT"

	defaultAPIBaseURL = "https://demo.api.titletoolbox.com/webservices"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetLoginEndpoint() string
	GetSendMFAOTPEndpoint() string
	GetVerifyMFAOTPEndpoint() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, defaultAPIBaseURL)
}

func (API) GetAPITimeout() time.Duration {
	return getEnvDuration(apiTimeoutVar, 30*time.Second)
}

func (API) GetLoginEndpoint() string {
	return "/login.json"
}

func (API) GetSendMFAOTPEndpoint() string {
	return "/send_mfa_otp.json"
}

func (API) GetVerifyMFAOTPEndpoint() string {
	return "/verify_mfa_otp.json"
}
