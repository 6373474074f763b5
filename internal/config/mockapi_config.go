package config

import "time"

const (
	mockSigningKeyVar  = "MOCK_API_SIGNING_KEY"
	mockTokenExpiryVar = "MOCK_API_TOKEN_EXPIRY"
	mockOTPIntervalVar = "MOCK_API_OTP_INTERVAL"
	mockOTPPeriodVar   = "MOCK_API_OTP_PERIOD"
)

// MockAPIConfig configures the local development API.
type MockAPIConfig interface {
	GetMockSigningKey() []byte
	GetMockTokenExpiry() time.Duration
	GetMockOTPSendInterval() time.Duration
	GetMockOTPPeriod() uint
}

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetMockSigningKey() []byte {
	return []byte(GetEnv(mockSigningKeyVar, "ttb-mock-api-signing-key"))
}

func (MockAPI) GetMockTokenExpiry() time.Duration {
	return getEnvDuration(mockTokenExpiryVar, time.Hour)
}

// GetMockOTPSendInterval is the minimum time between two OTP sends for one session.
func (MockAPI) GetMockOTPSendInterval() time.Duration {
	return getEnvDuration(mockOTPIntervalVar, 30*time.Second)
}

// GetMockOTPPeriod is the TOTP step in seconds.
func (MockAPI) GetMockOTPPeriod() uint {
	d := getEnvDuration(mockOTPPeriodVar, 5*time.Minute)
	if d < time.Second {
		return 1
	}
	return uint(d / time.Second)
}

func getEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnv(envVar, defaultValue.String()))
	if err != nil {
		return defaultValue
	}
	return d
}
