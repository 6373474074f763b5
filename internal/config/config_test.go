package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/ttb-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, v := range []string{"PORT", "APP_NAME", "ENV", "LOG_LEVEL", "API_BASE_URL", "API_TIMEOUT", "SESSION_STORE", "REDIS_ADDR", "REDIS_SESSION_TTL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "TitleToolbox", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, "https://demo.api.titletoolbox.com/webservices", c.GetAPIBaseURL())
	require.Equal(t, 30*time.Second, c.GetAPITimeout())
	require.Equal(t, "/login.json", c.GetLoginEndpoint())
	require.Equal(t, "/send_mfa_otp.json", c.GetSendMFAOTPEndpoint())
	require.Equal(t, "/verify_mfa_otp.json", c.GetVerifyMFAOTPEndpoint())
	require.Equal(t, config.StoreBackendFile, c.GetStoreBackend())
	require.Equal(t, "localhost:6379", c.GetRedisAddr())
	require.Zero(t, c.GetRedisSessionTTL())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:4200"))
	require.Equal(t, uint(300), c.GetMockOTPPeriod())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("REDIS_SESSION_TTL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("MOCK_API_OTP_PERIOD", "30s")
	c := config.New()

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, 5*time.Second, c.GetAPITimeout())
	require.Equal(t, 24*time.Hour, c.GetRedisSessionTTL())
	require.Equal(t, "https://a.example.com, https://b.example.com", c.GetAllowedOrigins().String())
	require.Equal(t, uint(30), c.GetMockOTPPeriod())

	t.Setenv("API_TIMEOUT", "soon")
	require.Equal(t, 30*time.Second, c.GetAPITimeout())
}

func TestConfig_DevFlags(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		flag     string
		expected bool
	}{
		{name: "enabled in dev", env: "DEV", flag: "true", expected: true},
		{name: "ignored outside dev", env: "PROD", flag: "true", expected: false},
		{name: "disabled", env: "DEV", flag: "false", expected: false},
		{name: "malformed", env: "DEV", flag: "yes please", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			t.Setenv("SKIP_LOGIN_IN_DEV", tt.flag)
			t.Setenv("SKIP_PHONE_REGISTER_IN_DEV", tt.flag)
			t.Setenv("DISABLE_MFA_IN_DEV", tt.flag)
			c := config.New()

			require.Equal(t, tt.expected, c.GetSkipLoginInDev())
			require.Equal(t, tt.expected, c.GetSkipPhoneRegisterInDev())
			require.Equal(t, tt.expected, c.GetDisableMFAInDev())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TTB_DEV_EMAIL=dev@example.com\nTTB_DEV_PASSWORD=from-file\n"), 0o600))

	t.Setenv("TTB_DEV_EMAIL", "")
	t.Setenv("TTB_DEV_PASSWORD", "from-env")
	require.NoError(t, os.Unsetenv("TTB_DEV_EMAIL"))

	config.LoadDotEnv(path)
	c := config.New()
	require.Equal(t, "dev@example.com", c.GetDevEmail())
	require.Equal(t, "from-env", c.GetDevPassword())

	config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
