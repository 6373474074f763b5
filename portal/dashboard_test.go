package portal_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/ttb-portal/auth"
	"github.com/jrsteele09/ttb-portal/portal"
	"github.com/stretchr/testify/require"
)

func TestNewDashboard(t *testing.T) {
	st := auth.State{
		Authenticated: true,
		Token:         "opaque-token",
		Profile: auth.Profile{
			User: map[string]any{
				"name":     "John Doe",
				"username": "jdoe",
				"email":    "john.doe@example.com",
				"status":   "1",
				"created":  "2024-03-05 14:30:00",
				"user_pic": "https://example.com/jdoe.png",
			},
			Phones: []any{
				map[string]any{"phone": "5551234567"},
				"555-000",
			},
			Emails: []any{map[string]any{"email": "work@example.com"}},
			Office: map[string]any{"office_name": "Main Street", "id": json.Number("7")},
		},
	}

	d := portal.NewDashboard(st)
	require.Equal(t, "John Doe", d.Greeting)
	require.Equal(t, "https://example.com/jdoe.png", d.Picture)
	require.Equal(t, "Active", d.Status)
	require.Equal(t, []string{"(555) 123-4567", "555-000"}, d.Phones)
	require.Equal(t, []string{"work@example.com"}, d.Emails)
	require.False(t, d.HasToken)

	require.Len(t, d.Sections, 2)
	profile := d.Sections[0]
	require.Equal(t, "Profile", profile.Title)
	require.Contains(t, profile.Fields, portal.Field{Label: "Created", Value: "Mar 5, 2024 2:30 PM"})
	require.Contains(t, profile.Fields, portal.Field{Label: "Last Modified", Value: "N/A"})

	office := d.Sections[1]
	require.Equal(t, "Office", office.Title)
	require.Equal(t, []portal.Field{
		{Label: "Id", Value: "7"},
		{Label: "Office Name", Value: "Main Street"},
	}, office.Fields)
}

func TestNewDashboard_Defaults(t *testing.T) {
	d := portal.NewDashboard(auth.State{})
	require.Equal(t, "User", d.Greeting)
	require.Equal(t, "Unknown", d.Status)
	require.Empty(t, d.Phones)
	require.Len(t, d.Sections, 1)
}

func TestNewDashboard_UsernameFallback(t *testing.T) {
	d := portal.NewDashboard(auth.State{
		Token:   "t",
		Profile: auth.Profile{User: map[string]any{"username": "jdoe"}},
	})
	require.Equal(t, "jdoe", d.Greeting)
}

func TestNewDashboard_JWTToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "jdoe",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	d := portal.NewDashboard(auth.State{Authenticated: true, Token: token})
	require.True(t, d.HasToken)
	require.Equal(t, "jdoe", d.Token.Subject)
	require.True(t, exp.Equal(d.Token.ExpiresAt))
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status   any
		expected string
	}{
		{"1", "Active"},
		{"0", "Inactive"},
		{"suspended", "suspended"},
		{nil, "Unknown"},
		{"", "Unknown"},
		{json.Number("1"), "Active"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, portal.StatusText(tt.status))
	}
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "N/A", portal.FormatDate(""))
	require.Equal(t, "Jan 2, 2025 9:05 AM", portal.FormatDate("2025-01-02T09:05:00Z"))
	require.Equal(t, "Jan 2, 2025 12:00 AM", portal.FormatDate("2025-01-02"))
	require.Equal(t, "yesterday", portal.FormatDate("yesterday"))
}
