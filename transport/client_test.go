package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	interrors "github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/jrsteele09/ttb-portal/transport"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type capturedRequest struct {
	Method    string
	Path      string
	Query     string
	Auth      string
	Content   string
	RequestID string
	Body      map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Query = r.URL.RawQuery
		captured.Auth = r.Header.Get("Authorization")
		captured.Content = r.Header.Get("Content-Type")
		captured.RequestID = r.Header.Get("X-Request-ID")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestClient_Post(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"status":"OK","count":12345678901234567890}`)

	t.Run("without token", func(t *testing.T) {
		c := transport.New(srv.URL+"/webservices", oauth2.StaticTokenSource(&oauth2.Token{}))
		resp, err := c.Post(context.Background(), "/login.json", map[string]any{"a": "b"}, nil)
		require.NoError(t, err)
		require.Equal(t, "OK", resp["status"])
		require.Equal(t, json.Number("12345678901234567890"), resp["count"])

		require.Equal(t, http.MethodPost, captured.Method)
		require.Equal(t, "/webservices/login.json", captured.Path)
		require.Empty(t, captured.Auth)
		require.Equal(t, "application/json", captured.Content)
		require.NotEmpty(t, captured.RequestID)
		require.Equal(t, "b", captured.Body["a"])
	})

	t.Run("with token and query", func(t *testing.T) {
		c := transport.New(srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"}))
		_, err := c.Post(context.Background(), "/send_mfa_otp.json", map[string]string{"phone": "5551234567"},
			map[string]string{"TTBSID": "abc", "empty": ""})
		require.NoError(t, err)
		require.Equal(t, "Bearer abc", captured.Auth)
		require.Equal(t, "TTBSID=abc", captured.Query)
	})

	t.Run("nil token source", func(t *testing.T) {
		c := transport.New(srv.URL, nil)
		_, err := c.Get(context.Background(), "/ping")
		require.NoError(t, err)
		require.Equal(t, http.MethodGet, captured.Method)
		require.Empty(t, captured.Auth)
	})
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"unauthorized", http.StatusUnauthorized, ``, "Unauthorized. Please login again."},
		{"forbidden", http.StatusForbidden, `{}`, "Access forbidden."},
		{"not found", http.StatusNotFound, `<html></html>`, "Resource not found."},
		{"server error", http.StatusInternalServerError, ``, "Server error. Please try again later."},
		{"other", http.StatusTeapot, ``, "Error: 418 I'm a teapot"},
		{"server message wins", http.StatusBadRequest, `{"message":"Bad phone"}`, "Bad phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)
			c := transport.New(srv.URL, nil)
			_, err := c.Post(context.Background(), "/x", nil, nil)
			require.Error(t, err)

			var terr *transport.Error
			require.ErrorAs(t, err, &terr)
			require.Equal(t, tt.status, terr.Status)
			require.Equal(t, tt.expected, terr.Message)
		})
	}
}

func TestClient_FieldErrors(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnprocessableEntity, `{"errors":{"phone":["too short","not numeric"],"otp":"required"}}`)
	c := transport.New(srv.URL, nil)
	_, err := c.Post(context.Background(), "/x", nil, nil)

	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, []string{"too short", "not numeric"}, terr.Errors["phone"])
	require.Equal(t, []string{"required"}, terr.Errors["otp"])
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := transport.New(url, nil)
	_, err := c.Post(context.Background(), "/login.json", nil, nil)

	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, 0, terr.Status)
	require.Equal(t, "Unable to connect to server. Please check your internet connection.", terr.Message)
	require.NotNil(t, terr.Unwrap())
}

func TestClient_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[1,2,3]`)
	c := transport.New(srv.URL, nil)
	_, err := c.Get(context.Background(), "/x")

	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "Invalid response from server.", terr.Message)
	require.ErrorIs(t, err, interrors.ErrInvalidResponse)
}
