package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/ttb-portal/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
)

// Client issues JSON requests against the portal API. Requests carry a bearer token whenever the
// token source yields one.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is wrapped so bearer tokens
// are still attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func New(baseURL string, tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.http
	hc.Transport = &bearerTransport{source: tokens, base: base}
	c.http = &hc
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, endpoint string) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, nil)
}

// Post sends body as JSON. Query parameters with empty values are dropped.
func (c *Client) Post(ctx context.Context, endpoint string, body any, query map[string]string) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, query)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, nil)
}

func (c *Client) Delete(ctx context.Context, endpoint string) (map[string]any, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) buildURL(endpoint string, query map[string]string) string {
	u := c.baseURL + endpoint
	if len(query) == 0 {
		return u
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		if query[k] != "" {
			values.Add(k, query[k])
		}
	}
	if qs := values.Encode(); qs != "" {
		u += "?" + qs
	}
	return u
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, query map[string]string) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[Client] encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(endpoint, query), reader)
	if err != nil {
		return nil, fmt.Errorf("[Client] http.NewRequest: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(requestIDHeader, requestID)

	logger := log.With().Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Logger()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("request failed")
		return nil, &Error{Message: StatusMessage(0), Status: 0, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: StatusMessage(0), Status: 0, Err: err}
	}
	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, respBody)
	}

	decoded, err := DecodeObject(respBody)
	if err != nil {
		return nil, &Error{Message: msgInvalidResponse, Status: resp.StatusCode, Err: fmt.Errorf("%w: %w", errors.ErrInvalidResponse, err)}
	}
	return decoded, nil
}

// DecodeObject decodes a JSON object keeping numbers as json.Number so values round-trip without
// precision loss.
func DecodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("decode response: not a JSON object")
	}
	return out, nil
}

// bearerTransport sets the Authorization header from the token source when a usable token exists.
type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.source == nil {
		return t.base.RoundTrip(req)
	}
	tok, err := t.source.Token()
	if err != nil {
		return nil, fmt.Errorf("[bearerTransport] token source: %w", err)
	}
	if !tok.Valid() {
		return t.base.RoundTrip(req)
	}
	req2 := req.Clone(req.Context())
	tok.SetAuthHeader(req2)
	return t.base.RoundTrip(req2)
}
