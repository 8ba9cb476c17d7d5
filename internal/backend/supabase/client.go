// Package supabase implements service.Service against a Supabase project:
// GoTrue for identity and PostgREST for the task table.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tasktrack/internal/service"
)

const (
	// DefaultTable is the task table name.
	DefaultTable = "tasks"

	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second
)

// Options configure a Client.
type Options struct {
	URL       string
	APIKey    string
	Table     string
	TokenPath string
	Timeout   time.Duration

	// HTTPClient is the base client; nil means http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements service.Service using Supabase.
type Client struct {
	*Auth
	*Rest
}

// New creates a Supabase client. A missing URL or API key yields
// ErrServiceUnavailable rather than a half-built client.
func New(opts Options) (*Client, error) {
	var missing []string
	if opts.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if opts.APIKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return nil, service.Unavailable(missing...)
	}
	auth := NewAuth(opts)
	return &Client{Auth: auth, Rest: NewRest(opts, auth)}, nil
}

func (o Options) withDefaults() Options {
	o.URL = strings.TrimRight(o.URL, "/")
	if o.Table == "" {
		o.Table = DefaultTable
	}
	if o.Timeout <= 0 {
		o.Timeout = APITimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// apiKeyTransport adds the project API key to every request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("apikey", t.key)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// keyedClient wraps the base client so every request carries the API key.
func keyedClient(opts Options) *http.Client {
	return &http.Client{
		Transport: &apiKeyTransport{key: opts.APIKey, base: opts.HTTPClient.Transport},
		Timeout:   opts.HTTPClient.Timeout,
	}
}

// apiError is the error body returned by GoTrue and PostgREST.
type apiError struct {
	Status           int    `json:"-"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Code             any    `json:"code"`
}

func (e *apiError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Msg
	}
	if msg == "" {
		msg = e.ErrorDescription
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%d: %s", e.Status, msg)
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func do(ctx context.Context, client *http.Client, logger *slog.Logger, method, url string, header http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()
	logger.Debug("supabase request", "method", method, "url", url, "status", resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return wrapError(apiErr)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// wrapError maps transport and API failures onto the service taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", service.ErrUnauthenticated, err)
	}
	return err
}
