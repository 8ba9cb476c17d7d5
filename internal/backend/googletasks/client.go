// Package googletasks implements service.Service using the Google Tasks API.
//
// The account's default task list stands in for the owner: its ID is the
// user ID, and every task operation is scoped to that list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasktrack/internal/config"
	"tasktrack/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = tasks.TasksScope

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// ErrBrowserSignIn is returned for password sign-in, which Google accounts
// do not support.
var ErrBrowserSignIn = errors.New("google accounts sign in through the browser (run: tasktrack login)")

// Client implements service.Service using Google Tasks API.
type Client struct {
	mu        sync.Mutex
	svc       *tasks.Service
	tokenPath string
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Google Tasks client.
// Requires oauth_client.json; without token.json the client is signed out.
// A nil logger discards.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, service.Unavailable(config.OAuthClientFile)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %v", service.ErrServiceUnavailable, err)
	}

	c := &Client{tokenPath: cfg.TokenPath(), timeout: cfg.Settings.Timeout, logger: orDiscard(logger)}
	if c.timeout <= 0 {
		c.timeout = APITimeout
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	c.svc = svc
	return c, nil
}

// NewWithHTTPClient creates a signed-in client with a custom HTTP client
// and endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string, logger *slog.Logger) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc, timeout: APITimeout, logger: orDiscard(logger)}, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

func (c *Client) service() (*tasks.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc == nil {
		return nil, service.ErrUnauthenticated
	}
	return c.svc, nil
}

// CurrentUser resolves the account through its default task list.
func (c *Client) CurrentUser(ctx context.Context) (*service.User, error) {
	svc, err := c.service()
	if errors.Is(err, service.ErrUnauthenticated) {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	return &service.User{ID: list.Id}, nil
}

// SignOut forgets the stored token.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.svc = nil
	c.mu.Unlock()
	if c.tokenPath == "" {
		return nil
	}
	if err := os.Remove(c.tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// SignInWithCredentials is not supported by Google accounts.
func (c *Client) SignInWithCredentials(ctx context.Context, email, password string) error {
	return ErrBrowserSignIn
}

// SignUp is not supported by Google accounts.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return ErrBrowserSignIn
}

// ListByOwner returns every task in the owner's default list, newest first.
func (c *Client) ListByOwner(ctx context.Context, ownerID string) ([]service.Task, error) {
	svc, err := c.service()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.Task
	err = svc.Tasks.List(ownerID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				t, err := toTask(item, ownerID)
				if err != nil {
					c.logger.Warn("skipping malformed task", "id", item.Id, "err", err)
					continue
				}
				result = append(result, t)
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Insert creates a task in the owner's default list.
func (c *Client) Insert(ctx context.Context, title, ownerID string) (service.Task, error) {
	svc, err := c.service()
	if err != nil {
		return service.Task{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	created, err := svc.Tasks.Insert(ownerID, &tasks.Task{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(created, ownerID)
}

// UpdateCompletion marks a task completed or reopens it.
func (c *Client) UpdateCompletion(ctx context.Context, ownerID, id string, completed bool) error {
	svc, err := c.service()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	patch := &tasks.Task{Status: statusNeedsAction, NullFields: []string{"Completed"}}
	if completed {
		patch = &tasks.Task{Status: statusCompleted}
	}
	if _, err := svc.Tasks.Patch(ownerID, id, patch).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteByID deletes a task from the owner's default list.
func (c *Client) DeleteByID(ctx context.Context, ownerID, id string) error {
	svc, err := c.service()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := svc.Tasks.Delete(ownerID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// toTask maps an API task. Google Tasks exposes no creation time, so the
// last-updated time is used as the sort key.
func toTask(t *tasks.Task, ownerID string) (service.Task, error) {
	updated, err := time.Parse(time.RFC3339, t.Updated)
	if err != nil {
		return service.Task{}, fmt.Errorf("%w: task %s has invalid updated time %q", service.ErrOperationFailed, t.Id, t.Updated)
	}
	return service.Task{
		ID:          t.Id,
		Title:       t.Title,
		IsCompleted: t.Status == statusCompleted,
		OwnerID:     ownerID,
		CreatedAt:   updated,
	}, nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: tasktrack login)", service.ErrUnauthenticated)
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}

	if strings.Contains(err.Error(), "oauth2: ") {
		return fmt.Errorf("%w: %v", service.ErrUnauthenticated, err)
	}
	return err
}
