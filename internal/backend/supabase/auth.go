package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"tasktrack/internal/service"
)

// Auth implements service.Identity using the GoTrue API.
// The session is kept as an oauth2.Token and persisted to TokenPath.
type Auth struct {
	opts Options
	http *http.Client

	mu  sync.Mutex
	src oauth2.TokenSource
}

// NewAuth creates the identity half of the client.
func NewAuth(opts Options) *Auth {
	opts = opts.withDefaults()
	return &Auth{opts: opts, http: keyedClient(opts)}
}

type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user"`
}

func (r sessionResponse) token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
	}
	switch {
	case r.ExpiresAt > 0:
		tok.Expiry = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return tok
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// URL returns the project URL.
func (a *Auth) URL() string {
	return a.opts.URL
}

func (a *Auth) endpoint(path string) string {
	return a.opts.URL + "/auth/v1" + path
}

// CurrentUser returns the signed-in user, or nil if no session is stored.
func (a *Auth) CurrentUser(ctx context.Context) (*service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	client, err := a.Client(ctx)
	if errors.Is(err, service.ErrUnauthenticated) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user userResponse
	if err := do(ctx, client, a.opts.Logger, http.MethodGet, a.endpoint("/user"), nil, nil, &user); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.ID == "" {
		return nil, nil
	}
	return &service.User{ID: user.ID, Email: user.Email}, nil
}

// SignInWithCredentials exchanges email and password for a session.
func (a *Auth) SignInWithCredentials(ctx context.Context, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	var resp sessionResponse
	body := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := do(ctx, a.http, a.opts.Logger, http.MethodPost, a.endpoint("/token?grant_type=password"), nil, body, &resp); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("sign in: no session returned")
	}
	return a.setToken(resp.token())
}

// SignUp registers an account. When the project confirms email
// addresses no session is returned and the user must sign in later.
func (a *Auth) SignUp(ctx context.Context, email, password string) error {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	var resp sessionResponse
	body := credentials{Email: strings.TrimSpace(email), Password: password}
	if err := do(ctx, a.http, a.opts.Logger, http.MethodPost, a.endpoint("/signup"), nil, body, &resp); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	if resp.AccessToken == "" {
		return nil
	}
	return a.setToken(resp.token())
}

// SignOut revokes the session remotely and forgets it locally.
// An already expired session counts as signed out.
func (a *Auth) SignOut(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	client, err := a.Client(ctx)
	if err == nil {
		err = do(ctx, client, a.opts.Logger, http.MethodPost, a.endpoint("/logout"), nil, nil, nil)
	}
	if err != nil && !errors.Is(err, service.ErrUnauthenticated) {
		return fmt.Errorf("sign out: %w", err)
	}
	return a.clearToken()
}

// Client returns an HTTP client that authorizes requests with the
// session's access token, refreshing it when it expires.
func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	src, err := a.tokenSource()
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, a.http), src), nil
}

func (a *Auth) tokenSource() (oauth2.TokenSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.src != nil {
		return a.src, nil
	}
	tok, err := loadToken(a.opts.TokenPath)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, service.ErrUnauthenticated
	}
	a.src = a.newSource(tok)
	return a.src, nil
}

func (a *Auth) newSource(tok *oauth2.Token) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(tok, &refresher{auth: a, refreshToken: tok.RefreshToken})
}

func (a *Auth) setToken(tok *oauth2.Token) error {
	a.mu.Lock()
	a.src = a.newSource(tok)
	a.mu.Unlock()
	return saveToken(a.opts.TokenPath, tok)
}

func (a *Auth) clearToken() error {
	a.mu.Lock()
	a.src = nil
	a.mu.Unlock()
	if a.opts.TokenPath == "" {
		return nil
	}
	if err := os.Remove(a.opts.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// refresher exchanges a refresh token for a new session.
type refresher struct {
	auth *Auth

	mu           sync.Mutex
	refreshToken string
}

func (r *refresher) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refreshToken == "" {
		return nil, fmt.Errorf("%w: session expired", service.ErrUnauthenticated)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.auth.opts.Timeout)
	defer cancel()

	var resp sessionResponse
	body := map[string]string{"refresh_token": r.refreshToken}
	if err := do(ctx, r.auth.http, r.auth.opts.Logger, http.MethodPost, r.auth.endpoint("/token?grant_type=refresh_token"), nil, body, &resp); err != nil {
		return nil, fmt.Errorf("%w: refresh session: %v", service.ErrUnauthenticated, err)
	}
	tok := resp.token()
	if tok.RefreshToken != "" {
		r.refreshToken = tok.RefreshToken
	}
	if err := saveToken(r.auth.opts.TokenPath, tok); err != nil {
		r.auth.opts.Logger.Warn("failed to persist refreshed session", "err", err)
	}
	return tok, nil
}

// loadToken reads a stored token. A missing file means no session.
func loadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, nil
	}
	return &tok, nil
}

// saveToken saves a token to a file with mode 0600.
func saveToken(path string, tok *oauth2.Token) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
