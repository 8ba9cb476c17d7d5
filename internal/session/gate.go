// Package session resolves the authenticated identity that scopes every
// task operation.
package session

import (
	"context"
	"fmt"

	"tasktrack/internal/service"
)

// Navigator moves the user to the login surface.
type Navigator interface {
	ToLogin(reason error)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason error)

func (f NavigatorFunc) ToLogin(reason error) { f(reason) }

// Gate resolves the current session before any task operation runs.
// It is the only component that navigates to login.
type Gate struct {
	identity  service.Identity
	navigator Navigator
}

// NewGate creates a gate. identity may be nil when the backend could not
// be configured; Resolve then reports ErrServiceUnavailable.
func NewGate(identity service.Identity, navigator Navigator) *Gate {
	if navigator == nil {
		navigator = NavigatorFunc(func(error) {})
	}
	return &Gate{identity: identity, navigator: navigator}
}

// Resolve returns the active session. Any lookup error or a missing user
// sends the user to login and returns ErrUnauthenticated.
func (g *Gate) Resolve(ctx context.Context) (service.Session, error) {
	if g.identity == nil {
		return service.Session{}, service.ErrServiceUnavailable
	}

	user, err := g.identity.CurrentUser(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", service.ErrUnauthenticated, err)
		g.navigator.ToLogin(err)
		return service.Session{}, err
	}
	if user == nil || user.ID == "" {
		g.navigator.ToLogin(service.ErrUnauthenticated)
		return service.Session{}, service.ErrUnauthenticated
	}

	return service.Session{UserID: user.ID, Email: user.Email}, nil
}

// SignOut ends the session and navigates to login.
func (g *Gate) SignOut(ctx context.Context) error {
	if g.identity == nil {
		return service.ErrServiceUnavailable
	}
	if err := g.identity.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	g.navigator.ToLogin(nil)
	return nil
}
