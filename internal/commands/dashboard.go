package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/session"
	"tasktrack/internal/taskstore"
)

// notLoggedIn is printed whenever the gate sends the user to login.
const notLoggedIn = "error: not logged in (run: tasktrack login)"

// loginNavigator reports a redirect to login on w.
func loginNavigator(w io.Writer) session.Navigator {
	return session.NavigatorFunc(func(error) {
		fmt.Fprintln(w, notLoggedIn)
	})
}

// openStore resolves the session and builds a task store for it.
// When load is set the store is filled from the backend.
// On failure the message is already printed and the exit code returned.
func openStore(ctx context.Context, cfg *config.Config, svc service.Service, load bool, errOut io.Writer) (*taskstore.Store, int) {
	var identity service.Identity
	if svc != nil {
		identity = svc
	}
	gate := session.NewGate(identity, loginNavigator(errOut))

	sess, err := gate.Resolve(ctx)
	if err != nil {
		// The navigator has already explained an unauthenticated result.
		if !errors.Is(err, service.ErrUnauthenticated) {
			report(errOut, err)
		}
		return nil, exitcode.For(err)
	}

	store := taskstore.New(sess, svc, taskstore.LogReporter{Logger: cfg.Logger(errOut)})
	if load {
		if err := store.Load(ctx); err != nil {
			return nil, report(errOut, err)
		}
	}
	return store, exitcode.Success
}

// report prints err and returns its exit code.
func report(w io.Writer, err error) int {
	code := exitcode.For(err)
	switch code {
	case exitcode.Unavailable:
		fmt.Fprintf(w, "notice: %v\n", err)
	case exitcode.AuthError:
		fmt.Fprintf(w, "error: auth error: %v\n", err)
	default:
		fmt.Fprintf(w, "error: backend error: %v\n", err)
	}
	return code
}
