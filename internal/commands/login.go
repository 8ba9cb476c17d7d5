package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&SignupCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email string
}

// SetEmail sets the email address (for testing).
func (c *LoginCmd) SetEmail(email string) {
	c.email = email
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Sign in" }
func (c *LoginCmd) Usage() string      { return "tasktrack login [--email <address>]" }
func (c *LoginCmd) NeedsService() bool { return true }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.Settings.Backend == config.BackendGoogleTasks {
		return browserLogin(ctx, cfg, out, errOut)
	}
	if svc == nil {
		return report(errOut, service.ErrServiceUnavailable)
	}

	if user, err := svc.CurrentUser(ctx); err == nil && user != nil {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	return withCredentials(cfg, c.email, errOut, func(email, password string) int {
		if err := svc.SignInWithCredentials(ctx, email, password); err != nil {
			return authFailed(errOut, "login failed", err)
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	})
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	email string
}

// SetEmail sets the email address (for testing).
func (c *SignupCmd) SetEmail(email string) {
	c.email = email
}

func (c *SignupCmd) Name() string       { return "signup" }
func (c *SignupCmd) Aliases() []string  { return []string{"register"} }
func (c *SignupCmd) Synopsis() string   { return "Create an account" }
func (c *SignupCmd) Usage() string      { return "tasktrack signup [--email <address>]" }
func (c *SignupCmd) NeedsService() bool { return true }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if svc == nil {
		return report(errOut, service.ErrServiceUnavailable)
	}

	return withCredentials(cfg, c.email, errOut, func(email, password string) int {
		if err := svc.SignUp(ctx, email, password); err != nil {
			return authFailed(errOut, "signup failed", err)
		}
		if cfg.Quiet {
			return exitcode.Success
		}
		// Projects that confirm email addresses return no session.
		if user, err := svc.CurrentUser(ctx); err == nil && user != nil {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "check your email to confirm the account, then run: tasktrack login")
		}
		return exitcode.Success
	})
}

// withCredentials prompts for credentials and passes them to fn.
func withCredentials(cfg *config.Config, email string, errOut io.Writer, fn func(email, password string) int) int {
	email, password, err := newPrompter(cfg, errOut).credentials(email)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	return fn(email, password)
}

// authFailed reports a rejected sign-in or sign-up.
func authFailed(errOut io.Writer, what string, err error) int {
	if errors.Is(err, service.ErrServiceUnavailable) {
		return report(errOut, err)
	}
	fmt.Fprintf(errOut, "error: %s: %v\n", what, err)
	return exitcode.AuthError
}
