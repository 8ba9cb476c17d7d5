package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
	"tasktrack/internal/service"
	"tasktrack/internal/session"
)

func init() {
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return []string{"signout"} }
func (c *LogoutCmd) Synopsis() string   { return "Sign out and forget the session" }
func (c *LogoutCmd) Usage() string      { return "tasktrack logout" }
func (c *LogoutCmd) NeedsService() bool { return true }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if svc == nil {
		return report(errOut, service.ErrServiceUnavailable)
	}

	if user, err := svc.CurrentUser(ctx); err == nil && user == nil {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	return signOut(ctx, cfg, svc, out, errOut)
}

// signOut ends the session through the gate.
func signOut(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	gate := session.NewGate(svc, session.NavigatorFunc(func(error) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "signed out")
		}
	}))
	if err := gate.SignOut(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.For(err)
	}
	return exitcode.Success
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return nil }
func (c *WhoamiCmd) Synopsis() string   { return "Show the signed-in account" }
func (c *WhoamiCmd) Usage() string      { return "tasktrack whoami" }
func (c *WhoamiCmd) NeedsService() bool { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	store, code := openStore(ctx, cfg, svc, false, errOut)
	if store == nil {
		return code
	}
	output.NewPrinter(out).User(store.Session())
	return exitcode.Success
}
