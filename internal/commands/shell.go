package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
	"tasktrack/internal/service"
	"tasktrack/internal/session"
	"tasktrack/internal/taskstore"
	"tasktrack/internal/view"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the interactive dashboard. One session and one
// task store live for the whole shell.
type ShellCmd struct{}

func (c *ShellCmd) Name() string       { return "shell" }
func (c *ShellCmd) Aliases() []string  { return []string{"dashboard"} }
func (c *ShellCmd) Synopsis() string   { return "Interactive dashboard" }
func (c *ShellCmd) Usage() string      { return "tasktrack shell" }
func (c *ShellCmd) NeedsService() bool { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

// dashboard is the state of one shell session.
type dashboard struct {
	cfg     *config.Config
	svc     service.Service
	gate    *session.Gate
	store   *taskstore.Store
	filter  view.Filter
	printer *output.Printer
	out     io.Writer
	errOut  io.Writer
}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	store, code := openStore(ctx, cfg, svc, true, errOut)
	if store == nil {
		return code
	}

	d := &dashboard{
		cfg:     cfg,
		svc:     svc,
		gate:    session.NewGate(svc, loginNavigator(errOut)),
		store:   store,
		printer: output.NewPrinter(out),
		out:     out,
		errOut:  errOut,
	}
	d.show()

	scanner := bufio.NewScanner(cfg.Input())
	for {
		if !cfg.Quiet {
			fmt.Fprint(errOut, "> ")
		}
		if !scanner.Scan() {
			break
		}
		done, code := d.exec(ctx, scanner.Text())
		if done {
			return code
		}
		if ctx.Err() != nil {
			return exitcode.UserError
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// exec runs one shell line. done reports whether the shell should exit.
func (d *dashboard) exec(ctx context.Context, line string) (done bool, code int) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, exitcode.Success
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true, exitcode.Success

	case "help", "?":
		fmt.Fprint(d.out, shellHelp)

	case "list", "ls":
		d.show()

	case "filter", "f":
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		filter, err := view.ParseFilter(name)
		if err != nil {
			fmt.Fprintf(d.errOut, "error: %v\n", err)
			return false, exitcode.Success
		}
		d.filter = filter
		d.show()

	case "add", "a":
		title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))
		if title == "" {
			fmt.Fprintln(d.errOut, "error: title required")
			return false, exitcode.Success
		}
		d.store.SetDraft(title)
		if err := d.store.Submit(ctx); err != nil {
			return d.failed(ctx, err)
		}
		d.show()

	case "toggle", "done", "t":
		return d.onTask(ctx, args, d.store.Toggle)

	case "rm", "delete", "d":
		return d.onTask(ctx, args, d.store.Delete)

	case "reload", "r":
		if err := d.store.Load(ctx); err != nil {
			return d.failed(ctx, err)
		}
		d.show()

	case "logout":
		d.store.End()
		return true, signOut(ctx, d.cfg, d.svc, d.out, d.errOut)

	default:
		fmt.Fprintf(d.errOut, "error: unknown command: %s (try: help)\n", cmd)
	}
	return false, exitcode.Success
}

// onTask applies action to row n of the current view.
func (d *dashboard) onTask(ctx context.Context, args []string, action func(context.Context, string) error) (bool, int) {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(d.errOut, "error: %v\n", err)
		return false, exitcode.Success
	}
	task, err := findTaskByNumber(d.store.Tasks(), d.filter, num)
	if err != nil {
		fmt.Fprintf(d.errOut, "error: %v\n", err)
		return false, exitcode.Success
	}
	if err := action(ctx, task.ID); err != nil {
		return d.failed(ctx, err)
	}
	d.show()
	return false, exitcode.Success
}

// failed reports err and leaves the list as it was. An unauthenticated
// failure asks the gate again; if the session is gone the gate sends the
// user to login and the shell ends.
func (d *dashboard) failed(ctx context.Context, err error) (bool, int) {
	report(d.errOut, err)
	if !errors.Is(err, service.ErrUnauthenticated) {
		return false, exitcode.Success
	}
	if _, err := d.gate.Resolve(ctx); err != nil {
		d.store.End()
		return true, exitcode.For(err)
	}
	return false, exitcode.Success
}

func (d *dashboard) show() {
	printView(d.cfg, d.printer, d.store.Tasks(), d.filter)
}

const shellHelp = `Commands:
  add <title...>       Create a task
  toggle <n>           Flip task n between pending and completed
  rm <n>               Delete task n
  filter [f]           Show all, pending or completed tasks
  list                 Show the current view
  reload               Fetch the list again
  logout               Sign out and leave the shell
  quit                 Leave the shell
`
