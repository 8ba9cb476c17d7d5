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
	"tasktrack/internal/taskstore"
	"tasktrack/internal/view"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct {
	filter string
}

// SetFilter sets the filter name (for testing).
func (c *ToggleCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Flip a task between pending and completed" }
func (c *ToggleCmd) Usage() string      { return "tasktrack toggle [--filter <f>] <n>" }
func (c *ToggleCmd) NeedsService() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, cfg, svc, c.filter, args, out, errOut, (*taskstore.Store).Toggle)
}

// taskAction mutates one task in the store.
type taskAction func(store *taskstore.Store, ctx context.Context, id string) error

// runOnTask resolves row n of the filtered view and applies action to it.
// It is shared by toggle and rm.
func runOnTask(ctx context.Context, cfg *config.Config, svc service.Service, filterName string, args []string, out, errOut io.Writer, action taskAction) int {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	filter, err := view.ParseFilter(filterName)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	store, code := openStore(ctx, cfg, svc, true, errOut)
	if store == nil {
		return code
	}

	task, err := findTaskByNumber(store.Tasks(), filter, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := action(store, ctx, task.ID); err != nil {
		if errors.Is(err, taskstore.ErrUnknownTask) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
