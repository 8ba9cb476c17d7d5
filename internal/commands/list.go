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
	"tasktrack/internal/view"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasktrack` (no args) and `tasktrack list --filter <f>`.
type ListCmd struct {
	filter string
}

// SetFilter sets the filter name (for testing).
func (c *ListCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "tasktrack list [--filter all|pending|completed]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := view.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	store, code := openStore(ctx, cfg, svc, true, errOut)
	if store == nil {
		return code
	}

	printView(cfg, output.NewPrinter(out), store.Tasks(), filter)
	return exitcode.Success
}

// printView prints the tasks in filter's view followed by the totals.
func printView(cfg *config.Config, p *output.Printer, tasks []service.Task, filter view.Filter) {
	rows := view.Project(tasks, filter)
	if filter != view.All {
		p.Header(filter)
	}
	p.Tasks(rows)

	if cfg.Quiet {
		return
	}
	if len(rows) == 0 {
		p.Line("no tasks found")
		return
	}
	p.Footer(view.Count(tasks))
}
