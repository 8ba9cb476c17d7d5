package commands

import (
	"context"
	"flag"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/service"
	"tasktrack/internal/taskstore"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	filter string
}

// SetFilter sets the filter name (for testing).
func (c *RmCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "tasktrack rm [--filter <f>] <n>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, cfg, svc, c.filter, args, out, errOut, (*taskstore.Store).Delete)
}
