// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tasktrack/internal/service"
	"tasktrack/internal/view"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	markOpen = "[ ]"
	markDone = "[x]"
)

// Printer writes task lines to w. Styling is applied only when w is a
// terminal; otherwise the output is plain text.
type Printer struct {
	w      io.Writer
	done   lipgloss.Style
	faint  lipgloss.Style
	header lipgloss.Style
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		done:   r.NewStyle().Strikethrough(true).Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
		faint:  r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true),
	}
}

// Task formats a task line.
// Format: "{N:>4}  [x] {TITLE}\n" (4-wide right-aligned number, two spaces, marker, title)
func (p *Printer) Task(num int, task service.Task) {
	title := normalizeTitle(task.Title)
	mark := markOpen
	if task.IsCompleted {
		mark = markDone
		title = p.done.Render(title)
	}
	fmt.Fprintf(p.w, "%4d  %s %s\n", num, mark, title)
}

// Tasks formats each task, numbered from 1.
func (p *Printer) Tasks(tasks []service.Task) {
	for i, task := range tasks {
		p.Task(i+1, task)
	}
}

// Header formats a section header for the given filter.
func (p *Printer) Header(filter view.Filter) {
	fmt.Fprintln(p.w, ListSeparator)
	fmt.Fprintln(p.w, p.header.Render(headerTitle(filter)))
	fmt.Fprintln(p.w, ListSeparator)
}

// Footer formats the per-filter totals.
func (p *Printer) Footer(c view.Counts) {
	fmt.Fprintln(p.w, p.faint.Render(fmt.Sprintf("%d %s, %d pending, %d completed",
		c.All, plural(c.All, "task", "tasks"), c.Pending, c.Completed)))
}

// User formats the signed-in identity.
func (p *Printer) User(sess service.Session) {
	if sess.Email != "" {
		fmt.Fprintf(p.w, "%s (%s)\n", sess.Email, sess.UserID)
		return
	}
	fmt.Fprintln(p.w, sess.UserID)
}

func headerTitle(filter view.Filter) string {
	switch filter {
	case view.Pending:
		return "Pending"
	case view.Completed:
		return "Completed"
	default:
		return "All tasks"
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// normalizeTitle keeps a title on one line. Blank titles never get here;
// the store drops them on load.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	return strings.ReplaceAll(title, "\n", " ")
}

// Line writes a plain informational line.
func (p *Printer) Line(s string) {
	fmt.Fprintln(p.w, s)
}
