// Package view derives filtered task views from a task list snapshot.
package view

import (
	"fmt"
	"strings"

	"tasktrack/internal/service"
)

// Filter selects which tasks a view shows.
type Filter int

const (
	// All shows every task.
	All Filter = iota
	// Pending shows tasks not yet completed.
	Pending
	// Completed shows completed tasks.
	Completed
)

// Filters lists every filter in display order.
var Filters = []Filter{All, Completed, Pending}

func (f Filter) String() string {
	switch f {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	default:
		return "all"
	}
}

// ParseFilter parses a filter name (case-insensitive, trimmed).
// An empty name means All.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return All, nil
	case "pending":
		return Pending, nil
	case "completed", "done":
		return Completed, nil
	default:
		return All, fmt.Errorf("invalid filter: %s", s)
	}
}

// Keep reports whether a task belongs in the view.
func (f Filter) Keep(t service.Task) bool {
	switch f {
	case Pending:
		return !t.IsCompleted
	case Completed:
		return t.IsCompleted
	default:
		return true
	}
}

// Project returns the tasks matching filter, preserving order.
// The result is always a fresh slice; tasks is never modified.
func Project(tasks []service.Task, filter Filter) []service.Task {
	result := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Keep(t) {
			result = append(result, t)
		}
	}
	return result
}

// Counts holds the number of tasks visible under each filter.
type Counts struct {
	All       int
	Pending   int
	Completed int
}

// Count tallies tasks per filter.
func Count(tasks []service.Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.IsCompleted {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}
