package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tasktrack/internal/service"
	"tasktrack/internal/view"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the 1-based task number from args.
//
// Parsing rules:
// 1. No args → ErrTaskRefRequired
// 2. More than one arg → error: too many arguments
// 3. All digits → that number
// 4. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// findTaskByNumber returns the task shown as row num in the filtered view.
func findTaskByNumber(tasks []service.Task, filter view.Filter, num int) (service.Task, error) {
	rows := view.Project(tasks, filter)
	if num < 1 || num > len(rows) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return rows[num-1], nil
}
