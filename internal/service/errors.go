package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated means no valid session exists.
	ErrUnauthenticated = errors.New("not logged in")

	// ErrServiceUnavailable means a collaborator is unreachable or misconfigured.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrOperationFailed means a single list/insert/update/delete call was rejected.
	ErrOperationFailed = errors.New("operation failed")
)

// OpError records a failed collaborator call.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Is makes every OpError match ErrOperationFailed.
func (e *OpError) Is(target error) bool {
	return target == ErrOperationFailed
}

// Failed wraps err as an OpError for op. Nil stays nil.
func Failed(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) && opErr.Op == op {
		return err
	}
	return &OpError{Op: op, Err: err}
}

// Unavailable returns an ErrServiceUnavailable naming the missing settings.
func Unavailable(missing ...string) error {
	if len(missing) == 0 {
		return ErrServiceUnavailable
	}
	return fmt.Errorf("%w: missing %s", ErrServiceUnavailable, strings.Join(missing, ", "))
}

// ValidateTask checks a record received from a storage collaborator
// before it may enter a task list owned by ownerID.
func ValidateTask(t Task, ownerID string) error {
	var problems []string
	if t.ID == "" {
		problems = append(problems, "missing id")
	}
	if strings.TrimSpace(t.Title) == "" {
		problems = append(problems, "missing title")
	}
	if t.OwnerID == "" {
		problems = append(problems, "missing owner")
	} else if t.OwnerID != ownerID {
		problems = append(problems, "foreign owner")
	}
	if t.CreatedAt.IsZero() {
		problems = append(problems, "missing created_at")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: malformed task %q: %s", ErrOperationFailed, t.ID, strings.Join(problems, ", "))
	}
	return nil
}
