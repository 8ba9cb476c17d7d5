// Package taskstore keeps the signed-in user's task list consistent with
// the remote storage collaborator.
//
// Every mutation is confirm-then-apply: the remote call is made first and
// the local list changes only after it succeeds, so the list never holds
// a task the remote store does not have. Failures are reported and leave
// the list untouched.
package taskstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"tasktrack/internal/service"
)

// ErrUnknownTask is returned by Toggle for an id not in the local list.
var ErrUnknownTask = errors.New("task not found")

// Store holds the canonical in-memory task list for one session.
type Store struct {
	storage  service.Storage
	reporter Reporter

	mu      sync.Mutex
	session service.Session
	tasks   []service.Task
	loading bool
	draft   string
}

// New creates a store scoped to sess. A store built from an invalid
// session refuses every operation.
func New(sess service.Session, storage service.Storage, reporter Reporter) *Store {
	if reporter == nil {
		reporter = Discard
	}
	return &Store{
		storage:  storage,
		reporter: reporter,
		session:  sess,
		loading:  true,
	}
}

// Session returns the session the store is scoped to.
func (s *Store) Session() service.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Loading reports whether the initial load is still outstanding.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Tasks returns a snapshot of the list, newest first.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Load fetches the owner's tasks. On failure the list is left empty.
// Malformed or foreign records are dropped and reported individually.
func (s *Store) Load(ctx context.Context) error {
	sess := s.Session()
	if !sess.Valid() {
		s.finishLoad(nil)
		return service.ErrUnauthenticated
	}

	remote, err := s.storage.ListByOwner(ctx, sess.UserID)
	if err != nil {
		err = service.Failed("list", err)
		s.reporter.Report("list", sess.UserID, err)
		s.finishLoad(nil)
		return err
	}

	seen := make(map[string]bool, len(remote))
	tasks := make([]service.Task, 0, len(remote))
	for _, t := range remote {
		if err := service.ValidateTask(t, sess.UserID); err != nil {
			s.reporter.Report("list", sess.UserID, err)
			continue
		}
		if seen[t.ID] {
			s.reporter.Report("list", sess.UserID, fmt.Errorf("%w: duplicate task %q", service.ErrOperationFailed, t.ID))
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	s.finishLoad(tasks)
	return nil
}

func (s *Store) finishLoad(tasks []service.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.loading = false
}

// Create inserts a task titled title and prepends the confirmed record.
// Blank titles and a missing session are silent no-ops.
func (s *Store) Create(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	sess := s.Session()
	if title == "" || !sess.Valid() {
		return nil
	}

	task, err := s.storage.Insert(ctx, title, sess.UserID)
	if err == nil {
		err = service.ValidateTask(task, sess.UserID)
	}
	if err != nil {
		err = service.Failed("insert", err)
		s.reporter.Report("insert", sess.UserID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.UserID != sess.UserID {
		return nil
	}
	s.tasks = append([]service.Task{task}, s.tasks...)
	return nil
}

// SetDraft records the pending input text.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the pending input text.
func (s *Store) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Submit creates a task from the draft. The draft is cleared as soon as
// the request is issued and is not restored if the request fails.
func (s *Store) Submit(ctx context.Context) error {
	s.mu.Lock()
	title := s.draft
	s.draft = ""
	s.mu.Unlock()
	return s.Create(ctx, title)
}

// Toggle flips the completion flag of the task with the given id.
func (s *Store) Toggle(ctx context.Context, id string) error {
	sess := s.Session()
	if !sess.Valid() {
		return nil
	}

	current, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	next := !current.IsCompleted

	if err := s.storage.UpdateCompletion(ctx, sess.UserID, id, next); err != nil {
		err = service.Failed("update", err)
		s.reporter.Report("update", sess.UserID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].IsCompleted = next
			break
		}
	}
	return nil
}

// Delete removes the task with the given id. The remote call is issued
// even when the id is no longer in the local list.
func (s *Store) Delete(ctx context.Context, id string) error {
	sess := s.Session()
	if !sess.Valid() {
		return nil
	}

	if err := s.storage.DeleteByID(ctx, sess.UserID, id); err != nil {
		err = service.Failed("delete", err)
		s.reporter.Report("delete", sess.UserID, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// End detaches the store from its session after sign-out. The list is
// cleared and every later operation is a no-op.
func (s *Store) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = service.Session{}
	s.tasks = nil
	s.draft = ""
}

func (s *Store) find(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}
